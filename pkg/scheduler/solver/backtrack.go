// Package solver 提供排班约束模型的整数优化求解后端
package solver

import (
	"context"
	"sort"
	"time"
)

// Backtracking 纯 Go 的小规模分支定界求解后端。
//
// 面向排班模型的结构做了预处理：布尔变量按"至多选一"约束分组逐层枚举，
// 由等式定义的整数变量被摊平为布尔变量的线性组合以便增量维护上下界，
// 软下限模式（D + u >= lo）中的松弛变量在叶子处取最小可行值。
// 不满足这些结构的约束会退化到叶子处的完整校验，正确性不受影响，
// 只是剪枝变弱。适合测试与小实例，大实例应使用 CP-SAT 后端。
type Backtracking struct {
	vars      []btVar
	linears   []btLinear
	minmaxes  []btMinMax
	objective []Term
	nodeLimit int
}

type btVar struct {
	name   string
	lo, hi int64
	isBool bool
}

type btLinear struct {
	terms  []Term
	lo, hi int64
}

type btMinMax struct {
	target Var
	vars   []Var
	isMax  bool
}

// DefaultNodeLimit 默认搜索节点预算
const DefaultNodeLimit = 2_000_000

// NewBacktracking 创建回溯搜索后端
func NewBacktracking() Model {
	return NewBacktrackingWithLimit(DefaultNodeLimit)
}

// NewBacktrackingWithLimit 创建指定节点预算的回溯搜索后端
func NewBacktrackingWithLimit(nodeLimit int) Model {
	return &Backtracking{nodeLimit: nodeLimit}
}

// NewBoolVar 创建布尔决策变量
func (m *Backtracking) NewBoolVar(name string) Var {
	m.vars = append(m.vars, btVar{name: name, lo: 0, hi: 1, isBool: true})
	return Var(len(m.vars) - 1)
}

// NewIntVar 创建有界整数变量
func (m *Backtracking) NewIntVar(lo, hi int64, name string) Var {
	m.vars = append(m.vars, btVar{name: name, lo: lo, hi: hi})
	return Var(len(m.vars) - 1)
}

// AddLinear 添加线性约束 lo <= sum(terms) <= hi
func (m *Backtracking) AddLinear(terms []Term, lo, hi int64) {
	cp := make([]Term, len(terms))
	copy(cp, terms)
	m.linears = append(m.linears, btLinear{terms: cp, lo: lo, hi: hi})
}

// AddMaxEquality 约束 target == max(vars)
func (m *Backtracking) AddMaxEquality(target Var, vars []Var) {
	cp := make([]Var, len(vars))
	copy(cp, vars)
	m.minmaxes = append(m.minmaxes, btMinMax{target: target, vars: cp, isMax: true})
}

// AddMinEquality 约束 target == min(vars)
func (m *Backtracking) AddMinEquality(target Var, vars []Var) {
	cp := make([]Var, len(vars))
	copy(cp, vars)
	m.minmaxes = append(m.minmaxes, btMinMax{target: target, vars: cp})
}

// Minimize 设置线性最小化目标
func (m *Backtracking) Minimize(terms []Term) {
	m.objective = make([]Term, len(terms))
	copy(m.objective, terms)
}

// flatDef 摊平后的整数变量定义：value = konst + sum(gain[b] * b)
type flatDef struct {
	konst int64
	gains map[Var]int64
}

// softFloor 软下限模式：flat + slack >= lo，slack 在叶子处取最小可行值
type softFloor struct {
	slack Var
	flat  Var
	lo    int64
}

// btSearch 一次求解的搜索状态
type btSearch struct {
	m        *Backtracking
	deadline time.Time

	groups  [][]Var       // 至多选一的布尔变量组（含隐式"全不选"）
	flats   map[Var]*flatDef
	flatIDs []Var         // 稳定遍历顺序
	floors  []softFloor

	// 按组预计算的摊平变量增益边界
	maxGain []map[Var]int64
	minGain []map[Var]int64

	partial   map[Var]int64 // 已定组对摊平变量的贡献（含常数）
	remainMax map[Var]int64
	remainMin map[Var]int64

	choice []int // 每组选中的选项下标（len(group) 表示全不选）

	nodes     int
	exhausted bool

	bestObj    int64
	bestValues map[Var]int64
	hasBest    bool
}

// Solve 在墙钟时限与节点预算内搜索
func (m *Backtracking) Solve(ctx context.Context, timeLimit time.Duration) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &btSearch{
		m:         m,
		deadline:  time.Now().Add(timeLimit),
		exhausted: true,
	}
	s.prepare()
	s.dfs(0)

	switch {
	case s.hasBest && s.exhausted:
		return newSolution(StatusOptimal, s.bestObj, s.bestValues), nil
	case s.hasBest:
		return newSolution(StatusFeasible, s.bestObj, s.bestValues), nil
	case s.exhausted:
		return newSolution(StatusInfeasible, 0, nil), nil
	default:
		return newSolution(StatusUnknown, 0, nil), nil
	}
}

// prepare 预处理：域收紧、分组、摊平定义、软下限识别、增益边界
func (s *btSearch) prepare() {
	m := s.m

	// 单变量约束直接收紧域
	for _, lc := range m.linears {
		if len(lc.terms) != 1 {
			continue
		}
		t := lc.terms[0]
		v := &m.vars[t.Var]
		lo, hi := lc.lo, lc.hi
		switch {
		case t.Coeff > 0:
			if lo != NoLower {
				v.lo = maxI64(v.lo, divCeil(lo, t.Coeff))
			}
			if hi != NoUpper {
				v.hi = minI64(v.hi, divFloor(hi, t.Coeff))
			}
		case t.Coeff < 0:
			if hi != NoUpper {
				v.lo = maxI64(v.lo, divCeil(hi, t.Coeff))
			}
			if lo != NoLower {
				v.hi = minI64(v.hi, divFloor(lo, t.Coeff))
			}
		}
	}

	// 识别"至多选一"组
	grouped := make(map[Var]bool)
	for _, lc := range m.linears {
		if lc.hi != 1 || lc.lo > 0 || len(lc.terms) < 2 {
			continue
		}
		ok := true
		for _, t := range lc.terms {
			if t.Coeff != 1 || !m.vars[t.Var].isBool || grouped[t.Var] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		group := make([]Var, len(lc.terms))
		for i, t := range lc.terms {
			group[i] = t.Var
			grouped[t.Var] = true
		}
		s.groups = append(s.groups, group)
	}
	for i, v := range m.vars {
		if v.isBool && !grouped[Var(i)] {
			s.groups = append(s.groups, []Var{Var(i)})
		}
	}

	// 摊平等式定义：迭代替换直到不动点
	s.flats = make(map[Var]*flatDef)
	consumed := make(map[int]bool)
	for progress := true; progress; {
		progress = false
		for ci, lc := range m.linears {
			if consumed[ci] || lc.lo != lc.hi || lc.lo == NoLower {
				continue
			}
			defIdx := -1
			ok := true
			for i, t := range lc.terms {
				if m.vars[t.Var].isBool || s.flats[t.Var] != nil {
					continue
				}
				if defIdx >= 0 || (t.Coeff != 1 && t.Coeff != -1) {
					ok = false
					break
				}
				defIdx = i
			}
			if !ok || defIdx < 0 {
				continue
			}

			// 被定义变量移到等号一侧：D = (lo - 其余项) / coeff
			dt := lc.terms[defIdx]
			def := &flatDef{konst: lc.lo, gains: make(map[Var]int64)}
			for i, t := range lc.terms {
				if i == defIdx {
					continue
				}
				if f := s.flats[t.Var]; f != nil {
					def.konst -= t.Coeff * f.konst
					for b, g := range f.gains {
						def.gains[b] -= t.Coeff * g
					}
				} else {
					def.gains[t.Var] -= t.Coeff
				}
			}
			if dt.Coeff == -1 {
				def.konst = -def.konst
				for b := range def.gains {
					def.gains[b] = -def.gains[b]
				}
			}
			s.flats[dt.Var] = def
			s.flatIDs = append(s.flatIDs, dt.Var)
			consumed[ci] = true
			progress = true
		}
	}

	// 识别软下限模式 flat + slack >= lo
	for _, lc := range m.linears {
		if lc.hi != NoUpper || lc.lo == NoLower || len(lc.terms) != 2 {
			continue
		}
		a, b := lc.terms[0], lc.terms[1]
		if a.Coeff != 1 || b.Coeff != 1 {
			continue
		}
		if s.flats[a.Var] != nil && s.flats[b.Var] == nil && !s.m.vars[b.Var].isBool {
			s.floors = append(s.floors, softFloor{slack: b.Var, flat: a.Var, lo: lc.lo})
		} else if s.flats[b.Var] != nil && s.flats[a.Var] == nil && !s.m.vars[a.Var].isBool {
			s.floors = append(s.floors, softFloor{slack: a.Var, flat: b.Var, lo: lc.lo})
		}
	}

	// 每组对每个摊平变量的增益边界（"全不选"选项贡献为 0）
	s.maxGain = make([]map[Var]int64, len(s.groups))
	s.minGain = make([]map[Var]int64, len(s.groups))
	s.partial = make(map[Var]int64, len(s.flatIDs))
	s.remainMax = make(map[Var]int64, len(s.flatIDs))
	s.remainMin = make(map[Var]int64, len(s.flatIDs))

	for gi, group := range s.groups {
		mx := make(map[Var]int64)
		mn := make(map[Var]int64)
		for _, b := range group {
			for _, d := range s.flatIDs {
				if g, ok := s.flats[d].gains[b]; ok {
					if g > mx[d] {
						mx[d] = g
					}
					if g < mn[d] {
						mn[d] = g
					}
				}
			}
		}
		s.maxGain[gi] = mx
		s.minGain[gi] = mn
	}

	for _, d := range s.flatIDs {
		s.partial[d] = s.flats[d].konst
		for gi := range s.groups {
			s.remainMax[d] += s.maxGain[gi][d]
			s.remainMin[d] += s.minGain[gi][d]
		}
	}

	s.choice = make([]int, len(s.groups))
	s.bestObj = int64(1) << 62
}

// budgetLeft 检查节点与时间预算
func (s *btSearch) budgetLeft() bool {
	if s.nodes >= s.m.nodeLimit {
		s.exhausted = false
		return false
	}
	if s.nodes%1024 == 0 && time.Now().After(s.deadline) {
		s.exhausted = false
		return false
	}
	return true
}

// dfs 按组深度优先枚举
func (s *btSearch) dfs(gi int) {
	if !s.budgetLeft() {
		return
	}
	if gi == len(s.groups) {
		s.evalLeaf()
		return
	}

	group := s.groups[gi]

	// 选项按"剩余全不选"的目标估计升序排列，优先走贪心路径
	type option struct {
		idx      int // len(group) 表示全不选
		estimate int64
	}
	options := make([]option, 0, len(group)+1)
	for i := 0; i <= len(group); i++ {
		est, legal := s.applyAndBound(gi, i)
		if legal {
			options = append(options, option{idx: i, estimate: est})
		}
	}
	sort.SliceStable(options, func(a, b int) bool {
		return options[a].estimate < options[b].estimate
	})

	for _, opt := range options {
		if !s.budgetLeft() {
			return
		}
		s.nodes++
		s.push(gi, opt.idx)
		if s.lowerBound() < s.bestObj {
			s.choice[gi] = opt.idx
			s.dfs(gi + 1)
		}
		s.pop(gi, opt.idx)
	}
}

// push 应用组选项，增量更新摊平变量状态
func (s *btSearch) push(gi, idx int) {
	if idx < len(s.groups[gi]) {
		b := s.groups[gi][idx]
		for _, d := range s.flatIDs {
			if g, ok := s.flats[d].gains[b]; ok {
				s.partial[d] += g
			}
		}
	}
	for d, g := range s.maxGain[gi] {
		s.remainMax[d] -= g
	}
	for d, g := range s.minGain[gi] {
		s.remainMin[d] -= g
	}
}

// pop 撤销组选项
func (s *btSearch) pop(gi, idx int) {
	if idx < len(s.groups[gi]) {
		b := s.groups[gi][idx]
		for _, d := range s.flatIDs {
			if g, ok := s.flats[d].gains[b]; ok {
				s.partial[d] -= g
			}
		}
	}
	for d, g := range s.maxGain[gi] {
		s.remainMax[d] += g
	}
	for d, g := range s.minGain[gi] {
		s.remainMin[d] += g
	}
}

// applyAndBound 试算选项：检查摊平变量域可达性并返回贪心估计
func (s *btSearch) applyAndBound(gi, idx int) (estimate int64, legal bool) {
	var chosen Var = -1
	if idx < len(s.groups[gi]) {
		chosen = s.groups[gi][idx]
	}

	gainOf := func(d Var) int64 {
		if chosen < 0 {
			return 0
		}
		return s.flats[d].gains[chosen]
	}

	// 域可达性：应用该选项后最终取值区间必须与域相交
	for _, d := range s.flatIDs {
		after := s.partial[d] + gainOf(d)
		lo := after + s.remainMin[d] - s.minGain[gi][d]
		hi := after + s.remainMax[d] - s.maxGain[gi][d]
		if lo > s.m.vars[d].hi || hi < s.m.vars[d].lo {
			return 0, false
		}
	}

	// 贪心估计：假设剩余组全不选时的目标值
	for _, t := range s.m.objective {
		switch {
		case s.flats[t.Var] != nil:
			estimate += t.Coeff * (s.partial[t.Var] + gainOf(t.Var))
		case s.isFloorSlack(t.Var):
			f := s.floorOf(t.Var)
			short := f.lo - (s.partial[f.flat] + gainOf(f.flat))
			if short < s.m.vars[t.Var].lo {
				short = s.m.vars[t.Var].lo
			}
			estimate += t.Coeff * short
		case t.Var == chosen:
			estimate += t.Coeff
		default:
			estimate += t.Coeff * s.m.vars[t.Var].lo
		}
	}
	return estimate, true
}

// lowerBound 当前部分指派下的目标下界（系数为负时用上界）
func (s *btSearch) lowerBound() int64 {
	var lb int64
	for _, t := range s.m.objective {
		switch {
		case s.flats[t.Var] != nil:
			if t.Coeff >= 0 {
				lo := s.partial[t.Var] + s.remainMin[t.Var]
				lb += t.Coeff * maxI64(lo, s.m.vars[t.Var].lo)
			} else {
				hi := s.partial[t.Var] + s.remainMax[t.Var]
				lb += t.Coeff * minI64(hi, s.m.vars[t.Var].hi)
			}
		case s.isFloorSlack(t.Var) && t.Coeff >= 0:
			f := s.floorOf(t.Var)
			short := f.lo - (s.partial[f.flat] + s.remainMax[f.flat])
			lb += t.Coeff * maxI64(short, s.m.vars[t.Var].lo)
		default:
			if t.Coeff >= 0 {
				lb += t.Coeff * s.m.vars[t.Var].lo
			} else {
				lb += t.Coeff * s.m.vars[t.Var].hi
			}
		}
	}
	return lb
}

func (s *btSearch) isFloorSlack(v Var) bool {
	for _, f := range s.floors {
		if f.slack == v {
			return true
		}
	}
	return false
}

func (s *btSearch) floorOf(v Var) softFloor {
	for _, f := range s.floors {
		if f.slack == v {
			return f
		}
	}
	return softFloor{}
}

// evalLeaf 完整求值一个叶子：推导剩余变量、校验全部约束、更新现任最优
func (s *btSearch) evalLeaf() {
	m := s.m
	values := make(map[Var]int64, len(m.vars))
	assigned := make([]bool, len(m.vars))

	// 布尔变量来自组选择
	for gi, group := range s.groups {
		for i, b := range group {
			if s.choice[gi] == i {
				values[b] = 1
			}
			assigned[b] = true
		}
	}
	// 摊平变量取增量维护的精确值
	for _, d := range s.flatIDs {
		values[d] = s.partial[d]
		assigned[d] = true
	}

	// 不动点推导剩余变量
	remaining := 0
	for i := range m.vars {
		if !assigned[i] {
			remaining++
		}
	}
	for remaining > 0 {
		progress := false

		for _, mm := range m.minmaxes {
			if assigned[mm.target] {
				continue
			}
			ready := true
			for _, v := range mm.vars {
				if !assigned[v] {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			val := values[mm.vars[0]]
			for _, v := range mm.vars[1:] {
				if mm.isMax && values[v] > val {
					val = values[v]
				}
				if !mm.isMax && values[v] < val {
					val = values[v]
				}
			}
			values[mm.target] = val
			assigned[mm.target] = true
			remaining--
			progress = true
		}

		for _, lc := range m.linears {
			if lc.lo != lc.hi || lc.lo == NoLower {
				continue
			}
			open := -1
			var sum int64
			ok := true
			for i, t := range lc.terms {
				if assigned[t.Var] {
					sum += t.Coeff * values[t.Var]
					continue
				}
				if open >= 0 || (t.Coeff != 1 && t.Coeff != -1) {
					ok = false
					break
				}
				open = i
			}
			if !ok || open < 0 {
				continue
			}
			t := lc.terms[open]
			val := (lc.lo - sum) / t.Coeff
			if val < m.vars[t.Var].lo || val > m.vars[t.Var].hi {
				return // 域外，叶子不可行
			}
			values[t.Var] = val
			assigned[t.Var] = true
			remaining--
			progress = true
		}

		if progress {
			continue
		}

		// 无法推导时，给首个未定变量取满足单变量残差约束的最小值
		target := -1
		for i := range m.vars {
			if !assigned[i] {
				target = i
				break
			}
		}
		lo, hi := m.vars[target].lo, m.vars[target].hi
		for _, lc := range m.linears {
			var sum int64
			var coeff int64
			ok := true
			for _, t := range lc.terms {
				if int(t.Var) == target {
					coeff = t.Coeff
					continue
				}
				if !assigned[t.Var] {
					ok = false
					break
				}
				sum += t.Coeff * values[t.Var]
			}
			if !ok || coeff == 0 {
				continue
			}
			if coeff > 0 {
				if lc.lo != NoLower {
					lo = maxI64(lo, divCeil(lc.lo-sum, coeff))
				}
				if lc.hi != NoUpper {
					hi = minI64(hi, divFloor(lc.hi-sum, coeff))
				}
			} else {
				if lc.hi != NoUpper {
					lo = maxI64(lo, divCeil(lc.hi-sum, coeff))
				}
				if lc.lo != NoLower {
					hi = minI64(hi, divFloor(lc.lo-sum, coeff))
				}
			}
		}
		if lo > hi {
			return
		}
		values[Var(target)] = lo
		assigned[target] = true
		remaining--
	}

	// 最终校验：变量域与全部约束
	for i, v := range m.vars {
		if val := values[Var(i)]; val < v.lo || val > v.hi {
			return
		}
	}
	for _, lc := range m.linears {
		var sum int64
		for _, t := range lc.terms {
			sum += t.Coeff * values[t.Var]
		}
		if (lc.lo != NoLower && sum < lc.lo) || (lc.hi != NoUpper && sum > lc.hi) {
			return
		}
	}
	for _, mm := range m.minmaxes {
		val := values[mm.vars[0]]
		for _, v := range mm.vars[1:] {
			if mm.isMax && values[v] > val {
				val = values[v]
			}
			if !mm.isMax && values[v] < val {
				val = values[v]
			}
		}
		if values[mm.target] != val {
			return
		}
	}

	var obj int64
	for _, t := range s.m.objective {
		obj += t.Coeff * values[t.Var]
	}
	if !s.hasBest || obj < s.bestObj {
		s.hasBest = true
		s.bestObj = obj
		s.bestValues = values
	}
}

// 整数辅助

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// divCeil 向上整除（除数符号任意）
func divCeil(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

// divFloor 向下整除（除数符号任意）
func divFloor(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
