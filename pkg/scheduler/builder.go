package scheduler

import (
	"fmt"

	"github.com/dangban/dangban/pkg/model"
	"github.com/dangban/dangban/pkg/scheduler/solver"
)

// assignVar 员工-候选班次决策变量
type assignVar struct {
	shiftIdx int
	v        solver.Var
}

// modelHandles 构建完成的约束模型变量句柄，求解后据此读回取值
type modelHandles struct {
	assigns    [][]assignVar      // 按员工下标
	coverage   map[int]solver.Var // 按小时的在岗人数
	understaff map[int]solver.Var // 按小时的缺员松弛量
	workHours  []solver.Var       // 按员工下标的当日工时
	maxWork    solver.Var
	minWork    solver.Var
}

// buildModel 将一次排班请求编码为约束模型。
//
// 每个员工的每个可行候选班次对应一个布尔变量；每小时的在岗人数
// 由覆盖该小时的布尔变量求和定义，受 MaxCoverage 硬上限约束；
// MinCoverage 是软下限，缺口由非负松弛变量吸收并计入最高优先级目标。
func buildModel(
	m solver.Model,
	workers []model.Worker,
	cfg model.DayConfig,
	candidates []model.Shift,
	feasible [][]int,
	weights Weights,
	onePerWorker bool,
) *modelHandles {
	h := &modelHandles{
		assigns:    make([][]assignVar, len(workers)),
		coverage:   make(map[int]solver.Var, cfg.DayLength),
		understaff: make(map[int]solver.Var, cfg.DayLength),
		workHours:  make([]solver.Var, len(workers)),
	}

	// 员工-班次决策变量与"至多一班"策略
	for wi := range workers {
		vars := make([]assignVar, 0, len(feasible[wi]))
		for _, si := range feasible[wi] {
			s := candidates[si]
			v := m.NewBoolVar(fmt.Sprintf("x_w%d_s%d_%d", wi, s.Start, s.End))
			vars = append(vars, assignVar{shiftIdx: si, v: v})
		}
		h.assigns[wi] = vars

		if onePerWorker && len(vars) > 1 {
			bools := make([]solver.Var, len(vars))
			for i, av := range vars {
				bools[i] = av.v
			}
			m.AddLinear(solver.Sum(bools...), 0, 1)
		}
	}

	// 每小时覆盖：cov_h == 覆盖该小时的决策变量之和，硬上限 MaxCoverage
	for _, hour := range cfg.Hours() {
		cov := m.NewIntVar(0, int64(len(workers)), fmt.Sprintf("cov_%d", hour))
		h.coverage[hour] = cov

		terms := []solver.Term{solver.T(cov, -1)}
		for wi := range workers {
			for _, av := range h.assigns[wi] {
				if candidates[av.shiftIdx].Covers(hour) {
					terms = append(terms, solver.T(av.v, 1))
				}
			}
		}
		m.AddLinear(terms, 0, 0)

		m.AddLinear([]solver.Term{solver.T(cov, 1)}, solver.NoLower, int64(cfg.MaxCoverage))

		// 软下限：cov_h + under_h >= MinCoverage，缺口进入目标
		under := m.NewIntVar(0, int64(cfg.MinCoverage), fmt.Sprintf("under_%d", hour))
		h.understaff[hour] = under
		m.AddLinear([]solver.Term{solver.T(cov, 1), solver.T(under, 1)}, int64(cfg.MinCoverage), solver.NoUpper)
	}

	// 每员工当日工时与公平性极值。
	// 多班策略下工时可超过营业时长，上界取整天 24 小时
	for wi := range workers {
		wh := m.NewIntVar(0, 24, fmt.Sprintf("hours_w%d", wi))
		h.workHours[wi] = wh

		terms := []solver.Term{solver.T(wh, -1)}
		for _, av := range h.assigns[wi] {
			terms = append(terms, solver.T(av.v, int64(candidates[av.shiftIdx].Length())))
		}
		m.AddLinear(terms, 0, 0)
	}

	h.maxWork = m.NewIntVar(0, 24, "max_hours")
	h.minWork = m.NewIntVar(0, 24, "min_hours")
	m.AddMaxEquality(h.maxWork, h.workHours)
	m.AddMinEquality(h.minWork, h.workHours)

	// 词典序目标：缺员 > 工时差(max-min) > 总覆盖
	var objective []solver.Term
	for _, hour := range cfg.Hours() {
		objective = append(objective, solver.T(h.understaff[hour], weights.Understaff))
		objective = append(objective, solver.T(h.coverage[hour], weights.Coverage))
	}
	objective = append(objective,
		solver.T(h.maxWork, weights.Spread),
		solver.T(h.minWork, -weights.Spread),
	)
	m.Minimize(objective)

	return h
}
