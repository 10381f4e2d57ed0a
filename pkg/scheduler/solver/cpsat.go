// Package solver 提供排班约束模型的整数优化求解后端
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"google.golang.org/protobuf/proto"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
)

// CpSat 基于 OR-Tools CP-SAT 的求解后端。
// 内部并行搜索线程数由 SearchWorkers 控制，对调用方的顺序语义不可见。
type CpSat struct {
	builder       *cpmodel.Builder
	bools         map[Var]cpmodel.BoolVar
	ints          map[Var]cpmodel.IntVar
	next          Var
	searchWorkers int32
}

// NewCpSat 创建 CP-SAT 后端
func NewCpSat() Model {
	return NewCpSatWithWorkers(0)
}

// NewCpSatWithWorkers 创建指定并行搜索线程数的 CP-SAT 后端（0 表示由引擎决定）
func NewCpSatWithWorkers(workers int32) Model {
	return &CpSat{
		builder:       cpmodel.NewCpModelBuilder(),
		bools:         make(map[Var]cpmodel.BoolVar),
		ints:          make(map[Var]cpmodel.IntVar),
		searchWorkers: workers,
	}
}

// NewBoolVar 创建布尔决策变量
func (m *CpSat) NewBoolVar(name string) Var {
	v := m.next
	m.next++
	m.bools[v] = m.builder.NewBoolVar().WithName(name)
	return v
}

// NewIntVar 创建有界整数变量
func (m *CpSat) NewIntVar(lo, hi int64, name string) Var {
	v := m.next
	m.next++
	m.ints[v] = m.builder.NewIntVarFromDomain(cpmodel.NewDomain(lo, hi)).WithName(name)
	return v
}

// expr 将线性项列表转换为 CP-SAT 线性表达式
func (m *CpSat) expr(terms []Term) *cpmodel.LinearExpr {
	e := cpmodel.NewLinearExpr()
	for _, t := range terms {
		if bv, ok := m.bools[t.Var]; ok {
			e.AddTerm(bv, t.Coeff)
		} else {
			e.AddTerm(m.ints[t.Var], t.Coeff)
		}
	}
	return e
}

// AddLinear 添加线性约束 lo <= sum(terms) <= hi
func (m *CpSat) AddLinear(terms []Term, lo, hi int64) {
	e := m.expr(terms)
	switch {
	case lo == hi:
		m.builder.AddEquality(e, cpmodel.NewConstant(lo))
	case lo == NoLower:
		m.builder.AddLessOrEqual(e, cpmodel.NewConstant(hi))
	case hi == NoUpper:
		m.builder.AddGreaterOrEqual(e, cpmodel.NewConstant(lo))
	default:
		m.builder.AddGreaterOrEqual(e, cpmodel.NewConstant(lo))
		m.builder.AddLessOrEqual(e, cpmodel.NewConstant(hi))
	}
}

// arg 将变量句柄转换为 CP-SAT 线性参数
func (m *CpSat) arg(v Var) cpmodel.LinearArgument {
	if bv, ok := m.bools[v]; ok {
		return bv
	}
	return m.ints[v]
}

// AddMaxEquality 约束 target == max(vars)
func (m *CpSat) AddMaxEquality(target Var, vars []Var) {
	args := make([]cpmodel.LinearArgument, len(vars))
	for i, v := range vars {
		args[i] = m.arg(v)
	}
	m.builder.AddMaxEquality(m.arg(target), args...)
}

// AddMinEquality 约束 target == min(vars)
func (m *CpSat) AddMinEquality(target Var, vars []Var) {
	args := make([]cpmodel.LinearArgument, len(vars))
	for i, v := range vars {
		args[i] = m.arg(v)
	}
	m.builder.AddMinEquality(m.arg(target), args...)
}

// Minimize 设置线性最小化目标
func (m *CpSat) Minimize(terms []Term) {
	m.builder.Minimize(m.expr(terms))
}

// Solve 在墙钟时限内求解并读回变量取值
func (m *CpSat) Solve(ctx context.Context, timeLimit time.Duration) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mp, err := m.builder.Model()
	if err != nil {
		return nil, fmt.Errorf("构建 CP 模型失败: %w", err)
	}

	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(timeLimit.Seconds()),
	}
	if m.searchWorkers > 0 {
		params.NumSearchWorkers = proto.Int32(m.searchWorkers)
	}

	resp, err := cpmodel.SolveCpModelWithParameters(mp, params)
	if err != nil {
		return nil, fmt.Errorf("CP-SAT 求解失败: %w", err)
	}

	status := mapCpStatus(resp.GetStatus())
	if !status.Succeeded() {
		return newSolution(status, 0, nil), nil
	}

	values := make(map[Var]int64, len(m.bools)+len(m.ints))
	for v, bv := range m.bools {
		if cpmodel.SolutionBooleanValue(resp, bv) {
			values[v] = 1
		}
	}
	for v, iv := range m.ints {
		values[v] = cpmodel.SolutionIntegerValue(resp, iv)
	}

	return newSolution(status, int64(resp.GetObjectiveValue()), values), nil
}

// mapCpStatus 转换 CP-SAT 状态
func mapCpStatus(s cmpb.CpSolverStatus) Status {
	switch s {
	case cmpb.CpSolverStatus_OPTIMAL:
		return StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return StatusInfeasible
	default:
		return StatusUnknown
	}
}
