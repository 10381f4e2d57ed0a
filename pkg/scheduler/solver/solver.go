// Package solver 提供排班约束模型的整数优化求解后端。
//
// 排班核心只依赖这里定义的 Model 接口：布尔/有界整数变量、线性约束、
// 最大/最小等式约束、线性最小化目标，以及带时限的求解调用。
// 任何满足该能力的后端（CP-SAT、小规模回溯搜索等）都可以互换使用。
package solver

import (
	"context"
	"math"
	"time"
)

// Status 求解状态
type Status int

const (
	StatusUnknown    Status = iota // 时限内未找到任何解
	StatusOptimal                  // 已证明最优
	StatusFeasible                 // 找到可行解但未证明最优
	StatusInfeasible               // 模型无解
)

// String 返回状态名称
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Succeeded 检查是否找到可用解（最优与可行一视同仁）
func (s Status) Succeeded() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Var 变量句柄，由创建它的 Model 解释
type Var int32

// Term 线性项：Coeff * Var
type Term struct {
	Var   Var
	Coeff int64
}

// T 构造线性项
func T(v Var, coeff int64) Term {
	return Term{Var: v, Coeff: coeff}
}

// Sum 构造系数全为1的线性项列表
func Sum(vars ...Var) []Term {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coeff: 1}
	}
	return terms
}

// 线性约束的无界端点
const (
	NoLower int64 = math.MinInt64
	NoUpper int64 = math.MaxInt64
)

// Model 约束模型构建与求解接口。
// 一个 Model 实例只用于一次求解；每次求解从工厂新建。
type Model interface {
	// NewBoolVar 创建布尔决策变量
	NewBoolVar(name string) Var

	// NewIntVar 创建取值范围 [lo, hi] 的整数变量
	NewIntVar(lo, hi int64, name string) Var

	// AddLinear 添加线性约束 lo <= sum(terms) <= hi，
	// 端点可用 NoLower/NoUpper 表示单边约束
	AddLinear(terms []Term, lo, hi int64)

	// AddMaxEquality 约束 target == max(vars)
	AddMaxEquality(target Var, vars []Var)

	// AddMinEquality 约束 target == min(vars)
	AddMinEquality(target Var, vars []Var)

	// Minimize 设置线性最小化目标
	Minimize(terms []Term)

	// Solve 在墙钟时限内求解。时限到达时返回已找到的最好解；
	// 取消只通过时限表达，无中途取消信号。
	Solve(ctx context.Context, timeLimit time.Duration) (*Solution, error)
}

// Factory 求解后端工厂，每次求解构建全新模型
type Factory func() Model

// Solution 求解结果与变量取值
type Solution struct {
	Status    Status
	Objective int64
	values    map[Var]int64
}

// Value 读取整数变量取值，仅在 Status.Succeeded() 时有意义
func (s *Solution) Value(v Var) int64 {
	return s.values[v]
}

// BoolValue 读取布尔变量取值
func (s *Solution) BoolValue(v Var) bool {
	return s.values[v] != 0
}

// newSolution 构造求解结果（后端内部使用）
func newSolution(status Status, objective int64, values map[Var]int64) *Solution {
	return &Solution{Status: status, Objective: objective, values: values}
}
