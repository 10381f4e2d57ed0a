package solver

import (
	"context"
	"testing"
	"time"
)

func TestBacktrackingOptimalSelection(t *testing.T) {
	m := NewBacktracking()

	// 两个互斥选项，y 为所选项的收益，要求 y >= 3
	x1 := m.NewBoolVar("x1")
	x2 := m.NewBoolVar("x2")
	m.AddLinear(Sum(x1, x2), 0, 1)

	y := m.NewIntVar(0, 10, "y")
	m.AddLinear([]Term{T(x1, 2), T(x2, 3), T(y, -1)}, 0, 0)
	m.AddLinear([]Term{T(y, 1)}, 3, NoUpper)

	m.Minimize([]Term{T(y, 1)})

	sol, err := m.Solve(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("Status = %s, want optimal", sol.Status)
	}
	if sol.Objective != 3 {
		t.Errorf("Objective = %d, want 3", sol.Objective)
	}
	if !sol.BoolValue(x2) || sol.BoolValue(x1) {
		t.Error("应选择 x2 满足 y >= 3")
	}
	if sol.Value(y) != 3 {
		t.Errorf("y = %d, want 3", sol.Value(y))
	}
}

func TestBacktrackingInfeasible(t *testing.T) {
	m := NewBacktracking()

	x := m.NewBoolVar("x")
	y := m.NewIntVar(0, 10, "y")
	m.AddLinear([]Term{T(x, 2), T(y, -1)}, 0, 0)
	m.AddLinear([]Term{T(y, 1)}, 3, NoUpper) // y = 2x 最大为 2，不可行

	sol, err := m.Solve(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Errorf("Status = %s, want infeasible", sol.Status)
	}
}

func TestBacktrackingMaxEquality(t *testing.T) {
	m := NewBacktracking()

	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddLinear(Sum(a, b), 1, NoUpper) // 至少选一个

	p := m.NewIntVar(0, 5, "p")
	q := m.NewIntVar(0, 5, "q")
	m.AddLinear([]Term{T(a, 3), T(p, -1)}, 0, 0)
	m.AddLinear([]Term{T(b, 2), T(q, -1)}, 0, 0)

	mx := m.NewIntVar(0, 5, "mx")
	m.AddMaxEquality(mx, []Var{p, q})

	m.Minimize([]Term{T(mx, 1)})

	sol, err := m.Solve(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("Status = %s, want optimal", sol.Status)
	}
	// 只选 b：max(0, 2) = 2，优于选 a 的 3
	if sol.Objective != 2 {
		t.Errorf("Objective = %d, want 2", sol.Objective)
	}
	if sol.Value(mx) != 2 {
		t.Errorf("mx = %d, want 2", sol.Value(mx))
	}
}

func TestBacktrackingSoftFloor(t *testing.T) {
	m := NewBacktracking()

	// 覆盖上限 1，软下限 2：最优解欠 1 人
	x1 := m.NewBoolVar("x1")
	x2 := m.NewBoolVar("x2")

	cov := m.NewIntVar(0, 10, "cov")
	m.AddLinear([]Term{T(x1, 1), T(x2, 1), T(cov, -1)}, 0, 0)
	m.AddLinear([]Term{T(cov, 1)}, NoLower, 1)

	u := m.NewIntVar(0, 100, "u")
	m.AddLinear([]Term{T(cov, 1), T(u, 1)}, 2, NoUpper)

	m.Minimize([]Term{T(u, 100), T(cov, 1)})

	sol, err := m.Solve(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("Status = %s, want optimal", sol.Status)
	}
	if sol.Value(cov) != 1 {
		t.Errorf("cov = %d, want 1", sol.Value(cov))
	}
	if sol.Value(u) != 1 {
		t.Errorf("u = %d, want 1", sol.Value(u))
	}
	if sol.Objective != 101 {
		t.Errorf("Objective = %d, want 101", sol.Objective)
	}
}

func TestBacktrackingNodeBudgetExhausted(t *testing.T) {
	m := NewBacktrackingWithLimit(0)

	x := m.NewBoolVar("x")
	m.Minimize([]Term{T(x, 1)})

	sol, err := m.Solve(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	// 预算为零时没有任何节点被展开
	if sol.Status != StatusUnknown {
		t.Errorf("Status = %s, want unknown", sol.Status)
	}
}

func TestBacktrackingContextCancelled(t *testing.T) {
	m := NewBacktracking()
	m.NewBoolVar("x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Solve(ctx, time.Second); err == nil {
		t.Error("已取消的上下文应返回错误")
	}
}
