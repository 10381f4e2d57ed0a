// Package model 定义排班求解引擎的核心数据模型
package model

// SolveStatus 求解结果状态
type SolveStatus string

const (
	SolveStatusOK         SolveStatus = "ok"          // 求解成功（最优或可行）
	SolveStatusNoSolution SolveStatus = "no_solution" // 时限内未找到任何可用解
)

// WorkerAssignment 单个员工的分配结果
type WorkerAssignment struct {
	Worker      string  `json:"worker"`
	Shift       *Shift  `json:"shift"`           // nil 表示未排班
	Label       DayPart `json:"label,omitempty"` // 班次位置标签（未排班时为空）
	ExtraShifts []Shift `json:"extra_shifts,omitempty"` // 允许多班策略下的额外班次
	WorkHours   int     `json:"work_hours"`
	Unavailable []int   `json:"unavailable"` // 升序排列的不可用小时（回显输入）
}

// Assigned 检查该员工是否被排班
func (a WorkerAssignment) Assigned() bool {
	return a.Shift != nil
}

// SolveResult 一次求解的完整结果。
// 求解成功后不可变；只有 Status 为 ok 时其余字段才有意义。
type SolveResult struct {
	Status SolveStatus `json:"status"`

	// 回显的营业日参数（供报表与导出使用）
	DayStart    int `json:"day_start_hour"`
	DayEnd      int `json:"day_end_hour"`
	MinCoverage int `json:"min_workers_per_hour"`
	MaxCoverage int `json:"max_workers_per_hour"`

	// 按小时的覆盖与缺员（key 为24小时制整点）
	CoverageByHour   map[int]int `json:"coverage_by_hour,omitempty"`
	UnderstaffByHour map[int]int `json:"understaff_by_hour,omitempty"`

	TotalUnderstaff int `json:"total_understaff"`
	FairnessSpread  int `json:"fairness_spread"` // max(工时) - min(工时)

	Assignments []WorkerAssignment `json:"assignments,omitempty"`
}

// OK 检查求解是否成功
func (r *SolveResult) OK() bool {
	return r.Status == SolveStatusOK
}

// NoSolution 构造 no_solution 结果
func NoSolution() *SolveResult {
	return &SolveResult{Status: SolveStatusNoSolution}
}
