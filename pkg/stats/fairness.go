package stats

import (
	"math"
	"sort"

	"github.com/dangban/dangban/pkg/model"
)

// WorkerStat 单个员工的工时统计
type WorkerStat struct {
	Worker    string        `json:"worker"`
	WorkHours int           `json:"work_hours"`
	Assigned  bool          `json:"assigned"`
	Label     model.DayPart `json:"label,omitempty"`
	Deviation float64       `json:"deviation"` // 与人均工时的偏差百分比
}

// FairnessMetrics 工时公平性指标
type FairnessMetrics struct {
	AvgHours      float64            `json:"avg_hours"`
	MaxHours      int                `json:"max_hours"`
	MinHours      int                `json:"min_hours"`
	Spread        int                `json:"spread"` // max - min
	StdDev        float64            `json:"std_dev"`
	Gini          float64            `json:"gini"` // 0=完全公平, 1=完全不公平
	AssignedCount int                `json:"assigned_count"`
	LabelCounts   map[model.DayPart]int `json:"label_counts"` // 各班段人数分布
	Workers       []WorkerStat       `json:"workers"`        // 按工时降序
}

// AnalyzeFairness 从求解结果计算工时公平性指标。
// 未排班员工以 0 工时参与统计，与目标函数中的工时差口径一致。
func AnalyzeFairness(res *model.SolveResult) *FairnessMetrics {
	m := &FairnessMetrics{LabelCounts: make(map[model.DayPart]int)}
	if res == nil || !res.OK() || len(res.Assignments) == 0 {
		return m
	}

	hours := make([]float64, 0, len(res.Assignments))
	sum := 0
	m.MinHours = -1
	for _, a := range res.Assignments {
		m.Workers = append(m.Workers, WorkerStat{
			Worker:    a.Worker,
			WorkHours: a.WorkHours,
			Assigned:  a.Assigned(),
			Label:     a.Label,
		})
		hours = append(hours, float64(a.WorkHours))
		sum += a.WorkHours

		if a.Assigned() {
			m.AssignedCount++
			m.LabelCounts[a.Label]++
		}
		if a.WorkHours > m.MaxHours {
			m.MaxHours = a.WorkHours
		}
		if m.MinHours < 0 || a.WorkHours < m.MinHours {
			m.MinHours = a.WorkHours
		}
	}
	m.Spread = m.MaxHours - m.MinHours
	m.AvgHours = float64(sum) / float64(len(hours))

	variance := 0.0
	for _, h := range hours {
		d := h - m.AvgHours
		variance += d * d
	}
	m.StdDev = math.Sqrt(variance / float64(len(hours)))
	m.Gini = gini(hours)

	for i := range m.Workers {
		if m.AvgHours > 0 {
			m.Workers[i].Deviation = (float64(m.Workers[i].WorkHours) - m.AvgHours) / m.AvgHours * 100
		}
	}
	sort.SliceStable(m.Workers, func(i, j int) bool {
		return m.Workers[i].WorkHours > m.Workers[j].WorkHours
	})

	return m
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}
