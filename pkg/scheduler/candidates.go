// Package scheduler 实现单日排班求解引擎：候选班次枚举、可行性过滤、
// 约束模型构建与结果提取
package scheduler

import (
	"github.com/dangban/dangban/pkg/model"
)

// BuildCandidateShifts 枚举营业日内所有候选班次。
// 按允许时长逐一展开，每个时长从营业开始到最晚可完整容纳的起点。
// 放不进营业日的时长自然产生零个候选；候选集为空不是错误。
func BuildCandidateShifts(cfg model.DayConfig) []model.Shift {
	var shifts []model.Shift

	seen := make(map[int]bool, len(cfg.AllowedLengths))
	for _, length := range cfg.AllowedLengths {
		if length <= 0 || seen[length] {
			continue
		}
		seen[length] = true

		for start := cfg.DayStart; start+length <= cfg.DayEnd(); start++ {
			shifts = append(shifts, model.Shift{Start: start, End: start + length})
		}
	}
	return shifts
}

// FeasibleIndices 返回该员工可以承担的候选班次下标。
// 班次与员工任一不可用小时重叠即不可行；营业日外的不可用小时无影响。
func FeasibleIndices(w model.Worker, candidates []model.Shift) []int {
	unavailable := w.UnavailableSet()

	var feasible []int
	for i, s := range candidates {
		if !s.OverlapsUnavailable(unavailable) {
			feasible = append(feasible, i)
		}
	}
	return feasible
}
