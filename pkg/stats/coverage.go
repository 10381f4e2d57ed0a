// Package stats 提供排班统计分析功能
package stats

import (
	"fmt"
	"strings"

	"github.com/dangban/dangban/pkg/model"
)

// CoverageRow 覆盖报表中的一行，对应营业日内的一个整点小时段
type CoverageRow struct {
	StartHour  int    `json:"block_start_hour_24h"`
	EndHour    int    `json:"block_end_hour_24h"`
	StartLabel string `json:"block_start_time"` // 12小时制显示
	EndLabel   string `json:"block_end_time"`
	Coverage   int    `json:"coverage"`
	Understaff int    `json:"understaff"`
	MinSoft    int    `json:"min_workers_soft"`
	MaxHard    int    `json:"max_workers_hard"`
}

// CoverageReport 按小时的覆盖报表
type CoverageReport struct {
	Rows            []CoverageRow `json:"rows"`
	TotalCoverage   int           `json:"total_coverage"`
	TotalUnderstaff int           `json:"total_understaff"`
	UnderstaffHours []int         `json:"understaff_hours,omitempty"` // 存在缺员的小时，升序
}

// BuildCoverageReport 从求解结果生成覆盖报表，行按小时升序。
// 结果不是 ok 状态时返回空报表。
func BuildCoverageReport(res *model.SolveResult) *CoverageReport {
	report := &CoverageReport{}
	if res == nil || !res.OK() {
		return report
	}

	for h := res.DayStart; h < res.DayEnd; h++ {
		cov := res.CoverageByHour[h]
		under := res.UnderstaffByHour[h]
		report.Rows = append(report.Rows, CoverageRow{
			StartHour:  h,
			EndHour:    h + 1,
			StartLabel: model.FormatHour(h),
			EndLabel:   model.FormatHour(h + 1),
			Coverage:   cov,
			Understaff: under,
			MinSoft:    res.MinCoverage,
			MaxHard:    res.MaxCoverage,
		})
		report.TotalCoverage += cov
		report.TotalUnderstaff += under
		if under > 0 {
			report.UnderstaffHours = append(report.UnderstaffHours, h)
		}
	}
	return report
}

// Render 将报表渲染为对齐的文本表格
func (r *CoverageReport) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-22s %-10s %-12s %-6s %-6s\n", "时段", "覆盖", "缺员", "下限", "上限")
	for _, row := range r.Rows {
		span := fmt.Sprintf("%s – %s", row.StartLabel, row.EndLabel)
		under := "-"
		if row.Understaff > 0 {
			under = fmt.Sprintf("缺 %d 人", row.Understaff)
		}
		fmt.Fprintf(&b, "%-22s %-10d %-12s %-6d %-6d\n", span, row.Coverage, under, row.MinSoft, row.MaxHard)
	}
	if r.TotalUnderstaff > 0 {
		fmt.Fprintf(&b, "合计缺员 %d 人时\n", r.TotalUnderstaff)
	}
	return b.String()
}
