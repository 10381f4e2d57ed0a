// Package model 定义排班求解引擎的核心数据模型
package model

import "fmt"

// Shift 候选班次，表示营业日内的一个 [Start, End) 小时窗口。
// 纯值对象，不归属任何员工，可在所有员工的可行班次列表间共享。
type Shift struct {
	Start int `json:"start"` // 开始小时（24小时制整点）
	End   int `json:"end"`   // 结束小时（不含）
}

// Length 返回班次时长（小时）
func (s Shift) Length() int {
	return s.End - s.Start
}

// Covers 检查班次是否覆盖整点小时 h（即 Start <= h < End）
func (s Shift) Covers(h int) bool {
	return s.Start <= h && h < s.End
}

// OverlapsUnavailable 检查班次是否与不可用小时集合重叠
func (s Shift) OverlapsUnavailable(unavailable map[int]bool) bool {
	for h := s.Start; h < s.End; h++ {
		if unavailable[h] {
			return true
		}
	}
	return false
}

// String 返回班次的12小时制显示形式（如 "8:00 AM – 12:00 PM"）
func (s Shift) String() string {
	return fmt.Sprintf("%s – %s", FormatHour(s.Start), FormatHour(s.End))
}
