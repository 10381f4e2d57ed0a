// Package model 定义排班求解引擎的核心数据模型
package model

import "fmt"

// DayPart 班次在营业日内的位置标签
type DayPart string

const (
	DayPartOpening DayPart = "Opening" // 开店段（营业日前三分之一）
	DayPartMid     DayPart = "Mid"     // 中间段
	DayPartClosing DayPart = "Closing" // 闭店段（营业日后三分之一）
)

// FormatHour 将24小时制的整点小时转换为12小时制显示（如 13 -> "1:00 PM"）
func FormatHour(hour int) string {
	hour = ((hour % 24) + 24) % 24
	switch {
	case hour == 0:
		return "12:00 AM"
	case hour < 12:
		return fmt.Sprintf("%d:00 AM", hour)
	case hour == 12:
		return "12:00 PM"
	default:
		return fmt.Sprintf("%d:00 PM", hour-12)
	}
}

// ClassifyShiftStart 根据班次开始时间落在营业日的哪个三分之一，
// 返回 Opening/Mid/Closing 标签。营业日长度不为正时统一返回 Mid。
func ClassifyShiftStart(dayStart, dayEnd, shiftStart int) DayPart {
	dayLen := dayEnd - dayStart
	if dayLen <= 0 {
		return DayPartMid
	}

	third := float64(dayLen) / 3.0
	pos := float64(shiftStart - dayStart)

	switch {
	case pos < third:
		return DayPartOpening
	case pos < 2*third:
		return DayPartMid
	default:
		return DayPartClosing
	}
}
