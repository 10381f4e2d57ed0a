// Package model 定义排班求解引擎的核心数据模型
package model

import "sort"

// Worker 参与单日排班的员工。
// 一次求解期间不可变；名字非空但不要求唯一。
type Worker struct {
	Name        string `json:"name"`
	Unavailable []int  `json:"unavailable,omitempty"` // 不可用的整点小时（0-23），小时 h 表示 [h, h+1) 不可用
}

// UnavailableSet 返回不可用小时的集合形式
func (w Worker) UnavailableSet() map[int]bool {
	set := make(map[int]bool, len(w.Unavailable))
	for _, h := range w.Unavailable {
		set[h] = true
	}
	return set
}

// SortedUnavailable 返回去重并升序排列的不可用小时列表
func (w Worker) SortedUnavailable() []int {
	set := w.UnavailableSet()
	hours := make([]int, 0, len(set))
	for h := range set {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}
