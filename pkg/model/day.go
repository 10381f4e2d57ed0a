// Package model 定义排班求解引擎的核心数据模型
package model

// DayConfig 单个营业日的排班参数。
// 不变量：MaxCoverage >= MinCoverage >= 0，DayLength >= min(AllowedLengths)。
type DayConfig struct {
	DayStart       int   `json:"day_start"`       // 营业开始小时（24小时制）
	DayLength      int   `json:"day_length"`      // 营业时长（小时，正数）
	AllowedLengths []int `json:"allowed_lengths"` // 允许的班次时长集合（如 {4, 5}）
	MinCoverage    int   `json:"min_coverage"`    // 每小时最少在岗人数（软约束）
	MaxCoverage    int   `json:"max_coverage"`    // 每小时最多在岗人数（硬约束）
}

// DefaultAllowedLengths 默认允许的班次时长
var DefaultAllowedLengths = []int{4, 5}

// DayEnd 返回营业结束小时
func (c DayConfig) DayEnd() int {
	return c.DayStart + c.DayLength
}

// Hours 返回营业日内所有整点小时
func (c DayConfig) Hours() []int {
	hours := make([]int, 0, c.DayLength)
	for h := c.DayStart; h < c.DayEnd(); h++ {
		hours = append(hours, h)
	}
	return hours
}

// MinAllowedLength 返回允许时长中的最小值，集合为空时返回 0
func (c DayConfig) MinAllowedLength() int {
	min := 0
	for _, l := range c.AllowedLengths {
		if min == 0 || l < min {
			min = l
		}
	}
	return min
}
