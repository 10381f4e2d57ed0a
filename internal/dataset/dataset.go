// Package dataset 提供内置的演示数据集
package dataset

import "github.com/dangban/dangban/pkg/model"

// Dataset 一组可直接求解的演示输入
type Dataset struct {
	Key     string          `json:"key"`
	Name    string          `json:"name"`
	Note    string          `json:"note"`
	Day     model.DayConfig `json:"day"`
	Workers []model.Worker  `json:"workers"`
}

// 演示数据集，顺序固定
var demos = []Dataset{
	{
		Key:  "feasible",
		Name: "Feasible (clean schedule)",
		Note: "Should cover all hours with 1–2 workers. Good baseline demo.",
		Day: model.DayConfig{
			DayStart:       8,
			DayLength:      12,
			AllowedLengths: []int{4, 5},
			MinCoverage:    1,
			MaxCoverage:    2,
		},
		Workers: []model.Worker{
			{Name: "Alex", Unavailable: []int{10}},
			{Name: "Brianna", Unavailable: []int{12}},
			{Name: "Carlos", Unavailable: []int{9, 14}},
			{Name: "Diana", Unavailable: []int{11}},
			{Name: "Ethan", Unavailable: []int{15}},
			{Name: "Faith"},
			{Name: "Gabriel", Unavailable: []int{13}},
		},
	},
	{
		Key:  "understaff-noon",
		Name: "Understaff demo (forced gap at 12 PM)",
		Note: "Everyone is unavailable at 12–1 PM, so you will see UNDERSTAFF there.",
		Day: model.DayConfig{
			DayStart:       8,
			DayLength:      12,
			AllowedLengths: []int{4, 5},
			MinCoverage:    1,
			MaxCoverage:    2,
		},
		Workers: []model.Worker{
			{Name: "Alex", Unavailable: []int{12}},
			{Name: "Brianna", Unavailable: []int{12}},
			{Name: "Carlos", Unavailable: []int{12}},
			{Name: "Diana", Unavailable: []int{12}},
			{Name: "Ethan", Unavailable: []int{12}},
			{Name: "Faith", Unavailable: []int{9, 15}},
		},
	},
	{
		Key:  "blackout-11-13",
		Name: "Understaff demo (2-hour blackout 11–1)",
		Note: "You should see UNDERSTAFF for 11–12 and 12–1.",
		Day: model.DayConfig{
			DayStart:       8,
			DayLength:      12,
			AllowedLengths: []int{4, 5},
			MinCoverage:    1,
			MaxCoverage:    2,
		},
		Workers: []model.Worker{
			{Name: "Alex", Unavailable: []int{11, 12}},
			{Name: "Brianna", Unavailable: []int{11, 12}},
			{Name: "Carlos", Unavailable: []int{11, 12}},
			{Name: "Diana", Unavailable: []int{11, 12}},
			{Name: "Ethan", Unavailable: []int{11, 12}},
			{Name: "Faith", Unavailable: []int{9, 15}},
		},
	},
	{
		Key:  "busier-exact-two",
		Name: "Busier day (min=2, max=2)",
		Note: "Requires 2 workers every hour (exactly 2). Understaff may appear if impossible.",
		Day: model.DayConfig{
			DayStart:       8,
			DayLength:      12,
			AllowedLengths: []int{4, 5},
			MinCoverage:    2,
			MaxCoverage:    2,
		},
		Workers: []model.Worker{
			{Name: "Alex", Unavailable: []int{10}},
			{Name: "Brianna", Unavailable: []int{12}},
			{Name: "Carlos", Unavailable: []int{9, 14}},
			{Name: "Diana", Unavailable: []int{11}},
			{Name: "Ethan", Unavailable: []int{15}},
			{Name: "Faith"},
			{Name: "Gabriel", Unavailable: []int{13}},
			{Name: "Hannah", Unavailable: []int{16}},
			{Name: "Ivan", Unavailable: []int{8, 17}},
		},
	},
}

// All 返回全部演示数据集
func All() []Dataset {
	out := make([]Dataset, len(demos))
	copy(out, demos)
	return out
}

// ByKey 按键查找演示数据集
func ByKey(key string) (Dataset, bool) {
	for _, d := range demos {
		if d.Key == key {
			return d, true
		}
	}
	return Dataset{}, false
}
