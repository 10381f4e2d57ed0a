package validator

import (
	"testing"

	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/model"
)

func validDay() model.DayConfig {
	return model.DayConfig{
		DayStart:       8,
		DayLength:      12,
		AllowedLengths: []int{4, 5},
		MinCoverage:    1,
		MaxCoverage:    2,
	}
}

func TestValidateDayConfig(t *testing.T) {
	if err := ValidateDayConfig(validDay()); err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*model.DayConfig)
	}{
		{"营业日长度为零", func(c *model.DayConfig) { c.DayLength = 0 }},
		{"营业日长度为负", func(c *model.DayConfig) { c.DayLength = -3 }},
		{"开始小时越界", func(c *model.DayConfig) { c.DayStart = 24 }},
		{"结束超出当日", func(c *model.DayConfig) { c.DayStart = 20; c.DayLength = 8 }},
		{"班次时长非正", func(c *model.DayConfig) { c.AllowedLengths = []int{4, 0} }},
		{"最低人数为负", func(c *model.DayConfig) { c.MinCoverage = -1 }},
		{"上限低于下限", func(c *model.DayConfig) { c.MinCoverage = 3; c.MaxCoverage = 2 }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := validDay()
			c.mutate(&cfg)
			err := ValidateDayConfig(cfg)
			if err == nil {
				t.Fatal("应返回配置错误")
			}
			if err.Code != errors.CodeInvalidConfiguration {
				t.Errorf("错误码 = %s, want %s", err.Code, errors.CodeInvalidConfiguration)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	ok := []model.Worker{
		{Name: "小王", Unavailable: []int{0, 23}},
		{Name: "小李"},
	}
	if err := ValidateWorkers(ok); err != nil {
		t.Fatalf("合法名单不应报错: %v", err)
	}

	if err := ValidateWorkers(nil); err == nil || err.Code != errors.CodeInvalidConfiguration {
		t.Error("空名单应返回 INVALID_CONFIGURATION")
	}

	bad := []model.Worker{{Name: "小王", Unavailable: []int{24}}}
	if err := ValidateWorkers(bad); err == nil || err.Code != errors.CodeInvalidWorkerInput {
		t.Error("不可用小时越界应返回 INVALID_WORKER_INPUT")
	}

	neg := []model.Worker{{Name: "小王", Unavailable: []int{-1}}}
	if err := ValidateWorkers(neg); err == nil || err.Code != errors.CodeInvalidWorkerInput {
		t.Error("负数小时应返回 INVALID_WORKER_INPUT")
	}

	// 同名员工是合法输入，按独立个体参与排班
	dup := []model.Worker{{Name: "小王"}, {Name: "小王", Unavailable: []int{10}}}
	if err := ValidateWorkers(dup); err != nil {
		t.Errorf("重名员工不应报错: %v", err)
	}

	anon := []model.Worker{{Name: ""}}
	if err := ValidateWorkers(anon); err == nil || err.Code != errors.CodeInvalidWorkerInput {
		t.Error("空姓名应返回 INVALID_WORKER_INPUT")
	}
}
