// Package validator 提供排班输入验证功能
package validator

import (
	"fmt"

	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/model"
)

// ValidateDayConfig 验证营业日配置。
// 不验证候选班次是否存在：允许的班长都放不进营业日时
// 候选集为空，由求解阶段给出无解结果，不算配置错误。
func ValidateDayConfig(cfg model.DayConfig) *errors.AppError {
	if cfg.DayStart < 0 || cfg.DayStart > 23 {
		return errors.InvalidConfiguration(fmt.Sprintf("day_start_hour 必须在 0-23 之间，收到 %d", cfg.DayStart))
	}
	if cfg.DayLength <= 0 {
		return errors.InvalidConfiguration(fmt.Sprintf("day_length_hours 必须为正数，收到 %d", cfg.DayLength))
	}
	if cfg.DayEnd() > 24 {
		return errors.InvalidConfiguration(fmt.Sprintf("营业日结束于 %d 点，超出当日范围", cfg.DayEnd()))
	}
	for _, l := range cfg.AllowedLengths {
		if l <= 0 {
			return errors.InvalidConfiguration(fmt.Sprintf("班次时长必须为正数，收到 %d", l))
		}
	}
	if cfg.MinCoverage < 0 {
		return errors.InvalidConfiguration(fmt.Sprintf("min_workers 不能为负数，收到 %d", cfg.MinCoverage))
	}
	if cfg.MaxCoverage < 0 {
		return errors.InvalidConfiguration(fmt.Sprintf("max_workers 不能为负数，收到 %d", cfg.MaxCoverage))
	}
	if cfg.MaxCoverage < cfg.MinCoverage {
		return errors.InvalidConfiguration(
			fmt.Sprintf("max_workers(%d) 不能小于 min_workers(%d)", cfg.MaxCoverage, cfg.MinCoverage))
	}
	return nil
}

// ValidateWorkers 验证员工名单。
// 姓名非空即可，不要求唯一，同名员工按独立个体排班。
func ValidateWorkers(workers []model.Worker) *errors.AppError {
	if len(workers) == 0 {
		return errors.InvalidConfiguration("员工名单不能为空")
	}

	for _, w := range workers {
		if w.Name == "" {
			return errors.InvalidWorkerInput(w.Name, "姓名不能为空")
		}

		for _, h := range w.Unavailable {
			if h < 0 || h > 23 {
				return errors.InvalidWorkerInput(w.Name, fmt.Sprintf("不可用小时 %d 超出 0-23 范围", h))
			}
		}
	}
	return nil
}

// ValidateRequest 验证一次排班请求的全部输入
func ValidateRequest(workers []model.Worker, cfg model.DayConfig) *errors.AppError {
	if err := ValidateDayConfig(cfg); err != nil {
		return err
	}
	return ValidateWorkers(workers)
}
