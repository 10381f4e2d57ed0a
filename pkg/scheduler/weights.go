package scheduler

import "github.com/dangban/dangban/pkg/model"

// Weights 词典序目标的三级权重：缺员 > 工时差 > 总覆盖。
// 高一级指标改善 1 个单位必须压过低一级指标的最大可能变化，
// 因此权重由各级指标的取值上界推导，而不是取固定经验常数。
type Weights struct {
	Understaff int64
	Spread     int64
	Coverage   int64
}

// DeriveWeights 根据营业日参数推导严格分层的目标权重。
//
//	W_coverage = 1
//	W_spread   > 总覆盖上界 * W_coverage
//	W_understaff > 工时差上界 * W_spread + 总覆盖上界 * W_coverage
func DeriveWeights(cfg model.DayConfig) Weights {
	// 总覆盖上界：每小时最多 MaxCoverage 人
	maxTotalCoverage := int64(cfg.DayLength) * int64(cfg.MaxCoverage)
	if maxTotalCoverage < 1 {
		maxTotalCoverage = 1
	}

	// 工时差上界：工时变量的取值上界为整天 24 小时
	const maxSpread = int64(24)

	w := Weights{Coverage: 1}
	w.Spread = maxTotalCoverage*w.Coverage + 1
	w.Understaff = maxSpread*w.Spread + maxTotalCoverage*w.Coverage + 1
	return w
}
