package menu

import (
	"menu-recommender/internal/core/recommend"
	"menu-recommender/internal/infrastructure/config"
)

// EngineOptions 將設定中的分數範圍與放寬參數套到預設引擎參數上
func EngineOptions(r config.RankingConfig) recommend.Options {
	opts := recommend.DefaultOptions()
	if r.Ceil > r.Floor {
		opts.Floor, opts.Ceil = r.Floor, r.Ceil
	}
	if r.FallbackThreshold > 0 {
		opts.FallbackThreshold = r.FallbackThreshold
	}
	if r.RelaxFactor > 0 {
		opts.RelaxFactor = r.RelaxFactor
	}
	return opts
}
