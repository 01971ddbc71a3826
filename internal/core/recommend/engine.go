package recommend

import (
	"math"
	"sort"

	"menu-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Options 引擎參數
type Options struct {
	Weights           Weights
	Floor             float64
	Ceil              float64
	FallbackThreshold float64
	RelaxFactor       float64
	Boosts            []Boost
}

// DefaultOptions 預設參數：分數 1–10、原始分數低於 60 進入放寬模式、放寬係數 0.8
func DefaultOptions() Options {
	return Options{
		Weights:           DefaultWeights,
		Floor:             1,
		Ceil:              10,
		FallbackThreshold: 60,
		RelaxFactor:       0.8,
		Boosts:            DefaultBoosts(),
	}
}

// Engine 加權多因子推薦引擎。無狀態，可被多個請求同時使用
type Engine struct {
	opts Options
}

// NewEngine 以 opts 建立引擎，不合理的欄位退回預設值
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if math.Abs(opts.Weights.sum()-1) > 1e-6 {
		opts.Weights = def.Weights
	}
	if opts.Ceil <= opts.Floor {
		opts.Floor, opts.Ceil = def.Floor, def.Ceil
	}
	if opts.FallbackThreshold <= 0 || opts.FallbackThreshold > 100 {
		opts.FallbackThreshold = def.FallbackThreshold
	}
	if opts.RelaxFactor <= 0 || opts.RelaxFactor > 1 {
		opts.RelaxFactor = def.RelaxFactor
	}
	if opts.Boosts == nil {
		opts.Boosts = def.Boosts
	}
	return &Engine{opts: opts}
}

var defaultEngine = NewEngine(DefaultOptions())

// Options 回傳引擎目前使用的參數
func (e *Engine) Options() Options {
	return e.opts
}

// ScoreItem 以預設權重評分
func ScoreItem(d Dish, p UserProfile, c Context) ItemScore {
	return defaultEngine.ScoreItem(d, p, c)
}

// ScoreItem 計算六個子分數並以權重合成 0–100 的原始分數
func (e *Engine) ScoreItem(d Dish, p UserProfile, c Context) ItemScore {
	return scoreItem(d, p, c, e.opts.Weights)
}

// Ranking 排名結果
type Ranking struct {
	Top3     []ScoredDish `json:"top3"`
	All      []ScoredDish `json:"all"`
	Fallback bool         `json:"fallback"`
}

// RankRecommendations 以預設引擎排名
func RankRecommendations(safe []Dish, p UserProfile, c Context) Ranking {
	return defaultEngine.RankRecommendations(safe, p, c)
}

// RankRecommendations 評分、正規化後依分數由高到低穩定排序，取前三名。
// safe 必須已經過 PreFilter；空集合回傳空但有效的結果
func (e *Engine) RankRecommendations(safe []Dish, p UserProfile, c Context) Ranking {
	if len(safe) == 0 {
		return Ranking{Top3: []ScoredDish{}, All: []ScoredDish{}}
	}

	scored := make([]ScoredDish, len(safe))
	for i, d := range safe {
		s := e.ScoreItem(d, p, c)
		scored[i] = ScoredDish{
			Dish:            d,
			Raw:             s.Raw,
			Subscores:       s.Subscores,
			Reasons:         s.Reasons,
			MacrosEstimated: s.MacrosEstimated,
		}
	}

	batch := e.NormalizeToTen(scored)
	all := batch.Items
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	if batch.Fallback {
		common.LogDebug("推薦進入放寬模式",
			zap.Int("candidates", len(all)),
			zap.Float64("top_raw", all[0].Raw),
		)
	}

	n := 3
	if len(all) < n {
		n = len(all)
	}
	return Ranking{
		Top3:     append([]ScoredDish(nil), all[:n]...),
		All:      all,
		Fallback: batch.Fallback,
	}
}
