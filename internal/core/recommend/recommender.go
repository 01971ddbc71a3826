package recommend

import (
	"fmt"
	"strings"

	"menu-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Mode 推薦演算法
type Mode string

const (
	ModeWeighted Mode = "weighted"
	ModeCategory Mode = "category"
)

// EstimationDisclaimer 有菜色使用關鍵字估算營養時附在回應中
const EstimationDisclaimer = "Some nutrition values were estimated from menu wording and are approximate. This is not medical advice."

// NoSafeDishesMessage 硬性限制過濾後沒有任何菜色
const NoSafeDishesMessage = "No dishes on this menu matched your dietary needs."

// Recommendation 推薦結果
type Recommendation struct {
	Mode         Mode         `json:"mode"`
	Top3         []ScoredDish `json:"top3"`
	All          []ScoredDish `json:"all"`
	Rejected     []Rejection  `json:"rejected"`
	Fallback     bool         `json:"fallback"`
	NoSafeDishes bool         `json:"no_safe_dishes"`
	Message      string       `json:"message,omitempty"`
	Disclaimer   string       `json:"disclaimer,omitempty"`
}

// Recommender 推薦能力：兩種演算法都會先做硬性過濾
type Recommender interface {
	Mode() Mode
	Recommend(dishes []Dish, p UserProfile, c Context) Recommendation
}

// ParseMode 空字串視為 weighted
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeWeighted:
		return ModeWeighted, nil
	case ModeCategory:
		return ModeCategory, nil
	}
	return "", common.NewValidationError(fmt.Sprintf("invalid mode %q: want weighted or category", s))
}

// NewRecommender 依模式建立推薦器；engine 為 nil 時使用預設引擎
func NewRecommender(mode Mode, engine *Engine) (Recommender, error) {
	if engine == nil {
		engine = defaultEngine
	}
	switch mode {
	case "", ModeWeighted:
		return &WeightedRecommender{engine: engine}, nil
	case ModeCategory:
		return &CategoryRecommender{}, nil
	}
	return nil, common.NewValidationError(fmt.Sprintf("invalid mode %q", mode))
}

// WeightedRecommender 加權多因子排名
type WeightedRecommender struct {
	engine *Engine
}

// NewWeightedRecommender 建立加權推薦器
func NewWeightedRecommender(engine *Engine) *WeightedRecommender {
	if engine == nil {
		engine = defaultEngine
	}
	return &WeightedRecommender{engine: engine}
}

func (r *WeightedRecommender) Mode() Mode { return ModeWeighted }

func (r *WeightedRecommender) Recommend(dishes []Dish, p UserProfile, c Context) Recommendation {
	filtered := PreFilter(dishes, p)
	rec := newRecommendation(ModeWeighted, dishes, filtered)
	if rec.NoSafeDishes {
		return rec
	}

	ranking := r.engine.RankRecommendations(filtered.Safe, p, c)
	rec.Top3 = ranking.Top3
	rec.All = ranking.All
	rec.Fallback = ranking.Fallback
	for _, sd := range ranking.All {
		if sd.MacrosEstimated {
			rec.Disclaimer = EstimationDisclaimer
			break
		}
	}
	return rec
}

// CategoryRecommender 關鍵字分類 + 類別多樣性
type CategoryRecommender struct{}

func (r *CategoryRecommender) Mode() Mode { return ModeCategory }

func (r *CategoryRecommender) Recommend(dishes []Dish, p UserProfile, _ Context) Recommendation {
	filtered := PreFilter(dishes, p)
	rec := newRecommendation(ModeCategory, dishes, filtered)
	if rec.NoSafeDishes {
		return rec
	}

	result := ScoreAndLabel(filtered.Safe)
	rec.Top3 = result.Top3
	rec.All = result.All
	return rec
}

func newRecommendation(mode Mode, dishes []Dish, filtered FilterResult) Recommendation {
	rec := Recommendation{
		Mode:     mode,
		Top3:     []ScoredDish{},
		All:      []ScoredDish{},
		Rejected: filtered.Rejected,
	}
	if len(dishes) > 0 && len(filtered.Safe) == 0 {
		rec.NoSafeDishes = true
		rec.Message = NoSafeDishesMessage
		common.LogDebug("硬性限制後沒有安全的菜色",
			zap.String("mode", string(mode)),
			zap.Int("rejected", len(filtered.Rejected)),
		)
	}
	return rec
}
