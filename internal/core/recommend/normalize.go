package recommend

import (
	"math"
)

// Boost 放寬模式下的近似命中加分：條件成立就累加 Bonus
type Boost struct {
	Name    string
	Applies func(Subscores) bool
	Bonus   float64
}

// DefaultBoosts 口味訊號有兩段門檻，兩者可同時成立並累加
func DefaultBoosts() []Boost {
	return []Boost{
		{Name: "taste_strong", Applies: func(s Subscores) bool { return s.TasteMatch > 0.6 }, Bonus: 10},
		{Name: "protein_source", Applies: func(s Subscores) bool { return s.ProteinSourceMatch > 0.6 }, Bonus: 8},
		{Name: "taste_soft", Applies: func(s Subscores) bool { return s.TasteMatch > 0.5 }, Bonus: 6},
	}
}

// ScoredDish 加上分數與說明的菜色；每次正規化都產生新的值
type ScoredDish struct {
	Dish
	Raw             float64   `json:"raw"`
	Subscores       Subscores `json:"subscores"`
	Reasons         []string  `json:"reasons"`
	Score           float64   `json:"score"`
	FallbackMode    bool      `json:"fallback_mode"`
	MacrosEstimated bool      `json:"macros_estimated,omitempty"`
	Label           Label     `json:"label,omitempty"`
}

// Batch 一次正規化的結果與批次層級的放寬旗標
type Batch struct {
	Items    []ScoredDish `json:"items"`
	Fallback bool         `json:"fallback"`
}

// Bounds 最終分數的上下界
type Bounds struct {
	Floor float64
	Ceil  float64
}

// NormalizeToTen 以預設放寬參數將原始分數映射到 [floor, ceil]；零值 Bounds 代表 1–10
func NormalizeToTen(items []ScoredDish, bounds Bounds) Batch {
	opts := DefaultOptions()
	if bounds.Ceil > bounds.Floor {
		opts.Floor, opts.Ceil = bounds.Floor, bounds.Ceil
	}
	return NewEngine(opts).NormalizeToTen(items)
}

// NormalizeToTen 先判斷是否進入放寬模式，再做 min-max 線性縮放並取到小數第一位
func (e *Engine) NormalizeToTen(items []ScoredDish) Batch {
	if len(items) == 0 {
		return Batch{Items: []ScoredDish{}}
	}

	maxRaw := items[0].Raw
	for _, it := range items[1:] {
		maxRaw = math.Max(maxRaw, it.Raw)
	}
	fallback := maxRaw < e.opts.FallbackThreshold || maxRaw == 0

	adjusted := make([]float64, len(items))
	for i, it := range items {
		r := it.Raw
		if fallback {
			r *= e.opts.RelaxFactor
			for _, b := range e.opts.Boosts {
				if b.Applies != nil && b.Applies(it.Subscores) {
					r += b.Bonus
				}
			}
		}
		adjusted[i] = math.Max(0, r)
	}

	lo, hi := adjusted[0], adjusted[0]
	for _, r := range adjusted[1:] {
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}

	floor, ceil := e.opts.Floor, e.opts.Ceil
	out := make([]ScoredDish, len(items))
	for i, it := range items {
		var score float64
		if hi == lo {
			score = (floor + ceil) / 2
		} else {
			score = floor + (adjusted[i]-lo)/(hi-lo)*(ceil-floor)
		}
		score = clamp(roundTenth(score), floor, ceil)

		sd := it
		sd.Raw = adjusted[i]
		sd.Score = score
		sd.FallbackMode = fallback
		sd.Reasons = append([]string(nil), it.Reasons...)
		out[i] = sd
	}
	return Batch{Items: out, Fallback: fallback}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
