package recommend

import (
	"math"
	"strings"
)

// Subscores 六個獨立的子分數，皆在 [0,1]
type Subscores struct {
	MacroFit           float64 `json:"macro_fit"`
	PortionFit         float64 `json:"portion_fit"`
	ProteinSourceMatch float64 `json:"protein_source_match"`
	TasteMatch         float64 `json:"taste_match"`
	GoalAlignment      float64 `json:"goal_alignment"`
	HealthGuardrails   float64 `json:"health_guardrails"`
}

// Weights 子分數權重，總和為 1
type Weights struct {
	MacroFit           float64
	PortionFit         float64
	ProteinSourceMatch float64
	TasteMatch         float64
	GoalAlignment      float64
	HealthGuardrails   float64
}

// DefaultWeights 唯一採用的權重表
var DefaultWeights = Weights{
	MacroFit:           0.25,
	PortionFit:         0.15,
	ProteinSourceMatch: 0.15,
	TasteMatch:         0.15,
	GoalAlignment:      0.15,
	HealthGuardrails:   0.15,
}

func (w Weights) sum() float64 {
	return w.MacroFit + w.PortionFit + w.ProteinSourceMatch + w.TasteMatch + w.GoalAlignment + w.HealthGuardrails
}

func (w Weights) combine(s Subscores) float64 {
	raw := 100 * (w.MacroFit*s.MacroFit +
		w.PortionFit*s.PortionFit +
		w.ProteinSourceMatch*s.ProteinSourceMatch +
		w.TasteMatch*s.TasteMatch +
		w.GoalAlignment*s.GoalAlignment +
		w.HealthGuardrails*s.HealthGuardrails)
	return clamp(raw, 0, 100)
}

// ItemScore 單一菜色的評分結果
type ItemScore struct {
	Raw             float64   `json:"raw"`
	Subscores       Subscores `json:"subscores"`
	Reasons         []string  `json:"reasons"`
	MacrosEstimated bool      `json:"macros_estimated"`
}

// macroRange 熱量佔比的目標區間（百分比，含端點）
type macroRange struct{ min, max float64 }

func (r macroRange) contains(v float64) bool { return v >= r.min && v <= r.max }

type macroTargets struct{ protein, carbs, fat macroRange }

var timingTargets = map[Timing]macroTargets{
	TimingPreWorkout:  {protein: macroRange{15, 25}, carbs: macroRange{50, 65}, fat: macroRange{15, 25}},
	TimingPostWorkout: {protein: macroRange{30, 40}, carbs: macroRange{30, 45}, fat: macroRange{20, 30}},
	TimingRegular:     {protein: macroRange{25, 35}, carbs: macroRange{35, 45}, fat: macroRange{25, 35}},
}

// 關鍵字估算的基準值與每類提示字的加成
const (
	baseProteinEstimate = 20.0
	baseCarbEstimate    = 50.0
	baseFatEstimate     = 30.0
	cueNudge            = 20.0
	maxReasons          = 3
)

func scoreItem(d Dish, p UserProfile, c Context, w Weights) ItemScore {
	c = c.WithDefaults()
	text := newHaystack(d.SearchText())

	macroFit, estimated := macroFitScore(d, text, c.Timing)
	sub := Subscores{
		MacroFit:           macroFit,
		PortionFit:         portionFitScore(d, text, c.Hunger),
		ProteinSourceMatch: proteinSourceScore(text, p.PreferredProteinSources),
		TasteMatch:         tasteScore(text, p.TasteAndPrepPreferences),
		GoalAlignment:      goalScore(text, p.Goal),
		HealthGuardrails:   healthScore(text, p.HealthFlags),
	}

	return ItemScore{
		Raw:             w.combine(sub),
		Subscores:       sub,
		Reasons:         buildReasons(sub, text, p, c),
		MacrosEstimated: estimated,
	}
}

// MacroRatios 回傳蛋白質/碳水/脂肪的熱量佔比（總和 100），以及是否為關鍵字估算
func MacroRatios(d Dish) (protein, carbs, fat float64, estimated bool) {
	return macroRatios(d, newHaystack(d.SearchText()))
}

func macroRatios(d Dish, text haystack) (protein, carbs, fat float64, estimated bool) {
	if d.Macros != nil {
		if total := macroEnergy(*d.Macros); total > 0 {
			return d.Macros.Protein * 4 / total * 100,
				d.Macros.Carbs * 4 / total * 100,
				d.Macros.Fat * 9 / total * 100,
				false
		}
	}

	// 估算值僅供排序參考，不是營養計算
	p, c, f := baseProteinEstimate, baseCarbEstimate, baseFatEstimate
	if _, hit := text.hasAny(proteinCueKeywords); hit {
		p += cueNudge
	}
	if _, hit := text.hasAny(carbCueKeywords); hit {
		c += cueNudge
	}
	if _, hit := text.hasAny(fatCueKeywords); hit {
		f += cueNudge
	}
	total := p + c + f
	return p / total * 100, c / total * 100, f / total * 100, true
}

func macroFitScore(d Dish, text haystack, timing Timing) (float64, bool) {
	protein, carbs, fat, estimated := macroRatios(d, text)
	target, ok := timingTargets[timing]
	if !ok {
		target = timingTargets[TimingRegular]
	}

	score := 0.0
	if target.protein.contains(protein) {
		score += 0.33
	}
	if target.carbs.contains(carbs) {
		score += 0.33
	}
	if target.fat.contains(fat) {
		score += 0.34
	}
	return clamp(score, 0, 1), estimated
}

func preferredPortion(h Hunger) Portion {
	switch h {
	case HungerLight:
		return PortionSmall
	case HungerHearty:
		return PortionLarge
	default:
		return PortionMedium
	}
}

// EstimatePortion 顯式欄位優先，否則依價格與關鍵字推估
func EstimatePortion(d Dish) Portion {
	return estimatePortion(d, newHaystack(d.SearchText()))
}

func estimatePortion(d Dish, text haystack) Portion {
	switch d.Portion {
	case PortionSmall, PortionMedium, PortionLarge:
		return d.Portion
	}
	_, large := text.hasAny(largePortionKeywords)
	if large || (d.Price != nil && *d.Price > 20) {
		return PortionLarge
	}
	_, small := text.hasAny(smallPortionKeywords)
	if small || (d.Price != nil && *d.Price < 12) {
		return PortionSmall
	}
	return PortionMedium
}

func portionRank(p Portion) int {
	switch p {
	case PortionSmall:
		return 0
	case PortionLarge:
		return 2
	default:
		return 1
	}
}

func portionFitScore(d Dish, text haystack, h Hunger) float64 {
	diff := portionRank(estimatePortion(d, text)) - portionRank(preferredPortion(h))
	switch diff {
	case 0:
		return 1
	case 1, -1:
		return 0.5
	default:
		return 0
	}
}

func proteinSourceScore(text haystack, sources []string) float64 {
	declared, matched := 0, 0
	for _, src := range sources {
		kws := proteinSourceKeywords(src)
		if len(kws) == 0 {
			continue
		}
		declared++
		if _, hit := text.hasAny(kws); hit {
			matched++
		}
	}
	if declared == 0 {
		return 0.5
	}
	return float64(matched) / float64(declared)
}

// tastePreference 將 "prefer_grilled" 拆成動詞與主題
func tastePreference(pref string) (verb, subject string) {
	pref = strings.ToLower(strings.TrimSpace(pref))
	if i := strings.Index(pref, "_"); i > 0 {
		return pref[:i], strings.ReplaceAll(pref[i+1:], "_", " ")
	}
	return "prefer", pref
}

func tasteSatisfied(text haystack, pref string) bool {
	verb, subject := tastePreference(pref)
	_, hit := text.hasAny(tasteKeywords(subject))
	if verb == "avoid" || verb == "no" {
		return !hit
	}
	return hit
}

func tasteScore(text haystack, prefs []string) float64 {
	declared, satisfied := 0, 0
	for _, pref := range prefs {
		if strings.TrimSpace(pref) == "" {
			continue
		}
		declared++
		if tasteSatisfied(text, pref) {
			satisfied++
		}
	}
	if declared == 0 {
		return 0.5
	}
	return float64(satisfied) / float64(declared)
}

// goalScore 先看加分字再看扣分字
func goalScore(text haystack, goal Goal) float64 {
	switch Goal(strings.ToLower(string(goal))) {
	case GoalLose:
		if _, hit := text.hasAny(loseRewardKeywords); hit {
			return 0.8
		}
		if _, hit := text.hasAny(losePenaltyKeywords); hit {
			return 0.2
		}
	case GoalGain:
		if _, hit := text.hasAny(gainRewardKeywords); hit {
			return 0.8
		}
		if _, hit := text.hasAny(gainPenaltyKeywords); hit {
			return 0.3
		}
	}
	return 0.5
}

func healthScore(text haystack, flags []string) float64 {
	score := 1.0
	seen := make(map[string]bool, len(flags))
	for _, flag := range flags {
		key := strings.ToLower(strings.TrimSpace(flag))
		rule, ok := healthRules[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		if _, hit := text.hasAny(rule.triggers); hit {
			score *= rule.factor
		}
	}
	return clamp(score, 0, 1)
}

func buildReasons(s Subscores, text haystack, p UserProfile, c Context) []string {
	reasons := make([]string, 0, maxReasons)
	add := func(r string) {
		if len(reasons) < maxReasons {
			reasons = append(reasons, r)
		}
	}

	if s.MacroFit > 0.7 {
		switch c.Timing {
		case TimingPreWorkout:
			add("Great pre-workout balance")
		case TimingPostWorkout:
			add("Great post-workout balance")
		default:
			add("Balanced macros")
		}
	}
	if s.PortionFit == 1 {
		add("Portion fits hunger")
	}
	if s.ProteinSourceMatch > 0.7 {
		add("High protein")
	}
	if s.TasteMatch > 0.7 {
		_, grilled := text.hasAny(tastePreferenceKeywords["grilled"])
		_, fried := text.hasAny(tastePreferenceKeywords["fried"])
		if (p.HasTaste("prefer_grilled") || p.HasTaste("avoid_fried")) && grilled && !fried {
			add("Grilled not fried")
		}
		if p.HasTaste("love_pasta") && tasteSatisfied(text, "love_pasta") {
			add("Pasta lover")
		}
		if p.HasTaste("prefer_spicy") && tasteSatisfied(text, "prefer_spicy") {
			add("Spicy kick")
		}
	}

	// 低優先的情境補充
	if s.PortionFit >= 0.5 {
		switch c.Hunger {
		case HungerLight:
			add("Light and easy")
		case HungerHearty:
			add("Filling meal")
		default:
			add("Satisfying choice")
		}
	}
	if s.MacroFit >= 0.33 {
		switch c.Timing {
		case TimingPreWorkout:
			add("Fuel before training")
		case TimingPostWorkout:
			add("Supports recovery")
		}
	}
	return reasons
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
