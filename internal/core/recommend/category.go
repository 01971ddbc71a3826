package recommend

import (
	"fmt"
	"math"
	"sort"
)

// Label 簡易模式的菜色類別
type Label string

const (
	LabelRecovery   Label = "Recovery"
	LabelHealthy    Label = "Healthy"
	LabelComforting Label = "Comforting"
)

// labelPriority 同時符合多個類別時的優先順序，也是前三名的挑選順序
var labelPriority = []Label{LabelRecovery, LabelHealthy, LabelComforting}

var (
	categoryProteinKeywords = []string{"chicken", "beef", "salmon", "fish", "tofu", "egg", "eggs", "turkey", "steak", "shrimp", "lentil", "lentils", "tempeh", "lamb", "tuna", "pork", "chickpea", "chickpeas"}
	cookingMethodKeywords   = []string{"grilled", "baked", "roasted", "steamed", "seared", "poached", "broiled", "sous vide"}
	freshKeywords           = []string{"salad", "vegetable", "vegetables", "veggie", "veggies", "greens", "kale", "spinach", "quinoa", "bowl", "fresh", "light", "avocado", "broccoli", "herbs", "cucumber", "tomato"}
	indulgentKeywords       = []string{"fried", "creamy", "cream", "cheese", "cheesy", "butter", "rich", "bacon", "burger", "pizza", "chocolate", "dessert", "cake", "loaded", "crispy", "gravy", "carbonara", "alfredo", "mac and cheese", "brownie"}
)

const (
	categoryBase       = 5.0
	neutralCategoryRaw = 0.0
)

// CategoryResult 簡易模式的結果
type CategoryResult struct {
	Top3 []ScoredDish `json:"top3"`
	All  []ScoredDish `json:"all"`
}

// countHits 計算命中的關鍵字數量
func countHits(text haystack, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if text.has(kw) {
			n++
		}
	}
	return n
}

// classify 只依關鍵字決定類別與類別原始分數
func classify(d Dish) (Label, float64, string) {
	text := newHaystack(d.SearchText())
	protein := countHits(text, categoryProteinKeywords)
	method := countHits(text, cookingMethodKeywords)
	fresh := countHits(text, freshKeywords)
	indulgent := countHits(text, indulgentKeywords)

	switch {
	case protein > 0 && method > 0 && indulgent == 0:
		return LabelRecovery, math.Min(4, 1.5+0.5*float64(protein+method-2)), "Protein with a clean cooking method"
	case fresh > 0 && indulgent == 0:
		return LabelHealthy, math.Min(3.5, 1+0.5*float64(fresh-1)), "Fresh and vegetable-forward"
	case indulgent > 0:
		return LabelComforting, math.Min(3, 0.5*float64(indulgent)), "Comfort food pick"
	}
	return LabelHealthy, neutralCategoryRaw, "Simple choice"
}

func categoryScore(raw float64) float64 {
	return clamp(math.Round(categoryBase+raw+0.5), 1, 10)
}

// ScoreAndLabel 與使用者設定無關：每道菜貼上一個類別並打分，前三名盡量每類一道
func ScoreAndLabel(dishes []Dish) CategoryResult {
	if len(dishes) == 0 {
		return CategoryResult{Top3: []ScoredDish{}, All: []ScoredDish{}}
	}

	all := make([]ScoredDish, len(dishes))
	for i, d := range dishes {
		label, raw, reason := classify(d)
		all[i] = ScoredDish{
			Dish:    d,
			Raw:     raw,
			Score:   categoryScore(raw),
			Label:   label,
			Reasons: []string{reason},
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	return CategoryResult{Top3: balancedTop3(all), All: all}
}

// balancedTop3 每個類別取最佳一道，不足時依排序補齊，菜色總數不足 3 時複製最後一名並改派到未使用的類別
func balancedTop3(sorted []ScoredDish) []ScoredDish {
	top := make([]ScoredDish, 0, 3)
	usedNames := make(map[string]bool)
	usedLabels := make(map[Label]bool)

	for _, label := range labelPriority {
		for _, sd := range sorted {
			if sd.Label == label && !usedNames[sd.Name] {
				top = append(top, sd)
				usedNames[sd.Name] = true
				usedLabels[label] = true
				break
			}
		}
	}

	for _, sd := range sorted {
		if len(top) >= 3 {
			break
		}
		if usedNames[sd.Name] {
			continue
		}
		top = append(top, sd)
		usedNames[sd.Name] = true
		usedLabels[sd.Label] = true
	}

	if len(top) == 0 {
		return top
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})
	lowest := top[len(top)-1]
	for k := 1; len(top) < 3; k++ {
		alt := lowest
		alt.Name = alternateName(lowest.Name, k)
		alt.Label = unusedLabel(usedLabels)
		alt.Score = math.Max(1, lowest.Score-float64(k))
		alt.Reasons = []string{fmt.Sprintf("Alternative take on %s", lowest.Name)}
		usedLabels[alt.Label] = true
		top = append(top, alt)
	}
	return top
}

func alternateName(name string, k int) string {
	if k == 1 {
		return name + " (alternative)"
	}
	return fmt.Sprintf("%s (alternative %d)", name, k)
}

func unusedLabel(used map[Label]bool) Label {
	for _, l := range labelPriority {
		if !used[l] {
			return l
		}
	}
	return LabelHealthy
}
