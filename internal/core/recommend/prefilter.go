package recommend

import (
	"fmt"
	"strings"
)

// Rejection 被硬性限制排除的菜色與原因
type Rejection struct {
	Dish   Dish   `json:"dish"`
	Reason string `json:"rejection_reason"`
}

// FilterResult 安全集合與排除集合，兩者是輸入的一個分割
type FilterResult struct {
	Safe     []Dish      `json:"safe"`
	Rejected []Rejection `json:"rejected"`
}

// PreFilter 依序檢查過敏原、宗教飲食規範、基礎飲食與黑名單，命中第一項即排除。
// 安全集合為空時呼叫端應視為「沒有安全的菜色」，不得放寬任何硬性限制。
func PreFilter(dishes []Dish, profile UserProfile) FilterResult {
	result := FilterResult{
		Safe:     make([]Dish, 0, len(dishes)),
		Rejected: []Rejection{},
	}
	for _, d := range dishes {
		if reason, rejected := rejectionReason(d, profile); rejected {
			result.Rejected = append(result.Rejected, Rejection{Dish: d, Reason: reason})
			continue
		}
		result.Safe = append(result.Safe, d)
	}
	return result
}

func rejectionReason(d Dish, p UserProfile) (string, bool) {
	text := newHaystack(d.SearchText())

	for _, allergy := range p.Allergies {
		if _, hit := text.containsAny(allergenKeywords(allergy)); hit {
			return fmt.Sprintf("Contains allergen: %s", strings.TrimSpace(allergy)), true
		}
	}

	switch law := DietaryLaw(strings.ToLower(string(p.DietaryLaws))); law {
	case DietaryLawHalal, DietaryLawKosher:
		if _, hit := containsPork(text); hit {
			return fmt.Sprintf("Not %s compliant (pork)", law), true
		}
	}

	if reason, hit := baseDietViolation(text, p); hit {
		return reason, true
	}

	for _, term := range p.DoNotEat {
		if text.contains(term) {
			return fmt.Sprintf("On do-not-eat list: %s", strings.TrimSpace(term)), true
		}
	}
	return "", false
}

// containsPork 宗教飲食規範是硬性限制，字根以子字串比對
func containsPork(text haystack) (string, bool) {
	t := text.without(porkLookalikes)
	if kw, hit := t.containsAny(porkRoots); hit {
		return kw, true
	}
	return t.hasAny(porkWords)
}

// baseDietViolation 只在整字命中時才排除；模糊字眼寧可放行也不誤殺
func baseDietViolation(text haystack, p UserProfile) (string, bool) {
	switch {
	case p.HasDiet("vegan"):
		if kw, hit := text.hasAny(landMeatKeywords); hit {
			return fmt.Sprintf("Not vegan (contains %s)", kw), true
		}
		if kw, hit := text.hasAny(seafoodKeywords); hit {
			return fmt.Sprintf("Not vegan (contains %s)", kw), true
		}
		if kw, hit := text.without(plantCompounds).hasAny(animalProductKeywords); hit {
			return fmt.Sprintf("Not vegan (contains %s)", kw), true
		}
	case p.HasDiet("vegetarian"):
		if kw, hit := text.hasAny(landMeatKeywords); hit {
			return fmt.Sprintf("Not vegetarian (contains %s)", kw), true
		}
		if kw, hit := text.hasAny(seafoodKeywords); hit {
			return fmt.Sprintf("Not vegetarian (contains %s)", kw), true
		}
	case p.HasDiet("pescatarian"):
		if kw, hit := text.hasAny(landMeatKeywords); hit {
			return fmt.Sprintf("Not pescatarian (contains %s)", kw), true
		}
	}
	return "", false
}
