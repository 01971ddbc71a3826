package recommend

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cast"
)

// Portion 份量大小
type Portion string

const (
	PortionSmall  Portion = "small"
	PortionMedium Portion = "medium"
	PortionLarge  Portion = "large"
)

// Macros 巨量營養素，單位一律為公克
type Macros struct {
	Protein float64 `json:"protein_g"`
	Carbs   float64 `json:"carbs_g"`
	Fat     float64 `json:"fat_g"`
}

// Dish 正規化後的菜色；引擎只讀不寫，所有加工都產生新的值
type Dish struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Price       *float64 `json:"price"`
	Calories    *float64 `json:"calories,omitempty"`
	Macros      *Macros  `json:"macros,omitempty"`
	Portion     Portion  `json:"portion,omitempty"`

	searchText string
}

// NewDish 以名稱、描述與食材建立菜色
func NewDish(name, description string, ingredients ...string) Dish {
	d := Dish{Name: name, Description: description, Ingredients: ingredients}
	d.searchText = buildSearchText(d)
	return d
}

// SearchText 名稱、描述與食材串接後的小寫字串，所有關鍵字比對都使用它
func (d Dish) SearchText() string {
	if d.searchText != "" {
		return d.searchText
	}
	return buildSearchText(d)
}

func buildSearchText(d Dish) string {
	parts := make([]string, 0, 2+len(d.Ingredients))
	parts = append(parts, d.Name, d.Description)
	parts = append(parts, d.Ingredients...)
	return strings.ToLower(strings.Join(parts, " "))
}

// 欄位別名（已經過 normalizeKey 處理）
var (
	nameKeys        = []string{"name", "title", "dish", "dishname", "item", "itemname"}
	descriptionKeys = []string{"description", "desc", "details", "summary"}
	ingredientKeys  = []string{"ingredients", "ingredientlist", "ingredient"}
	priceKeys       = []string{"price", "cost", "amount", "priceusd"}
	calorieKeys     = []string{"calories", "kcal", "energy", "calorie", "energykcal"}
	proteinKeys     = []string{"protein", "proteing", "proteins", "proteingrams"}
	carbKeys        = []string{"carbs", "carbohydrates", "carb", "carbsg", "carbohydrate", "carbohydratesg", "carbgrams"}
	fatKeys         = []string{"fat", "fats", "fatg", "totalfat", "fatgrams"}
	portionKeys     = []string{"portion", "portionsize", "size", "serving", "servingsize"}
	macroContainers = []string{"macros", "nutrition", "macronutrients", "nutritionfacts"}
)

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// NormalizeDish 將欄位名稱與型別不一的原始菜色轉成標準形狀，原始 map 不會被修改
func NormalizeDish(raw map[string]any) Dish {
	fields := indexKeys(raw)

	d := Dish{
		Name:        strings.TrimSpace(cast.ToString(lookup(fields, nameKeys))),
		Description: strings.TrimSpace(cast.ToString(lookup(fields, descriptionKeys))),
		Ingredients: parseIngredients(lookup(fields, ingredientKeys)),
	}
	if price, ok := parseNumber(lookup(fields, priceKeys)); ok && price >= 0 {
		d.Price = &price
	}
	if kcal, ok := parseNumber(lookup(fields, calorieKeys)); ok && kcal > 0 {
		d.Calories = &kcal
	}

	macroFields := fields
	for _, key := range macroContainers {
		if nested, ok := fields[key].(map[string]any); ok {
			macroFields = mergeIndex(indexKeys(nested), fields)
			break
		}
	}
	d.Macros = parseMacros(macroFields)
	d.Portion = parsePortion(lookup(fields, portionKeys))
	d.searchText = buildSearchText(d)
	return d
}

// NormalizeDishes 批次正規化，沒有名稱的項目會被略過
func NormalizeDishes(raws []map[string]any) []Dish {
	dishes := make([]Dish, 0, len(raws))
	for _, raw := range raws {
		d := NormalizeDish(raw)
		if d.Name == "" {
			continue
		}
		dishes = append(dishes, d)
	}
	return dishes
}

// normalizeKey 小寫並移除所有非字母數字，"Protein_g" 與 "proteinG" 視為相同
func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(k) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// indexKeys 建立正規化鍵 → 值的索引；鍵衝突時取原始鍵字典序最小者，結果與 map 迭代順序無關
func indexKeys(raw map[string]any) map[string]any {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(raw))
	for _, k := range keys {
		nk := normalizeKey(k)
		if _, exists := out[nk]; !exists {
			out[nk] = raw[k]
		}
	}
	return out
}

// mergeIndex primary 優先，缺的鍵從 fallback 補
func mergeIndex(primary, fallback map[string]any) map[string]any {
	out := make(map[string]any, len(primary)+len(fallback))
	for k, v := range fallback {
		out[k] = v
	}
	for k, v := range primary {
		out[k] = v
	}
	return out
}

func lookup(fields map[string]any, aliases []string) any {
	for _, a := range aliases {
		if v, ok := fields[a]; ok && v != nil {
			return v
		}
	}
	return nil
}

// parseNumber 接受數字、json.Number 與帶單位/貨幣符號的字串（"$12.50"、"25 g"）
func parseNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
		m := numberPattern.FindString(s)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		return f, err == nil
	case bool:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}

func parseIngredients(v any) []string {
	var items []string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		items = strings.FieldsFunc(val, func(r rune) bool { return r == ',' || r == ';' || r == '\n' })
	default:
		list, err := cast.ToStringSliceE(val)
		if err != nil {
			return nil
		}
		items = list
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseMacros 至少要有兩項巨量營養素且熱量大於零才採用，否則交給關鍵字估算
func parseMacros(fields map[string]any) *Macros {
	var m Macros
	present := 0
	if v, ok := parseNumber(lookup(fields, proteinKeys)); ok && v >= 0 {
		m.Protein = v
		present++
	}
	if v, ok := parseNumber(lookup(fields, carbKeys)); ok && v >= 0 {
		m.Carbs = v
		present++
	}
	if v, ok := parseNumber(lookup(fields, fatKeys)); ok && v >= 0 {
		m.Fat = v
		present++
	}
	if present < 2 || macroEnergy(m) <= 0 {
		return nil
	}
	return &m
}

func macroEnergy(m Macros) float64 {
	return m.Protein*4 + m.Carbs*4 + m.Fat*9
}

func parsePortion(v any) Portion {
	if grams, ok := v.(float64); ok {
		return portionFromGrams(grams)
	}
	if n, ok := v.(json.Number); ok {
		if grams, err := n.Float64(); err == nil {
			return portionFromGrams(grams)
		}
	}

	s := strings.ToLower(strings.TrimSpace(cast.ToString(v)))
	switch s {
	case "":
		return ""
	case "s", "small", "mini", "half", "light", "petite":
		return PortionSmall
	case "m", "medium", "regular", "standard", "normal":
		return PortionMedium
	case "l", "large", "big", "full", "family", "xl", "jumbo", "hearty":
		return PortionLarge
	}
	if grams, ok := parseNumber(s); ok {
		return portionFromGrams(grams)
	}
	return ""
}

func portionFromGrams(grams float64) Portion {
	switch {
	case grams <= 0:
		return ""
	case grams < 250:
		return PortionSmall
	case grams > 450:
		return PortionLarge
	default:
		return PortionMedium
	}
}
