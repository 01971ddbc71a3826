package recommend

import (
	"strings"
	"unicode"
)

// haystack 是菜色搜尋文字的兩種視圖：原始小寫字串（子字串比對）與以空白分隔的單字序列（整字比對）
type haystack struct {
	raw   string
	words string
}

func newHaystack(text string) haystack {
	lower := strings.ToLower(text)
	return haystack{raw: lower, words: " " + wordsOnly(lower) + " "}
}

// wordsOnly 將非字母數字的字元轉為空白並壓縮連續空白
func wordsOnly(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// has 整字比對，keyword 可以是多字詞組
func (h haystack) has(keyword string) bool {
	kw := wordsOnly(strings.ToLower(keyword))
	if kw == "" {
		return false
	}
	return strings.Contains(h.words, " "+kw+" ")
}

// hasAny 回傳第一個命中的關鍵字
func (h haystack) hasAny(keywords []string) (string, bool) {
	for _, kw := range keywords {
		if h.has(kw) {
			return kw, true
		}
	}
	return "", false
}

// contains 子字串比對（過敏原與黑名單使用，寧可誤殺）
func (h haystack) contains(substr string) bool {
	s := strings.ToLower(strings.TrimSpace(substr))
	return s != "" && strings.Contains(h.raw, s)
}

func (h haystack) containsAny(substrs []string) (string, bool) {
	for _, s := range substrs {
		if h.contains(s) {
			return s, true
		}
	}
	return "", false
}

// without 移除會造成誤判的複合詞（例如 peanut butter 不是乳製品）
func (h haystack) without(phrases []string) haystack {
	words := h.words
	for _, p := range phrases {
		words = strings.ReplaceAll(words, " "+wordsOnly(p)+" ", " ")
	}
	raw := h.raw
	for _, p := range phrases {
		raw = strings.ReplaceAll(raw, strings.ToLower(p), " ")
	}
	return haystack{raw: raw, words: words}
}

// allergenSynonyms 過敏原 → 同義詞（含常見外語與衍生食材）
// 以子字串比對：nuts 的 "nut" 也會擋下 coconut、nutmeg、donut，這是刻意的寧可誤殺
var allergenSynonyms = map[string][]string{
	"nuts":      {"nut", "almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut", "macadamia", "praline", "pesto", "marzipan"},
	"peanuts":   {"peanut", "groundnut", "satay"},
	"dairy":     {"milk", "cheese", "butter", "cream", "yogurt", "yoghurt", "paneer", "ghee", "whey", "casein", "mozzarella", "parmesan", "feta", "ricotta"},
	"egg":       {"egg", "oeuf", "huevo", "mayonnaise", "mayo", "aioli", "meringue", "omelet", "omelette", "frittata"},
	"gluten":    {"wheat", "bread", "pasta", "flour", "noodle", "barley", "rye", "couscous", "seitan", "bun", "crouton", "tortilla", "pita", "naan"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster", "scallop", "clam", "mussel", "oyster", "crayfish", "langoustine"},
	"fish":      {"fish", "salmon", "tuna", "cod", "anchovy", "anchovies", "sardine", "tilapia", "halibut", "mackerel", "trout", "bonito"},
	"soy":       {"soy", "soya", "tofu", "edamame", "tempeh", "miso", "shoyu"},
	"sesame":    {"sesame", "tahini", "hummus"},
}

// allergenAliases 使用者常見寫法 → allergenSynonyms 的鍵
var allergenAliases = map[string]string{
	"nut":        "nuts",
	"tree nut":   "nuts",
	"tree nuts":  "nuts",
	"peanut":     "peanuts",
	"milk":       "dairy",
	"lactose":    "dairy",
	"eggs":       "egg",
	"wheat":      "gluten",
	"seafood":    "shellfish",
	"crustacean": "shellfish",
	"soya":       "soy",
}

// allergenKeywords 回傳某個過敏原需要比對的所有字串；未知的過敏原以其本身比對
func allergenKeywords(allergy string) []string {
	key := strings.ToLower(strings.TrimSpace(allergy))
	if key == "" {
		return nil
	}
	if canonical, ok := allergenAliases[key]; ok {
		key = canonical
	}
	syn, ok := allergenSynonyms[key]
	if !ok {
		return []string{key}
	}
	return append([]string{key}, syn...)
}

// porkRoots 以子字串比對，porkchop、baconator、hamhock 這類連寫也會命中
var porkRoots = []string{
	"pork", "bacon", "lard", "pancetta", "prosciutto", "chorizo", "salami", "pepperoni", "guanciale",
	"hamhock", "ham hock",
}

// porkWords 太短或太常見，只做整字比對
var porkWords = []string{"ham", "carnitas", "char siu", "lechon", "spare ribs"}

// porkLookalikes 含有豬肉字根但不是豬肉，比對前先移除
var porkLookalikes = []string{
	"hamburger", "collard", "turkey bacon", "beef bacon", "vegan bacon", "veggie bacon", "coconut bacon",
}

var seafoodKeywords = []string{
	"fish", "salmon", "tuna", "cod", "anchovy", "anchovies", "sardine", "tilapia", "halibut", "mackerel", "trout",
	"shrimp", "prawn", "prawns", "shrimps", "crab", "lobster", "scallop", "scallops", "clam", "clams", "mussel", "mussels",
	"oyster", "oysters", "calamari", "squid", "octopus", "seafood", "sushi", "sashimi",
}

var landMeatKeywords = []string{
	"meat", "chicken", "beef", "pork", "lamb", "mutton", "goat", "veal", "turkey", "duck", "venison", "bison",
	"bacon", "ham", "sausage", "sausages", "steak", "brisket", "meatball", "meatballs", "pepperoni", "salami",
	"chorizo", "prosciutto", "pancetta", "ribs", "wings", "burger patty", "gelatin", "lard", "foie gras",
	"carnitas", "kebab", "gyro", "pastrami", "jerky",
	"hamburger", "cheeseburger", "beefburger", "chickenburger", "baconburger", "porkchop", "hamhock",
}

var animalProductKeywords = []string{
	"milk", "cheese", "butter", "cream", "yogurt", "yoghurt", "paneer", "ghee", "whey", "mozzarella", "parmesan",
	"feta", "ricotta", "egg", "eggs", "mayo", "mayonnaise", "aioli", "honey", "custard", "omelet", "omelette",
	"buttermilk", "cheesecake", "eggnog",
}

// plantCompounds 這些詞組含有乳製品字眼但本身是植物性，比對乳蛋前先移除
var plantCompounds = []string{
	"peanut butter", "almond butter", "cashew butter", "cocoa butter", "apple butter",
	"almond milk", "oat milk", "soy milk", "coconut milk", "rice milk", "coconut cream", "cream of tartar",
	"egg free", "eggless", "dairy free", "vegan cheese", "vegan mayo", "plant based milk",
}

// proteinSourceSynonyms 偏好蛋白質來源 → 關鍵字
var proteinSourceSynonyms = map[string][]string{
	"chicken": {"chicken", "poultry"},
	"beef":    {"beef", "steak", "brisket", "sirloin", "ribeye"},
	"pork":    {"pork", "bacon", "ham"},
	"lamb":    {"lamb", "mutton"},
	"turkey":  {"turkey"},
	"fish":    {"fish", "salmon", "tuna", "cod", "tilapia", "halibut", "trout", "mackerel"},
	"seafood": {"seafood", "shrimp", "prawn", "prawns", "crab", "lobster", "scallops", "mussels", "calamari"},
	"eggs":    {"egg", "eggs", "omelette", "omelet", "frittata"},
	"tofu":    {"tofu", "tempeh", "seitan"},
	"plant":   {"tofu", "tempeh", "lentil", "lentils", "chickpea", "chickpeas", "beans", "edamame", "quinoa"},
	"legumes": {"lentil", "lentils", "chickpea", "chickpeas", "beans", "dal", "falafel"},
	"dairy":   {"paneer", "cheese", "yogurt", "cottage cheese"},
}

func proteinSourceKeywords(source string) []string {
	key := strings.ToLower(strings.TrimSpace(source))
	if syn, ok := proteinSourceSynonyms[key]; ok {
		return syn
	}
	if key == "" {
		return nil
	}
	return []string{key}
}

// 估算巨量營養素用的提示字
var (
	proteinCueKeywords = []string{"chicken", "fish", "tofu", "egg", "eggs", "beef", "salmon", "tuna", "turkey", "steak", "shrimp", "lentils", "tempeh", "pork", "lamb", "protein"}
	carbCueKeywords    = []string{"pasta", "rice", "bread", "noodle", "noodles", "potato", "potatoes", "fries", "bun", "tortilla", "pizza", "risotto", "quinoa", "naan", "couscous"}
	fatCueKeywords     = []string{"fried", "cream", "creamy", "butter", "cheese", "bacon", "avocado", "oil", "mayo", "aioli", "carbonara", "alfredo"}
)

// 份量提示字
var (
	largePortionKeywords = []string{"large", "big", "hearty", "platter", "family", "double", "jumbo", "feast"}
	smallPortionKeywords = []string{"small", "light", "appetizer", "starter", "side", "snack", "bite", "bites", "mini"}
)

// 目標（減重/增重）提示字
var (
	loseRewardKeywords  = []string{"salad", "grilled", "steamed"}
	losePenaltyKeywords = []string{"fried", "cream", "creamy", "cheese"}
	gainRewardKeywords  = []string{"beef", "chicken", "pasta"}
	gainPenaltyKeywords = []string{"salad", "light"}
)

// 口味偏好對應的關鍵字
var tastePreferenceKeywords = map[string][]string{
	"grilled": {"grilled", "chargrilled", "bbq", "barbecue"},
	"fried":   {"fried", "deep fried", "crispy", "tempura", "battered"},
	"pasta":   {"pasta", "spaghetti", "penne", "linguine", "fettuccine", "rigatoni", "lasagna", "lasagne", "ravioli", "gnocchi", "macaroni"},
	"spicy":   {"spicy", "chili", "chilli", "jalapeno", "sriracha", "vindaloo", "szechuan", "sichuan", "harissa", "buffalo"},
	"steamed": {"steamed"},
	"baked":   {"baked", "roasted", "oven"},
	"raw":     {"raw", "tartare", "ceviche", "sashimi", "poke"},
	"sweet":   {"sweet", "honey", "caramel", "glazed"},
}

func tasteKeywords(subject string) []string {
	if kws, ok := tastePreferenceKeywords[subject]; ok {
		return kws
	}
	return []string{subject}
}

// healthRule 健康旗標：命中觸發字時將護欄分數乘上 factor
type healthRule struct {
	triggers []string
	factor   float64
}

var healthRules = map[string]healthRule{
	"diabetes":         {triggers: []string{"sugar", "sweet", "dessert", "syrup", "caramel", "candied", "glazed"}, factor: 0.7},
	"hypertension":     {triggers: []string{"salt", "salty", "sodium", "cured", "pickled", "soy sauce"}, factor: 0.7},
	"high_cholesterol": {triggers: []string{"fried", "cream", "creamy", "butter"}, factor: 0.6},
	"ibs_sensitive":    {triggers: []string{"spicy", "onion", "onions", "garlic", "chili"}, factor: 0.8},
}
