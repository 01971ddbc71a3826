package menu

import (
	"context"
	"fmt"
	"strings"

	"menu-recommender/internal/core/ai/service"
	"menu-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// completer AI 服務的最小介面
type completer interface {
	Complete(ctx context.Context, kind, system, prompt string) (*service.Response, error)
}

// Extractor 透過 LLM 將菜單文字轉為原始菜色清單
type Extractor struct {
	ai completer
}

// NewExtractor 創建菜色擷取器
func NewExtractor(ai completer) *Extractor {
	return &Extractor{ai: ai}
}

const dishSystemPrompt = `You convert restaurant menu text into structured data.
Return JSON only, with no commentary, in this shape:
{"dishes":[{"name":"","description":"","ingredients":[""],"price":null,"calories":null,"protein_g":null,"carbs_g":null,"fat_g":null,"portion":null}]}
Rules:
- Include every orderable dish that appears in the text and nothing that does not.
- Copy names as printed. Keep descriptions short.
- List ingredients that are printed or that are standard for the named dish.
- price is a number without currency symbols.
- Use null for nutrition or portion values you cannot infer. Portion is one of small, medium, large.
- Skip section headings, drinks lists, opening hours and addresses.`

const dishesKind = "dishes"

// listKeys 模型常把清單包在不同名稱的欄位下
var listKeys = []string{"dishes", "items", "menu", "menu_items", "menuItems", "results"}

// GenerateDishes 呼叫 LLM 並修補、解析其 JSON 輸出
func (e *Extractor) GenerateDishes(ctx context.Context, menuText string) ([]map[string]any, error) {
	menuText = strings.TrimSpace(menuText)
	if menuText == "" {
		return nil, common.ErrNoMenuText
	}

	resp, err := e.ai.Complete(ctx, dishesKind, dishSystemPrompt, "Menu text:\n"+menuText)
	if err != nil {
		return nil, fmt.Errorf("generate dishes: %w", err)
	}

	dishes, err := ParseDishes(resp.Content)
	if err != nil {
		common.LogWarn("AI 回應無法解析為菜色",
			zap.Error(err),
			zap.Int("content_length", len(resp.Content)),
			zap.Bool("cache_hit", resp.CacheHit),
		)
		return nil, err
	}
	return dishes, nil
}

// ParseDishes 接受 {"dishes":[...]}、{"items":[...]}、單一菜色物件或純陣列
func ParseDishes(content string) ([]map[string]any, error) {
	var v any
	if err := common.ParseJSON(common.RepairJSON(content), &v); err != nil {
		return nil, common.ErrLLMResponseInvalid.Wrap(err)
	}

	list, ok := dishList(v)
	if !ok {
		return nil, common.ErrLLMResponseInvalid.Wrap(fmt.Errorf("no dish list in response"))
	}

	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		switch it := item.(type) {
		case map[string]any:
			out = append(out, it)
		case string:
			if name := strings.TrimSpace(it); name != "" {
				out = append(out, map[string]any{"name": name})
			}
		}
	}
	if len(out) == 0 {
		return nil, common.ErrNoDishesFound
	}
	return out, nil
}

func dishList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case map[string]any:
		for _, k := range listKeys {
			if list, ok := val[k].([]any); ok {
				return list, true
			}
		}
		if _, ok := val["name"]; ok {
			return []any{val}, true
		}
	}
	return nil, false
}
