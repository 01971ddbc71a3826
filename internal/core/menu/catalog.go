package menu

import (
	_ "embed"
	"fmt"
	"sync"

	"menu-recommender/internal/core/recommend"
	"menu-recommender/internal/pkg/common"
)

//go:embed catalog.json
var catalogJSON []byte

var (
	catalogOnce sync.Once
	catalogRaw  []map[string]any
	catalogErr  error
)

// Catalog 內建的示範菜單，每次呼叫都回傳新的副本
func Catalog() ([]recommend.Dish, error) {
	catalogOnce.Do(func() {
		if err := common.ParseJSONBytes(catalogJSON, &catalogRaw); err != nil {
			catalogErr = fmt.Errorf("parse embedded catalog: %w", err)
		}
	})
	if catalogErr != nil {
		return nil, catalogErr
	}
	return recommend.NormalizeDishes(catalogRaw), nil
}
