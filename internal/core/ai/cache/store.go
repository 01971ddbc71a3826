package cache

import (
	"context"
	"fmt"

	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"
)

// Store LLM 回應快取；Get 未命中時回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Stats() map[string]interface{}
	Close() error
}

// Key 由種類與正規化後的 prompt 產生快取鍵
func Key(kind, prompt string) string {
	return fmt.Sprintf("%s:%s", kind, common.HashString(prompt))
}

// NewStore 依設定建立快取；停用時回傳 nil
func NewStore(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		svc, err := NewService(&cfg.Cache)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case config.CacheBackendMemory, "":
		return NewManager(&cfg.Cache), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}
