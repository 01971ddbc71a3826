// Package main 是 menuctl 的進入點：離線執行菜色過濾與推薦
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"menu-recommender/internal/core/menu"
	"menu-recommender/internal/core/recommend"
	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"

	"github.com/spf13/cobra"
)

// version 建置時以 ldflags 注入
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "menuctl",
		Short:        "Rank menu dishes against a dietary profile",
		Version:      version,
		SilenceUsage: true,
		Long: `menuctl runs the menu recommendation engine offline.

Dishes come from a JSON file (an array, or an object with a "dishes" key)
or from the built-in catalog. The profile is a JSON file with the same
fields the HTTP API accepts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				return nil
			}
			return common.InitLogger(level)
		},
	}
	root.PersistentFlags().String("log-level", "", "enable logging at this level (debug, info, warn, error)")

	root.AddCommand(newRankCmd(), newPreFilterCmd(), newCatalogCmd())
	return root
}

// addInputFlags 註冊 rank 與 prefilter 共用的輸入旗標
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("dishes", "", "path to a JSON dish file")
	cmd.Flags().Bool("catalog", false, "use the built-in catalog instead of --dishes")
	cmd.Flags().String("profile", "", "path to a JSON user profile")
}

// loadDishes 讀取 --dishes 或 --catalog
func loadDishes(cmd *cobra.Command) ([]recommend.Dish, error) {
	path, _ := cmd.Flags().GetString("dishes")
	useCatalog, _ := cmd.Flags().GetBool("catalog")

	switch {
	case useCatalog && path != "":
		return nil, fmt.Errorf("--dishes and --catalog are mutually exclusive")
	case useCatalog:
		return menu.Catalog()
	case path == "":
		return nil, fmt.Errorf("one of --dishes or --catalog is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dishes: %w", err)
	}
	raws, err := menu.ParseDishes(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse dishes %s: %w", path, err)
	}
	return recommend.NormalizeDishes(raws), nil
}

// loadProfile 讀取 --profile；未指定時回傳空白設定
func loadProfile(cmd *cobra.Command) (recommend.UserProfile, error) {
	var profile recommend.UserProfile
	path, _ := cmd.Flags().GetString("profile")
	if path == "" {
		return profile, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return profile, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	if err := common.DecodeJSON(f, &profile); err != nil {
		return profile, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// engineFromEnv 套用環境變數中的分數設定；讀不到設定時使用預設值
func engineFromEnv() *recommend.Engine {
	cfg, err := config.Load("")
	if err != nil {
		return recommend.NewEngine(recommend.DefaultOptions())
	}
	return recommend.NewEngine(menu.EngineOptions(cfg.Ranking))
}
