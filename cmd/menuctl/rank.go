package main

import (
	"menu-recommender/internal/core/menu"
	"menu-recommender/internal/core/recommend"

	"github.com/spf13/cobra"
)

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Filter and rank dishes, printing the recommendation as JSON",
		Long: `Rank applies the hard dietary filter and then scores the safe dishes.
The weighted mode returns the top three by normalized score; the category
mode labels dishes as Recovery, Healthy or Comforting and picks one of each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dishes, err := loadDishes(cmd)
			if err != nil {
				return err
			}
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}

			hunger, _ := cmd.Flags().GetString("hunger")
			timing, _ := cmd.Flags().GetString("timing")
			modeFlag, _ := cmd.Flags().GetString("mode")
			mode, err := recommend.ParseMode(modeFlag)
			if err != nil {
				return err
			}

			scans := menu.NewScanService(nil, nil, nil, engineFromEnv())
			rec, err := scans.Recommend(dishes, menu.Preferences{
				Profile: profile,
				Context: recommend.Context{Hunger: recommend.Hunger(hunger), Timing: recommend.Timing(timing)},
				Mode:    mode,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}

	addInputFlags(cmd)
	cmd.Flags().String("hunger", "", "light, moderate or hearty (default moderate)")
	cmd.Flags().String("timing", "", "pre_workout, post_workout or regular (default regular)")
	cmd.Flags().String("mode", string(recommend.ModeWeighted), "weighted or category")
	return cmd
}
