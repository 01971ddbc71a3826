package main

import (
	"menu-recommender/internal/core/recommend"

	"github.com/spf13/cobra"
)

func newPreFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefilter",
		Short: "Split dishes into safe and rejected sets for a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			dishes, err := loadDishes(cmd)
			if err != nil {
				return err
			}
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), recommend.PreFilter(dishes, profile))
		},
	}
	addInputFlags(cmd)
	return cmd
}
