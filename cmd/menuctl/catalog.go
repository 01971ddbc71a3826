package main

import (
	"menu-recommender/internal/core/menu"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the built-in dish catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dishes, err := menu.Catalog()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dishes)
		},
	}
}
