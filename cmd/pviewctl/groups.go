package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/pviewgroups/pkg/pview"
)

var (
	groupsSKU   string
	groupsStore int
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Print the attribute groups of a product as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := handleSignals(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		product, err := a.store.ProductBySKU(ctx, groupsSKU, groupsStore)
		if err != nil {
			return err
		}
		groups, err := a.view.Groups(pview.WithRequestScope(ctx), product)
		if err != nil {
			return fmt.Errorf("groups of %s: %w", groupsSKU, err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	},
}

func init() {
	groupsCmd.Flags().StringVar(&groupsSKU, "sku", "", "product sku")
	groupsCmd.Flags().IntVar(&groupsStore, "store", 1, "store id")
	_ = groupsCmd.MarkFlagRequired("sku")
}
