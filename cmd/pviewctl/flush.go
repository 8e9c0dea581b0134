package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/pviewgroups/pkg/pview"
)

var flushSetID int

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Invalidate the cached groups and pages of an attribute set",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flushSetID <= 0 {
			return fmt.Errorf("--set must be a positive attribute set id")
		}
		ctx, cancel := handleSignals(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.flusher.FlushByAttributeSetID(ctx, flushSetID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "flushed %v\n", pview.CacheTagsForAttributeSet(flushSetID))
		return nil
	},
}

func init() {
	flushCmd.Flags().IntVar(&flushSetID, "set", 0, "attribute set id")
	_ = flushCmd.MarkFlagRequired("set")
}
