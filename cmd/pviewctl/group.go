package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	groupID   int
	groupName string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Change attribute groups, invalidating cached groups when needed",
}

var groupRenameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Rename an attribute group",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := handleSignals(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		group, err := a.store.GroupByID(ctx, groupID)
		if err != nil {
			return err
		}
		group.Name = groupName
		group.Code = ""
		if err := a.writer.SaveGroup(ctx, &group); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "group %d renamed from %q to %q\n", group.ID, group.OrigName, group.Name)
		return nil
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an attribute group",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := handleSignals(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		group, err := a.store.GroupByID(ctx, groupID)
		if err != nil {
			return err
		}
		if err := a.writer.DeleteGroup(ctx, group); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "group %d %q deleted\n", group.ID, group.Name)
		return nil
	},
}

func init() {
	groupRenameCmd.Flags().IntVar(&groupID, "id", 0, "attribute group id")
	groupRenameCmd.Flags().StringVar(&groupName, "name", "", "new group name")
	_ = groupRenameCmd.MarkFlagRequired("id")
	_ = groupRenameCmd.MarkFlagRequired("name")

	groupDeleteCmd.Flags().IntVar(&groupID, "id", 0, "attribute group id")
	_ = groupDeleteCmd.MarkFlagRequired("id")

	groupCmd.AddCommand(groupRenameCmd)
	groupCmd.AddCommand(groupDeleteCmd)
}
