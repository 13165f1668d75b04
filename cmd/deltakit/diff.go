package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <uri>",
	Short: "Compare a table's active files between two versions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().Int64("from", 0, "Starting version (required)")
	diffCmd.Flags().Int64("to", 0, "Ending version (required)")
	_ = diffCmd.MarkFlagRequired("from")
	_ = diffCmd.MarkFlagRequired("to")
}

func runDiff(cmd *cobra.Command, args []string) error {
	uri := args[0]
	ctx := cmd.Context()

	table, reader, err := openTable(ctx, cmd, uri)
	if err != nil {
		return err
	}
	defer reader.Close()

	from, _ := cmd.Flags().GetInt64("from")
	to, _ := cmd.Flags().GetInt64("to")

	diff, err := table.Diff(ctx, from, to)
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return printJSON(diff, "")
	}
	fmt.Printf("added: %d, removed: %d, unchanged: %d\n", len(diff.Added), len(diff.Removed), len(diff.Unchanged))
	for _, p := range diff.Added {
		fmt.Printf("+ %s\n", p)
	}
	for _, p := range diff.Removed {
		fmt.Printf("- %s\n", p)
	}
	return nil
}
