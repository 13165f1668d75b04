package main

import (
	"github.com/deltakit/deltakit/pkg/shardplan"
	"github.com/spf13/cobra"
)

var compactPlanCmd = &cobra.Command{
	Use:   "compact-plan <uri>",
	Short: "Propose merge batches for small active files within each partition",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompactPlan,
}

func init() {
	compactPlanCmd.Flags().Int64("version", 0, "Table version to plan against (default latest)")
	compactPlanCmd.Flags().Int64("max-file-bytes", 128*1024*1024, "Maximum size of a merged batch")
	compactPlanCmd.Flags().Int64("min-file-bytes", 16*1024*1024, "Files at or above this size are left alone")
}

func runCompactPlan(cmd *cobra.Command, args []string) error {
	uri := args[0]
	ctx := cmd.Context()

	table, reader, err := openTable(ctx, cmd, uri)
	if err != nil {
		return err
	}
	defer reader.Close()

	target, err := versionFlag(cmd)
	if err != nil {
		return err
	}
	snap, err := table.SnapshotAt(ctx, target)
	if err != nil {
		return err
	}

	maxFileBytes, _ := cmd.Flags().GetInt64("max-file-bytes")
	minFileBytes, _ := cmd.Flags().GetInt64("min-file-bytes")

	plan := shardplan.CompactPlan(snap, maxFileBytes, minFileBytes)
	return printJSON(plan, "")
}
