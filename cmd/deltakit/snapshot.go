package main

import (
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <uri>",
	Short: "List the active file paths of a table at a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().Int64("version", 0, "Table version to snapshot (default latest)")
	snapshotCmd.Flags().String("out", "", "Write output to this path instead of stdout")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
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

	out, _ := cmd.Flags().GetString("out")
	return writeLines(snap.ActivePaths(), out)
}
