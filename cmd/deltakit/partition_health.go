package main

import (
	"github.com/spf13/cobra"
)

var partitionHealthCmd = &cobra.Command{
	Use:   "partition-health <uri>",
	Short: "Summarize per-partition file count and byte-size skew",
	Args:  cobra.ExactArgs(1),
	RunE:  runPartitionHealth,
}

func init() {
	partitionHealthCmd.Flags().Int64("version", 0, "Table version to audit (default latest)")
}

func runPartitionHealth(cmd *cobra.Command, args []string) error {
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
	health, err := table.PartitionHealth(ctx, target)
	if err != nil {
		return err
	}
	return printJSON(health, "")
}
