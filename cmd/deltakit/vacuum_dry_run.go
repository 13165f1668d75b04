package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var vacuumDryRunCmd = &cobra.Command{
	Use:   "vacuum-dry-run <uri>",
	Short: "List tombstoned files eligible for physical deletion",
	Args:  cobra.ExactArgs(1),
	RunE:  runVacuumDryRun,
}

func init() {
	vacuumDryRunCmd.Flags().Int64("version", 0, "Table version to audit (default latest)")
	vacuumDryRunCmd.Flags().Duration("retention", 168*time.Hour, "Minimum tombstone age before a file is eligible for deletion")
}

func runVacuumDryRun(cmd *cobra.Command, args []string) error {
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
	retention, _ := cmd.Flags().GetDuration("retention")

	tombstones, err := table.Tombstones(ctx, target)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-retention).UnixMilli()
	var eligible []string
	for _, tomb := range tombstones {
		if tomb.DeletionTimestamp <= cutoff {
			eligible = append(eligible, tomb.Path)
		}
	}

	if wantJSON(cmd) {
		return printJSON(struct {
			Eligible []string `json:"eligible"`
		}{Eligible: eligible}, "")
	}
	for _, p := range eligible {
		fmt.Println(p)
	}
	return nil
}
