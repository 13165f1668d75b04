package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/shardplan"
	"github.com/deltakit/deltakit/pkg/types"
	"github.com/spf13/cobra"
)

var shardManifestCmd = &cobra.Command{
	Use:   "shard-manifest <uri>",
	Short: "Plan a deterministic file-to-shard assignment",
	Args:  cobra.ExactArgs(1),
	RunE:  runShardManifest,
}

func init() {
	shardManifestCmd.Flags().Int64("version", 0, "Table version to plan against (default latest)")
	shardManifestCmd.Flags().Int("shards", 0, "Number of shards to produce (required)")
	shardManifestCmd.Flags().String("by", "", "Comma-separated partition columns to co-locate by")
	shardManifestCmd.Flags().String("sticky-by", "", "Comma-separated partition columns for sticky re-planning")
	shardManifestCmd.Flags().String("balance", "bytes", "Balance objective: bytes|rows")
	shardManifestCmd.Flags().Int("max-files-per-shard", 0, "Feasibility cap on files per shard")
	shardManifestCmd.Flags().Int64("max-bytes-per-shard", 0, "Feasibility cap on bytes per shard")
	shardManifestCmd.Flags().String("prev", "", "Path to a previous ShardManifest JSON, seeds sticky placement")
	shardManifestCmd.Flags().Int64("seed", 0, "Opaque seed recorded in the manifest")
	_ = shardManifestCmd.MarkFlagRequired("shards")
}

func runShardManifest(cmd *cobra.Command, args []string) error {
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

	cfg, err := plannerConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	manifest, err := shardplan.Plan(ctx, snap, cfg)
	if err != nil {
		return err
	}
	return printJSON(manifest, "")
}

func plannerConfigFromFlags(cmd *cobra.Command) (types.PlannerConfig, error) {
	shards, _ := cmd.Flags().GetInt("shards")
	balanceStr, _ := cmd.Flags().GetString("balance")
	by, _ := cmd.Flags().GetString("by")
	stickyBy, _ := cmd.Flags().GetString("sticky-by")
	seed, _ := cmd.Flags().GetInt64("seed")
	prevPath, _ := cmd.Flags().GetString("prev")

	balance := types.BalanceBytes
	switch balanceStr {
	case "bytes", "":
		balance = types.BalanceBytes
	case "rows":
		balance = types.BalanceRows
	default:
		return types.PlannerConfig{}, deltaerr.Invalid("unknown --balance value: " + balanceStr)
	}

	cfg := types.PlannerConfig{
		Shards:     shards,
		Balance:    balance,
		CoLocateBy: splitCSV(by),
		StickyBy:   splitCSV(stickyBy),
		Seed:       seed,
	}

	if cmd.Flags().Changed("max-files-per-shard") {
		v, _ := cmd.Flags().GetInt("max-files-per-shard")
		cfg.MaxFilesPerShard = &v
	}
	if cmd.Flags().Changed("max-bytes-per-shard") {
		v, _ := cmd.Flags().GetInt64("max-bytes-per-shard")
		cfg.MaxBytesPerShard = &v
	}
	if prevPath != "" {
		prev, err := loadPreviousAssignment(prevPath)
		if err != nil {
			return types.PlannerConfig{}, err
		}
		cfg.PreviousAssignment = prev
	}
	return cfg, nil
}

func loadPreviousAssignment(path string) (types.ShardAssignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, deltaerr.IO(deltaerr.NotFound, "failed to read --prev manifest", err)
	}
	var manifest types.ShardManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, deltaerr.Config("failed to parse --prev manifest JSON", err)
	}
	return manifest.ToAssignment(), nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
