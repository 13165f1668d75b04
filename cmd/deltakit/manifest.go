package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/deltalog"
	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest <uri>",
	Short: "Produce a query-engine file listing for a table version",
	Args:  cobra.ExactArgs(1),
	RunE:  runManifest,
}

func init() {
	manifestCmd.Flags().Int64("version", 0, "Table version to list (default latest)")
	manifestCmd.Flags().String("format", "filelist", "Listing format: trino|presto|hive|filelist")
}

func runManifest(cmd *cobra.Command, args []string) error {
	uri := args[0]
	ctx := cmd.Context()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "trino", "presto", "hive", "filelist":
	default:
		return deltaerr.Invalid("unknown --format value: " + format)
	}

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

	if format == "filelist" {
		for _, p := range snap.ActivePaths() {
			fmt.Println(joinURI(uri, p))
		}
		return nil
	}

	// trino, presto, and hive all consume the same per-partition symlink
	// manifest layout (one section per partition, full file URIs).
	columns := snap.PartitionColumns()
	byGroup := make(map[string][]string)
	for _, p := range snap.ActivePaths() {
		add := snap.Files[p]
		key := deltalog.PartitionGroupKey(columns, add.PartitionValues)
		byGroup[key] = append(byGroup[key], joinURI(uri, p))
	}
	keys := make([]string, 0, len(byGroup))
	for k := range byGroup {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, key := range keys {
		if i > 0 {
			fmt.Println()
		}
		if key == "" {
			fmt.Println("# (unpartitioned)")
		} else {
			fmt.Printf("# %s\n", key)
		}
		for _, u := range byGroup[key] {
			fmt.Println(u)
		}
	}
	return nil
}

func joinURI(base, rel string) string {
	return strings.TrimRight(base, "/") + "/" + rel
}
