package deltalog

import (
	"context"
	"math"
	"sort"

	"github.com/deltakit/deltakit/pkg/types"
)

// Tombstones returns the Remove actions retained in the snapshot at
// target, for vacuum-dry-run auditing of files no longer active but not
// yet physically deletable by readers still holding an older version.
func (t *Table) Tombstones(ctx context.Context, target *int64) ([]types.Remove, error) {
	snap, err := t.SnapshotAt(ctx, target)
	if err != nil {
		return nil, err
	}
	return snap.Tombstones, nil
}

// Diff compares two snapshots of the same table and reports the active
// paths added, removed, and held in common between them.
func (t *Table) Diff(ctx context.Context, from, to int64) (*types.Diff, error) {
	fromSnap, err := t.SnapshotAt(ctx, &from)
	if err != nil {
		return nil, err
	}
	toSnap, err := t.SnapshotAt(ctx, &to)
	if err != nil {
		return nil, err
	}

	diff := &types.Diff{
		From:      fromSnap.Version,
		To:        toSnap.Version,
		Added:     []string{},
		Removed:   []string{},
		Unchanged: []string{},
	}
	for path := range toSnap.Files {
		if _, ok := fromSnap.Files[path]; ok {
			diff.Unchanged = append(diff.Unchanged, path)
		} else {
			diff.Added = append(diff.Added, path)
		}
	}
	for path := range fromSnap.Files {
		if _, ok := toSnap.Files[path]; !ok {
			diff.Removed = append(diff.Removed, path)
		}
	}
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Unchanged)
	return diff, nil
}

// PartitionGroupKey canonicalizes a file's partition values into the same
// key types.PartitionKey produces for the Shard Planner's co-location
// grouping, so partition-health and shard-manifest always agree on group
// identity.
func PartitionGroupKey(columns []string, values map[string]string) string {
	return types.PartitionKey(columns, values)
}

// PartitionHealth computes per-partition-group file count and byte-size
// statistics for the snapshot at target, surfacing skew that a compaction
// or re-plan should address.
func (t *Table) PartitionHealth(ctx context.Context, target *int64) (*types.PartitionHealth, error) {
	snap, err := t.SnapshotAt(ctx, target)
	if err != nil {
		return nil, err
	}
	columns := snap.PartitionColumns()

	sizesByGroup := make(map[string][]int64)
	for _, add := range snap.Files {
		key := PartitionGroupKey(columns, add.PartitionValues)
		sizesByGroup[key] = append(sizesByGroup[key], add.Size)
	}

	keys := make([]string, 0, len(sizesByGroup))
	for k := range sizesByGroup {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	health := &types.PartitionHealth{Version: snap.Version}
	for _, key := range keys {
		sizes := sizesByGroup[key]
		health.Groups = append(health.Groups, summarizeGroup(key, sizes))
	}
	return health, nil
}

func summarizeGroup(key string, sizes []int64) types.PartitionGroupStats {
	stats := types.PartitionGroupStats{Key: key, FileCount: len(sizes)}
	if len(sizes) == 0 {
		return stats
	}
	stats.MinBytes = sizes[0]
	stats.MaxBytes = sizes[0]
	var total int64
	for _, s := range sizes {
		total += s
		if s < stats.MinBytes {
			stats.MinBytes = s
		}
		if s > stats.MaxBytes {
			stats.MaxBytes = s
		}
	}
	stats.TotalBytes = total
	stats.MeanBytes = float64(total) / float64(len(sizes))

	var variance float64
	for _, s := range sizes {
		d := float64(s) - stats.MeanBytes
		variance += d * d
	}
	variance /= float64(len(sizes))
	stats.StdDevBytes = math.Sqrt(variance)
	return stats
}
