package shardplan

import (
	"sort"

	"github.com/deltakit/deltakit/pkg/types"
)

// CompactPlan groups small active files within each partition group into
// merge batches no larger than maxFileBytes, skipping files already at or
// above minFileBytes. Batches are
// built greedily in ascending file-size order within a group, so each
// batch packs as many small files as the cap allows. An unpartitioned
// table is treated as a single group.
func CompactPlan(snap *types.Snapshot, maxFileBytes, minFileBytes int64) *types.CompactionPlan {
	files := make([]*types.Add, 0, len(snap.Files))
	for _, f := range snap.Files {
		files = append(files, f)
	}

	byKey := groupByPartition(files, snap.PartitionColumns())
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	plan := &types.CompactionPlan{Version: snap.Version}
	for _, key := range keys {
		plan.Batches = append(plan.Batches, compactGroup(key, byKey[key], maxFileBytes, minFileBytes)...)
	}
	return plan
}

// groupByPartition groups files strictly by their partition-column tuple;
// unlike formGroups, an empty columns list groups every file together
// rather than treating each as its own singleton.
func groupByPartition(files []*types.Add, columns []string) map[string][]*types.Add {
	byKey := make(map[string][]*types.Add)
	for _, f := range files {
		key := canonicalKey(columns, f.PartitionValues)
		byKey[key] = append(byKey[key], f)
	}
	return byKey
}

func compactGroup(key string, files []*types.Add, maxFileBytes, minFileBytes int64) []types.CompactionBatch {
	candidates := make([]*types.Add, 0, len(files))
	for _, f := range files {
		if f.Size < minFileBytes {
			candidates = append(candidates, f)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Size != candidates[j].Size {
			return candidates[i].Size < candidates[j].Size
		}
		return candidates[i].Path < candidates[j].Path
	})

	var batches []types.CompactionBatch
	var batch []string
	var batchBytes int64
	flush := func() {
		if len(batch) < 2 {
			return
		}
		batches = append(batches, types.CompactionBatch{
			GroupKey:   key,
			Paths:      append([]string(nil), batch...),
			TotalBytes: batchBytes,
		})
	}
	for _, f := range candidates {
		if batchBytes+f.Size > maxFileBytes && len(batch) > 0 {
			flush()
			batch, batchBytes = nil, 0
		}
		batch = append(batch, f.Path)
		batchBytes += f.Size
	}
	flush()
	return batches
}
