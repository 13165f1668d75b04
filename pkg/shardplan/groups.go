package shardplan

import (
	"sort"

	"github.com/deltakit/deltakit/pkg/types"
)

// group is one atomic co-location unit: every file in it lands on the same
// shard.
type group struct {
	Key           string
	StickyKey     string
	Files         []*types.Add
	TotalBytes    int64
	TotalRows     *int64
	PreferredSeen bool
	Preferred     int
}

// canonicalKey builds the canonical group key for a partition-value tuple,
// delegating to types.PartitionKey so group identity agrees with
// partition-health and the manifest command for every file, including one
// with a missing (null) partition value.
func canonicalKey(columns []string, values map[string]string) string {
	return types.PartitionKey(columns, values)
}

// formGroups partitions active files by their co-location tuple. If no
// co-location columns are given, every file is its own singleton group
// keyed by path. Groups are returned sorted by ascending canonical key,
// the same order used to break ties between equal-load groups.
func formGroups(files []*types.Add, coLocateBy, stickyBy []string) []*group {
	byKey := make(map[string]*group)
	var order []string

	for _, f := range files {
		key := canonicalKey(coLocateBy, f.PartitionValues)
		if len(coLocateBy) == 0 {
			key = "path=" + f.Path
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{Key: key, StickyKey: canonicalKey(stickyBy, f.PartitionValues)}
			byKey[key] = g
			order = append(order, key)
		}
		g.Files = append(g.Files, f)
	}

	sort.Strings(order)
	groups := make([]*group, len(order))
	for i, key := range order {
		groups[i] = byKey[key]
	}
	return groups
}
