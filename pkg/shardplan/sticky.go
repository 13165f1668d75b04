package shardplan

import "github.com/deltakit/deltakit/pkg/types"

// preassign computes each group's preferred shard from prev: the mode of
// prior shard index among the group's files that appear in prev with an
// index < shards, ties broken by lowest shard index. A group with no
// member in prev has no preferred shard.
func preassign(groups []*group, prev types.ShardAssignment, shards int) {
	if len(prev) == 0 {
		return
	}
	for _, g := range groups {
		counts := make(map[int]int)
		for _, f := range g.Files {
			shard, ok := prev[f.Path]
			if !ok || shard < 0 || shard >= shards {
				continue
			}
			counts[shard]++
		}
		if len(counts) == 0 {
			continue
		}
		best, bestCount := -1, -1
		for shard := 0; shard < shards; shard++ {
			c, ok := counts[shard]
			if !ok {
				continue
			}
			if c > bestCount {
				best, bestCount = shard, c
			}
		}
		if best >= 0 {
			g.PreferredSeen = true
			g.Preferred = best
		}
	}
}
