package shardplan

import (
	"context"
	"sort"
	"strings"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/types"
)

// shardState tracks a shard's running totals during balancing. Bytes is
// tracked independently of Load (which follows the chosen objective) so
// max_bytes_per_shard is always enforced against true byte totals even
// when balancing by rows.
type shardState struct {
	Load      int64
	Bytes     int64
	FileCount int
}

// balance runs the sequential constrained-greedy placement pass: groups
// are ordered by descending load, ties by ascending
// canonical key, and each is placed on the lowest-load feasible shard,
// preferring its preferred shard on ties. It is the one stage that must
// not run concurrently: shard load state is read and mutated by every
// placement decision in sequence.
func balance(ctx context.Context, groups []*group, cfg types.PlannerConfig) ([]int, error) {
	ordered := make([]*group, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, lj := ordered[i].load(cfg.Balance), ordered[j].load(cfg.Balance)
		if li != lj {
			return li > lj
		}
		return ordered[i].Key < ordered[j].Key
	})

	shards := make([]shardState, cfg.Shards)
	assignment := make(map[*group]int, len(groups))

	for _, g := range ordered {
		if ctx.Err() != nil {
			return nil, deltaerr.Cancel()
		}

		best := selectShard(shards, g, cfg)
		if best == -1 {
			return nil, infeasibleErr(shards, g, cfg)
		}

		shards[best].Load += g.load(cfg.Balance)
		shards[best].Bytes += g.TotalBytes
		shards[best].FileCount += len(g.Files)
		assignment[g] = best
	}

	result := make([]int, len(groups))
	for i, g := range groups {
		result[i] = assignment[g]
	}
	return result, nil
}

// selectShard picks the lowest-load feasible candidate for g. Candidates
// are visited with the preferred shard first, then every shard ascending,
// and only a strictly lower load ever replaces the current best, so a tie
// leaves the earlier (preferred, or else lowest-index) candidate in place.
func selectShard(shards []shardState, g *group, cfg types.PlannerConfig) int {
	best := -1
	var bestLoad int64
	for _, s := range candidateShards(g, len(shards)) {
		if !feasible(shards[s], g, cfg) {
			continue
		}
		load := shards[s].Load
		if best == -1 || load < bestLoad {
			best, bestLoad = s, load
		}
	}
	return best
}

// candidateShards returns the group's preferred shard first (if any),
// followed by every shard index, with duplicates removed.
func candidateShards(g *group, shards int) []int {
	candidates := make([]int, 0, shards)
	seen := make(map[int]bool)
	if g.PreferredSeen {
		candidates = append(candidates, g.Preferred)
		seen[g.Preferred] = true
	}
	for s := 0; s < shards; s++ {
		if !seen[s] {
			candidates = append(candidates, s)
			seen[s] = true
		}
	}
	return candidates
}

func feasible(s shardState, g *group, cfg types.PlannerConfig) bool {
	if cfg.MaxFilesPerShard != nil && s.FileCount+len(g.Files) > *cfg.MaxFilesPerShard {
		return false
	}
	if cfg.MaxBytesPerShard != nil && s.Bytes+g.TotalBytes > *cfg.MaxBytesPerShard {
		return false
	}
	return true
}

// infeasibleErr reports which configured cap(s) actually blocked every
// shard for g, rather than assuming a fixed precedence between caps: with
// both MaxFilesPerShard and MaxBytesPerShard set, either one (or both) may
// be the reason no shard had room.
func infeasibleErr(shards []shardState, g *group, cfg types.PlannerConfig) error {
	filesBlocked := cfg.MaxFilesPerShard != nil
	bytesBlocked := cfg.MaxBytesPerShard != nil
	for _, s := range shards {
		if cfg.MaxFilesPerShard != nil && s.FileCount+len(g.Files) <= *cfg.MaxFilesPerShard {
			filesBlocked = false
		}
		if cfg.MaxBytesPerShard != nil && s.Bytes+g.TotalBytes <= *cfg.MaxBytesPerShard {
			bytesBlocked = false
		}
	}

	var caps []string
	if filesBlocked {
		caps = append(caps, "max-files-per-shard")
	}
	if bytesBlocked {
		caps = append(caps, "max-bytes-per-shard")
	}
	if len(caps) == 0 {
		// Neither cap is violated on every shard individually, but no
		// single shard satisfies both at once.
		caps = []string{"max-files-per-shard", "max-bytes-per-shard"}
	}
	return deltaerr.InfeasibleCap(strings.Join(caps, ","), -1, "no shard can accommodate group "+g.Key)
}
