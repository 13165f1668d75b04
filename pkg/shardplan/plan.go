package shardplan

import (
	"context"
	"sort"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/log"
	"github.com/deltakit/deltakit/pkg/metrics"
	"github.com/deltakit/deltakit/pkg/types"
)

// Plan produces a deterministic ShardManifest assigning snap's active
// files to cfg.Shards shards. It never returns a partial manifest: any
// failure aborts before output is built.
func Plan(ctx context.Context, snap *types.Snapshot, cfg types.PlannerConfig) (*types.ShardManifest, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.PlanDuration)

	if err := validateConfig(snap, cfg); err != nil {
		return nil, err
	}
	if len(snap.Files) == 0 {
		return nil, deltaerr.Empty("table has no active files to plan")
	}

	files := make([]*types.Add, 0, len(snap.Files))
	for _, f := range snap.Files {
		files = append(files, f)
	}

	groups := formGroups(files, cfg.CoLocateBy, cfg.StickyBy)
	metrics.GroupsFormedTotal.Observe(float64(len(groups)))

	if err := computeLoads(ctx, groups, cfg.Balance, files); err != nil {
		return nil, err
	}

	preassign(groups, cfg.PreviousAssignment, cfg.Shards)
	trackRelocations(groups, cfg.PreviousAssignment)

	assignment, err := balance(ctx, groups, cfg)
	if err != nil {
		return nil, err
	}
	for i, g := range groups {
		if g.PreferredSeen && assignment[i] != g.Preferred {
			metrics.StickyRelocationsTotal.Inc()
		}
	}

	manifest := buildManifest(snap.Version, cfg, groups, assignment)
	observeImbalance(manifest)

	shardLogger := log.WithShard(cfg.Shards)
	shardLogger.Debug().Int("groups", len(groups)).Msg("shard plan complete")
	return manifest, nil
}

func validateConfig(snap *types.Snapshot, cfg types.PlannerConfig) error {
	if cfg.Shards < 1 {
		return deltaerr.Invalid("shards must be >= 1")
	}
	known := make(map[string]bool)
	for _, c := range snap.PartitionColumns() {
		known[c] = true
	}
	for _, c := range cfg.CoLocateBy {
		if !known[c] {
			return deltaerr.Invalid("unknown partition column in --by: " + c)
		}
	}
	for _, c := range cfg.StickyBy {
		if !known[c] {
			return deltaerr.Invalid("unknown partition column in --sticky-by: " + c)
		}
	}
	return nil
}

// trackRelocations counts groups that have a member in prev but no
// preferred shard at all (every prior shard index is out of range for the
// current shard count). Groups placed off their preferred shard by
// balancing are counted by Plan after balance returns, by comparing final
// placement; new groups relocate trivially and aren't counted as
// relocations.
func trackRelocations(groups []*group, prev types.ShardAssignment) {
	if len(prev) == 0 {
		return
	}
	for _, g := range groups {
		hasPriorMember := false
		for _, f := range g.Files {
			if _, ok := prev[f.Path]; ok {
				hasPriorMember = true
				break
			}
		}
		if hasPriorMember && !g.PreferredSeen {
			metrics.StickyRelocationsTotal.Inc()
		}
	}
}

func buildManifest(version types.Version, cfg types.PlannerConfig, groups []*group, assignment []int) *types.ShardManifest {
	shards := make([]types.ShardGroup, cfg.Shards)
	for i := range shards {
		shards[i] = types.ShardGroup{Shard: i, Files: []types.ManifestFile{}}
	}

	for i, g := range groups {
		shard := assignment[i]
		for _, f := range g.Files {
			shards[shard].Files = append(shards[shard].Files, types.ManifestFile{
				Path: f.Path,
				Size: f.Size,
				Rows: knownRows(f),
			})
		}
		shards[shard].TotalBytes += g.TotalBytes
		if g.TotalRows != nil {
			if shards[shard].TotalRows == nil {
				zero := int64(0)
				shards[shard].TotalRows = &zero
			}
			*shards[shard].TotalRows += *g.TotalRows
		}
	}

	for i := range shards {
		sort.Slice(shards[i].Files, func(a, b int) bool { return shards[i].Files[a].Path < shards[i].Files[b].Path })
	}

	// Column lists marshal as [] rather than null when unset.
	coLocateBy := cfg.CoLocateBy
	if coLocateBy == nil {
		coLocateBy = []string{}
	}
	stickyBy := cfg.StickyBy
	if stickyBy == nil {
		stickyBy = []string{}
	}

	return &types.ShardManifest{
		Version:     version,
		Shards:      cfg.Shards,
		Balance:     cfg.Balance,
		CoLocateBy:  coLocateBy,
		StickyBy:    stickyBy,
		Seed:        cfg.Seed,
		Assignments: shards,
	}
}

// knownRows reports a file's row count from its own statistics, or nil if
// it doesn't carry any. Imputed rows (used internally to balance by rows
// when some files lack stats) are never surfaced in the manifest as if
// they were measured.
func knownRows(f *types.Add) *int64 {
	if f.Stats == nil {
		return nil
	}
	return f.Stats.NumRecords
}

func observeImbalance(m *types.ShardManifest) {
	if len(m.Assignments) == 0 {
		return
	}
	var total, max int64
	for _, s := range m.Assignments {
		total += s.TotalBytes
		if s.TotalBytes > max {
			max = s.TotalBytes
		}
	}
	if total == 0 {
		return
	}
	mean := float64(total) / float64(len(m.Assignments))
	if mean == 0 {
		return
	}
	metrics.PlanMaxLoadImbalance.Observe(float64(max) / mean)
}
