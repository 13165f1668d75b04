package shardplan

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/types"
)

const loadConcurrency = 16

// rowsPerByteRatio computes the global rows-per-byte ratio from every
// active file carrying stats, used to impute rows for files that don't.
// Fails with MissingStatistics if no file anywhere has stats.
func rowsPerByteRatio(files []*types.Add) (float64, error) {
	var rowsWithStats, bytesWithStats int64
	for _, f := range files {
		if f.Stats != nil && f.Stats.NumRecords != nil {
			rowsWithStats += *f.Stats.NumRecords
			bytesWithStats += f.Size
		}
	}
	if bytesWithStats == 0 {
		return 0, deltaerr.MissingStats("no active file carries row statistics")
	}
	return float64(rowsWithStats) / float64(bytesWithStats), nil
}

// fileRows returns a file's row count: its own stats if present, else its
// size scaled by ratio and rounded to the nearest integer.
func fileRows(f *types.Add, ratio float64) int64 {
	if f.Stats != nil && f.Stats.NumRecords != nil {
		return *f.Stats.NumRecords
	}
	return int64(math.Round(float64(f.Size) * ratio))
}

// computeLoads fills in each group's TotalBytes and, if balance is
// BalanceRows, TotalRows. Per-group sums run concurrently since they are
// independent of each other and of the balancing pass that follows.
func computeLoads(ctx context.Context, groups []*group, balance types.BalanceMetric, allFiles []*types.Add) error {
	var ratio float64
	if balance == types.BalanceRows {
		r, err := rowsPerByteRatio(allFiles)
		if err != nil {
			return err
		}
		ratio = r
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, grp := range groups {
		grp := grp
		g.Go(func() error {
			if gctx.Err() != nil {
				return deltaerr.Cancel()
			}
			var bytes int64
			var rows int64
			for _, f := range grp.Files {
				bytes += f.Size
				if balance == types.BalanceRows {
					rows += fileRows(f, ratio)
				}
			}
			grp.TotalBytes = bytes
			if balance == types.BalanceRows {
				grp.TotalRows = &rows
			}
			return nil
		})
	}
	return g.Wait()
}

// load returns the scalar load value the balancing pass compares, per the
// chosen objective.
func (g *group) load(balance types.BalanceMetric) int64 {
	if balance == types.BalanceRows && g.TotalRows != nil {
		return *g.TotalRows
	}
	return g.TotalBytes
}
