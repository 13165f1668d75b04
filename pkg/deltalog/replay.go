package deltalog

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/log"
	"github.com/deltakit/deltakit/pkg/metrics"
	"github.com/deltakit/deltakit/pkg/types"
)

const fetchConcurrency = 16

// SnapshotAt reconstructs the table's active file set as of target. A nil
// target means the latest available version. It fetches the checkpoint at
// or below target (if any) and every commit strictly after it up through
// target, fans the fetches out with errgroup, then applies them in
// strictly ascending version order so Add/Remove ordering is deterministic
// regardless of fetch completion order.
func (t *Table) SnapshotAt(ctx context.Context, target *int64) (*types.Snapshot, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReplayDuration)

	versions, err := t.ListVersions(ctx)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, deltaerr.Corrupt(0, "table has no commits", nil)
	}

	var targetVersion types.Version
	if target == nil {
		targetVersion = versions[len(versions)-1]
	} else {
		targetVersion = types.Version(*target)
		// Only a target past the newest listed commit is VersionNotFound; a
		// missing commit at or below it is reported by checkContiguous.
		if targetVersion < 0 || targetVersion > versions[len(versions)-1] {
			return nil, deltaerr.NotFoundVersion(*target)
		}
	}

	logger := log.WithVersion(int64(targetVersion))

	checkpointVersion, hasCheckpoint, err := t.latestCheckpoint(ctx)
	if err != nil {
		return nil, err
	}

	snap := &types.Snapshot{Files: make(map[string]*types.Add)}

	startFrom := types.Version(0)
	if hasCheckpoint && *checkpointVersion <= targetVersion {
		cpData, err := t.reader.GetAll(ctx, checkpointFilePath(*checkpointVersion))
		switch {
		case err == nil:
			cp, err := parseCheckpoint(*checkpointVersion, cpData)
			if err != nil {
				return nil, err
			}
			if err := checkProtocol(cp.Protocol); err != nil {
				return nil, err
			}
			applyCheckpoint(snap, cp)
			startFrom = *checkpointVersion + 1
		case isNotFound(err):
			// _last_checkpoint points at a checkpoint file that is gone.
			// The commit log is still complete, so a full replay recovers.
			logger.Warn().Int64("checkpoint", int64(*checkpointVersion)).
				Msg("checkpoint file referenced by _last_checkpoint is missing, falling back to full replay from version 0")
		default:
			return nil, err
		}
	} else if hasCheckpoint {
		logger.Debug().Msg("checkpoint version is past target, replaying from version 0")
	} else {
		logger.Warn().Msg("no _last_checkpoint found, falling back to full replay from version 0")
	}

	var toFetch []types.Version
	for _, v := range versions {
		if v >= startFrom && v <= targetVersion {
			toFetch = append(toFetch, v)
		}
	}
	if err := checkContiguous(startFrom, targetVersion, toFetch); err != nil {
		return nil, err
	}

	entries, err := t.fetchCommits(ctx, toFetch)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if err := applyCommit(snap, entry); err != nil {
			return nil, err
		}
		metrics.CommitsReplayedTotal.Inc()
	}
	snap.Version = targetVersion
	return snap, nil
}

// checkProtocol aborts replay with UnsupportedProtocol if protocol requires
// a reader version this implementation does not understand.
func checkProtocol(protocol *types.Protocol) error {
	if protocol == nil {
		return nil
	}
	if protocol.MinReaderVersion > types.MaxSupportedReaderVersion {
		return deltaerr.Unsupported(protocol.MinReaderVersion, protocol.MinWriterVersion)
	}
	return nil
}

// fetchCommits retrieves and decodes every version in versions, bounded to
// fetchConcurrency in flight, and returns them re-assembled in ascending
// version order.
func (t *Table) fetchCommits(ctx context.Context, versions []types.Version) ([]*types.CommitEntry, error) {
	entries := make([]*types.CommitEntry, len(versions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, v := range versions {
		i, v := i, v
		g.Go(func() error {
			if gctx.Err() != nil {
				return deltaerr.Cancel()
			}
			data, err := t.reader.GetAll(gctx, commitPath(v))
			if err != nil {
				return err
			}
			entry, err := decodeCommit(v, data)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// checkContiguous fails with CorruptLog{version} if any integer version in
// [startFrom, targetVersion] is missing from fetched: a gap in the commit
// range is never silently skipped.
func checkContiguous(startFrom, targetVersion types.Version, fetched []types.Version) error {
	present := make(map[types.Version]bool, len(fetched))
	for _, v := range fetched {
		present[v] = true
	}
	for v := startFrom; v <= targetVersion; v++ {
		if !present[v] {
			return deltaerr.Corrupt(int64(v), "missing commit file in replay range", nil)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var de *deltaerr.Error
	return errors.As(err, &de) && de.Kind == deltaerr.IoError && de.IOKind == deltaerr.NotFound
}

func applyCheckpoint(snap *types.Snapshot, cp *types.Checkpoint) {
	for _, add := range cp.Adds {
		snap.Files[add.Path] = add
	}
	if cp.Metadata != nil {
		snap.Metadata = cp.Metadata
	}
}

// applyCommit applies one commit's actions to snap in file order: Metadata
// replaces wholesale, Add inserts/overwrites, Remove deletes from the
// active set while retaining a tombstone record.
func applyCommit(snap *types.Snapshot, entry *types.CommitEntry) error {
	for _, rec := range entry.Actions {
		switch {
		case rec.Add != nil:
			snap.Files[rec.Add.Path] = rec.Add
		case rec.Remove != nil:
			delete(snap.Files, rec.Remove.Path)
			snap.Tombstones = append(snap.Tombstones, *rec.Remove)
		case rec.MetaData != nil:
			snap.Metadata = rec.MetaData
		case rec.Protocol != nil:
			if err := checkProtocol(rec.Protocol); err != nil {
				return err
			}
		}
	}
	return nil
}
