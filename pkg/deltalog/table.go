package deltalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/log"
	"github.com/deltakit/deltakit/pkg/objectreader"
	"github.com/deltakit/deltakit/pkg/types"
)

const logPrefix = "_delta_log/"

// Table is a handle on a Delta table's transaction log, bound to an
// objectreader.Reader for the table's base URI.
type Table struct {
	ref    types.TableRef
	reader objectreader.Reader
}

// Open binds a Table to ref, using reader for all object access.
func Open(ref types.TableRef, reader objectreader.Reader) *Table {
	return &Table{ref: ref, reader: reader}
}

// lastCheckpointPointer mirrors the _last_checkpoint JSON file's fields.
type lastCheckpointPointer struct {
	Version Version `json:"version"`
	Size    int64   `json:"size"`
	Parts   *int    `json:"parts,omitempty"`
}

// Version is a plain int64 alias used for the pointer's JSON field; its
// wire shape is identical to types.Version.
type Version = int64

// ListVersions returns every commit version present in the log, ascending.
func (t *Table) ListVersions(ctx context.Context) ([]types.Version, error) {
	var versions []types.Version
	for info, err := range t.reader.ListPrefix(ctx, logPrefix) {
		if err != nil {
			return nil, err
		}
		v, ok := parseCommitVersion(info.Path)
		if !ok {
			continue
		}
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

func parseCommitVersion(path string) (types.Version, bool) {
	name := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		name = path[idx+1:]
	}
	if !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	digits := strings.TrimSuffix(name, ".json")
	if len(digits) != 20 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return types.Version(n), true
}

// latestCheckpoint reads _last_checkpoint and returns the version it points
// to. A missing pointer is not an error: callers fall back to a full
// replay from version 0, logging a warning once.
func (t *Table) latestCheckpoint(ctx context.Context) (*types.Version, bool, error) {
	data, err := t.reader.GetAll(ctx, logPrefix+"_last_checkpoint")
	if err != nil {
		var de *deltaerr.Error
		if errors.As(err, &de) && de.Kind == deltaerr.IoError && de.IOKind == deltaerr.NotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	var ptr lastCheckpointPointer
	if err := fastJSON.Unmarshal(data, &ptr); err != nil {
		// An unreadable pointer is recoverable the same way a missing one
		// is: a full replay from version 0.
		componentLogger := log.WithComponent("deltalog")
		componentLogger.Warn().Err(err).
			Msg("_last_checkpoint is unreadable, falling back to full replay from version 0")
		return nil, false, nil
	}
	v := types.Version(ptr.Version)
	return &v, true, nil
}

func commitPath(version types.Version) string {
	return fmt.Sprintf("%s%020d.json", logPrefix, int64(version))
}

// Schema returns the current schema string by replaying to the table's
// latest version.
func (t *Table) Schema(ctx context.Context) (string, error) {
	snap, err := t.SnapshotAt(ctx, nil)
	if err != nil {
		return "", err
	}
	if snap.Metadata == nil {
		return "", deltaerr.Corrupt(int64(snap.Version), "table has no metaData action", nil)
	}
	return snap.Metadata.SchemaString, nil
}

// PartitionColumns returns the current partition columns by replaying to
// the table's latest version.
func (t *Table) PartitionColumns(ctx context.Context) ([]string, error) {
	snap, err := t.SnapshotAt(ctx, nil)
	if err != nil {
		return nil, err
	}
	return snap.PartitionColumns(), nil
}
