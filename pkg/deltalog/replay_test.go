package deltalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/objectreader"
	"github.com/deltakit/deltakit/pkg/types"
)

func writeCommit(t *testing.T, dir string, version int64, lines ...string) {
	t.Helper()
	path := filepath.Join(dir, "_delta_log", fmt.Sprintf("%020d.json", version))
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestTable(t *testing.T) (*Table, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_delta_log"), 0755))
	r, err := objectreader.New(context.Background(), dir)
	require.NoError(t, err)
	return Open(types.TableRef{BaseURI: dir, Backend: types.BackendLocal}, r), dir
}

func TestSnapshotAt_SimpleReplay(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 0,
		`{"metaData":{"id":"t1","schemaString":"{}","partitionColumns":[],"configuration":{}}}`,
		`{"protocol":{"minReaderVersion":1,"minWriterVersion":2}}`,
		`{"add":{"path":"a.parquet","partitionValues":{},"size":100,"modificationTime":1,"dataChange":true}}`,
	)
	writeCommit(t, dir, 1,
		`{"add":{"path":"b.parquet","partitionValues":{},"size":200,"modificationTime":2,"dataChange":true}}`,
	)
	writeCommit(t, dir, 2,
		`{"remove":{"path":"a.parquet","deletionTimestamp":3,"dataChange":true}}`,
	)

	snap, err := tbl.SnapshotAt(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, types.Version(2), snap.Version)
	assert.ElementsMatch(t, []string{"b.parquet"}, snap.ActivePaths())
	assert.Len(t, snap.Tombstones, 1)
}

func TestSnapshotAt_HistoricalVersion(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 0,
		`{"metaData":{"id":"t1","schemaString":"{}","partitionColumns":[],"configuration":{}}}`,
		`{"add":{"path":"a.parquet","partitionValues":{},"size":100,"modificationTime":1,"dataChange":true}}`,
	)
	writeCommit(t, dir, 1,
		`{"remove":{"path":"a.parquet","deletionTimestamp":3,"dataChange":true}}`,
	)

	v0 := int64(0)
	snap, err := tbl.SnapshotAt(context.Background(), &v0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.parquet"}, snap.ActivePaths())
}

func TestSnapshotAt_UnsupportedProtocol(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 0,
		`{"protocol":{"minReaderVersion":99,"minWriterVersion":99}}`,
	)

	_, err := tbl.SnapshotAt(context.Background(), nil)
	require.Error(t, err)
}

func TestSnapshotAt_VersionNotFound(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 0, `{"metaData":{"id":"t1","schemaString":"{}","partitionColumns":[]}}`)

	v := int64(5)
	_, err := tbl.SnapshotAt(context.Background(), &v)
	require.Error(t, err)
}

func TestSnapshotAt_MissingCommitInRangeIsCorrupt(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 0,
		`{"metaData":{"id":"t1","schemaString":"{}","partitionColumns":[],"configuration":{}}}`,
		`{"add":{"path":"a.parquet","partitionValues":{},"size":100,"modificationTime":1,"dataChange":true}}`,
	)
	writeCommit(t, dir, 1,
		`{"add":{"path":"b.parquet","partitionValues":{},"size":200,"modificationTime":2,"dataChange":true}}`,
	)
	// version 2 is missing on disk; version 3 exists, so ListVersions
	// reports [0,1,3] and a naive range filter would silently replay as
	// if only those three versions ever existed.
	writeCommit(t, dir, 3,
		`{"add":{"path":"c.parquet","partitionValues":{},"size":300,"modificationTime":3,"dataChange":true}}`,
	)

	_, err := tbl.SnapshotAt(context.Background(), nil)
	require.Error(t, err)
	var de *deltaerr.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, deltaerr.CorruptLog, de.Kind)
	assert.Equal(t, int64(2), de.Context["version"])
}

func writeLastCheckpoint(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, "_delta_log", "_last_checkpoint")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSnapshotAt_MissingCheckpointFileFallsBackToFullReplay(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 0,
		`{"metaData":{"id":"t1","schemaString":"{}","partitionColumns":[],"configuration":{}}}`,
		`{"add":{"path":"a.parquet","partitionValues":{},"size":100,"modificationTime":1,"dataChange":true}}`,
	)
	writeCommit(t, dir, 1,
		`{"add":{"path":"b.parquet","partitionValues":{},"size":200,"modificationTime":2,"dataChange":true}}`,
	)
	// The pointer names a checkpoint that was never written (or was
	// already vacuumed away); the commit log alone must still replay.
	writeLastCheckpoint(t, dir, `{"version":1,"size":2}`)

	snap, err := tbl.SnapshotAt(context.Background(), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.parquet", "b.parquet"}, snap.ActivePaths())
}

func TestSnapshotAt_UnreadableLastCheckpointFallsBackToFullReplay(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 0,
		`{"add":{"path":"a.parquet","partitionValues":{},"size":100,"modificationTime":1,"dataChange":true}}`,
	)
	writeLastCheckpoint(t, dir, `{not json`)

	snap, err := tbl.SnapshotAt(context.Background(), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.parquet"}, snap.ActivePaths())
}

func TestDiff_BetweenVersions(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 0,
		`{"add":{"path":"a.parquet","partitionValues":{},"size":100,"modificationTime":1,"dataChange":true}}`,
	)
	writeCommit(t, dir, 1,
		`{"add":{"path":"b.parquet","partitionValues":{},"size":200,"modificationTime":2,"dataChange":true}}`,
		`{"remove":{"path":"a.parquet","deletionTimestamp":3,"dataChange":true}}`,
	)

	diff, err := tbl.Diff(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.parquet"}, diff.Added)
	assert.Equal(t, []string{"a.parquet"}, diff.Removed)
}
