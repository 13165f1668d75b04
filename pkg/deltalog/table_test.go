package deltalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltakit/deltakit/pkg/types"
)

func TestListVersions_Ascending(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 2, `{"commitInfo":{}}`)
	writeCommit(t, dir, 0, `{"commitInfo":{}}`)
	writeCommit(t, dir, 1, `{"commitInfo":{}}`)

	versions, err := tbl.ListVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.Version{0, 1, 2}, versions)
}

func TestParseCommitVersion(t *testing.T) {
	v, ok := parseCommitVersion("_delta_log/00000000000000000042.json")
	require.True(t, ok)
	assert.Equal(t, types.Version(42), v)

	_, ok = parseCommitVersion("_delta_log/_last_checkpoint")
	assert.False(t, ok)
}

func TestLatestCheckpoint_MissingIsNotError(t *testing.T) {
	tbl, _ := newTestTable(t)
	version, ok, err := tbl.latestCheckpoint(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, version)
}
