package objectreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltakit/deltakit/pkg/types"
)

func TestParseURI_Local(t *testing.T) {
	p, err := ParseURI("/data/my-table")
	require.NoError(t, err)
	assert.Equal(t, types.BackendLocal, p.Backend)
	assert.Equal(t, "/data/my-table", p.Key)
}

func TestParseURI_LocalFileScheme(t *testing.T) {
	p, err := ParseURI("file:///data/my-table")
	require.NoError(t, err)
	assert.Equal(t, types.BackendLocal, p.Backend)
	assert.Equal(t, "/data/my-table", p.Key)
}

func TestParseURI_S3(t *testing.T) {
	p, err := ParseURI("s3://my-bucket/warehouse/my-table")
	require.NoError(t, err)
	assert.Equal(t, types.BackendS3, p.Backend)
	assert.Equal(t, "my-bucket", p.Bucket)
	assert.Equal(t, "warehouse/my-table", p.Key)
}

func TestParseURI_GCS(t *testing.T) {
	p, err := ParseURI("gs://my-bucket/warehouse/my-table")
	require.NoError(t, err)
	assert.Equal(t, types.BackendGCS, p.Backend)
	assert.Equal(t, "my-bucket", p.Bucket)
}

func TestParseURI_Azure(t *testing.T) {
	p, err := ParseURI("abfss://mycontainer@myaccount.dfs.core.windows.net/warehouse/my-table")
	require.NoError(t, err)
	assert.Equal(t, types.BackendAzure, p.Backend)
	assert.Equal(t, "myaccount.mycontainer", p.Bucket)
	assert.Equal(t, "warehouse/my-table", p.Key)
}

func TestParseURI_UnknownScheme(t *testing.T) {
	_, err := ParseURI("ftp://example.com/table")
	require.Error(t, err)
}

func TestParseURI_CollapsesSlashes(t *testing.T) {
	p, err := ParseURI("/data//my-table//sub")
	require.NoError(t, err)
	assert.Equal(t, "/data/my-table/sub", p.Key)
}

func TestParseURI_RejectsTraversal(t *testing.T) {
	_, err := ParseURI("s3://bucket/../secret")
	require.Error(t, err)
}

func TestParsedURI_Join(t *testing.T) {
	p := ParsedURI{Key: "warehouse/my-table"}
	joined, err := p.Join("_delta_log/00000000000000000000.json")
	require.NoError(t, err)
	assert.Equal(t, "warehouse/my-table/_delta_log/00000000000000000000.json", joined)
}

func TestParsedURI_JoinRejectsTraversal(t *testing.T) {
	p := ParsedURI{Key: "warehouse/my-table"}
	_, err := p.Join("../../etc/passwd")
	require.Error(t, err)
}
