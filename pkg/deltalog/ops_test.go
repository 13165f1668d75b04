package deltalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionHealth_GroupsByPartitionKey(t *testing.T) {
	tbl, dir := newTestTable(t)
	writeCommit(t, dir, 0,
		`{"metaData":{"id":"t1","schemaString":"{}","partitionColumns":["region"],"configuration":{}}}`,
		`{"add":{"path":"a.parquet","partitionValues":{"region":"us"},"size":100,"modificationTime":1,"dataChange":true}}`,
		`{"add":{"path":"b.parquet","partitionValues":{"region":"us"},"size":300,"modificationTime":1,"dataChange":true}}`,
		`{"add":{"path":"c.parquet","partitionValues":{"region":"eu"},"size":50,"modificationTime":1,"dataChange":true}}`,
	)

	health, err := tbl.PartitionHealth(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, health.Groups, 2)

	byKey := make(map[string]int64)
	for _, g := range health.Groups {
		byKey[g.Key] = g.TotalBytes
	}
	assert.Equal(t, int64(400), byKey["region=us"])
	assert.Equal(t, int64(50), byKey["region=eu"])
}

func TestPartitionGroupKey_MissingValueMatchesShardPlannerSentinel(t *testing.T) {
	key := PartitionGroupKey([]string{"region"}, map[string]string{})
	assert.Equal(t, "region=null", key)
}

func TestPartitionGroupKey_Unpartitioned(t *testing.T) {
	key := PartitionGroupKey(nil, map[string]string{"region": "us"})
	assert.Equal(t, "", key)
}
