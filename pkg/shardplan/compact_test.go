package shardplan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deltakit/deltakit/pkg/types"
)

func TestCompactPlan_BatchesSmallFiles(t *testing.T) {
	snap := snapshotOf(add("a", 10), add("b", 20), add("c", 900))
	plan := CompactPlan(snap, 100, 500)
	require := assert.New(t)
	require.Len(plan.Batches, 1)
	require.ElementsMatch([]string{"a", "b"}, plan.Batches[0].Paths)
}

func TestCompactPlan_UnpartitionedIsOneGroup(t *testing.T) {
	snap := snapshotOf(add("a", 10), add("b", 10))
	plan := CompactPlan(snap, 1000, 500)
	require := assert.New(t)
	require.Len(plan.Batches, 1)
	require.Equal("", plan.Batches[0].GroupKey)
}

func TestCompactPlan_SingleSmallFileNoBatch(t *testing.T) {
	snap := snapshotOf(add("a", 10))
	plan := CompactPlan(snap, 1000, 500)
	assert.Empty(t, plan.Batches)
}

func TestGroupByPartition_SeparatesByColumn(t *testing.T) {
	files := []*types.Add{
		{Path: "a", PartitionValues: map[string]string{"dt": "x"}},
		{Path: "b", PartitionValues: map[string]string{"dt": "y"}},
	}
	groups := groupByPartition(files, []string{"dt"})
	assert.Len(t, groups, 2)
}
