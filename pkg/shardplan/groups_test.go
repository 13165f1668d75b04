package shardplan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deltakit/deltakit/pkg/types"
)

func TestCanonicalKey_OrdersByDeclaredColumns(t *testing.T) {
	key := canonicalKey([]string{"region", "dt"}, map[string]string{"dt": "2024-01-01", "region": "us"})
	assert.Equal(t, "region=us/dt=2024-01-01", key)
}

func TestCanonicalKey_MissingValueIsNull(t *testing.T) {
	key := canonicalKey([]string{"region"}, map[string]string{})
	assert.Equal(t, "region=null", key)
}

func TestCanonicalKey_EmptyColumnsIsEmptyKey(t *testing.T) {
	assert.Equal(t, "", canonicalKey(nil, map[string]string{"region": "us"}))
}

func TestFormGroups_EmptyCoLocateByIsPerFile(t *testing.T) {
	files := []*types.Add{
		{Path: "a", PartitionValues: map[string]string{"dt": "x"}},
		{Path: "b", PartitionValues: map[string]string{"dt": "x"}},
	}
	groups := formGroups(files, nil, nil)
	assert.Len(t, groups, 2)
}

func TestFormGroups_CoLocatesByColumn(t *testing.T) {
	files := []*types.Add{
		{Path: "a", PartitionValues: map[string]string{"dt": "x"}},
		{Path: "b", PartitionValues: map[string]string{"dt": "x"}},
		{Path: "c", PartitionValues: map[string]string{"dt": "y"}},
	}
	groups := formGroups(files, []string{"dt"}, nil)
	assert.Len(t, groups, 2)
	for _, g := range groups {
		if g.Key == "dt=x" {
			assert.Len(t, g.Files, 2)
		}
	}
}
