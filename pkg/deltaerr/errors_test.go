package deltaerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{NotFoundVersion(7), 3},
		{Corrupt(3, "missing commit", nil), 4},
		{InfeasibleCap("max-bytes-per-shard", 1, "cap exceeded"), 5},
		{MissingStats("no stats anywhere"), 5},
		{IO(Network, "timeout", nil), 6},
		{Invalid("shards < 1"), 2},
		{Empty("table has no active files"), 1},
		{Config("unknown scheme", nil), 2},
		{InternalErr("boom", nil), 1},
		{errors.New("plain"), 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, ExitCode(c.err))
	}
}

func TestErrorIsByKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFoundVersion(5))
	assert.True(t, errors.Is(err, &Error{Kind: VersionNotFound}))
	assert.False(t, errors.Is(err, &Error{Kind: CorruptLog}))
}

func TestWithContext(t *testing.T) {
	err := InfeasibleCap("max-files-per-shard", 2, "cap exceeded").With("group", "dt=2024-01-01")
	assert.Equal(t, 2, err.Context["shard"])
	assert.Equal(t, "dt=2024-01-01", err.Context["group"])
}
