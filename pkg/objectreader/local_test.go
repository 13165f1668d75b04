package objectreader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtureTable(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	logDir := filepath.Join(root, "_delta_log")
	require.NoError(t, os.MkdirAll(logDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "00000000000000000000.json"), []byte(`{"commitInfo":{}}`+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "00000000000000000001.json"), []byte(`{"commitInfo":{}}`+"\n"), 0644))
	return root
}

func TestLocalReader_ListPrefix(t *testing.T) {
	root := writeFixtureTable(t)
	ctx := context.Background()
	r, err := New(ctx, root)
	require.NoError(t, err)
	defer r.Close()

	var paths []string
	for info, err := range r.ListPrefix(ctx, "_delta_log/") {
		require.NoError(t, err)
		paths = append(paths, info.Path)
	}
	assert.Len(t, paths, 2)
}

func TestLocalReader_GetAllAndRange(t *testing.T) {
	root := writeFixtureTable(t)
	ctx := context.Background()
	r, err := New(ctx, root)
	require.NoError(t, err)
	defer r.Close()

	full, err := r.GetAll(ctx, "_delta_log/00000000000000000000.json")
	require.NoError(t, err)
	assert.Equal(t, `{"commitInfo":{}}`+"\n", string(full))

	partial, err := r.GetRange(ctx, "_delta_log/00000000000000000000.json", 0, 12)
	require.NoError(t, err)
	assert.Equal(t, `{"commitInfo`, string(partial))
}

func TestLocalReader_HeadMissing(t *testing.T) {
	root := writeFixtureTable(t)
	ctx := context.Background()
	r, err := New(ctx, root)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Head(ctx, "_delta_log/does-not-exist.json")
	require.Error(t, err)
}

func TestLocalReader_RejectsTraversal(t *testing.T) {
	root := writeFixtureTable(t)
	ctx := context.Background()
	r, err := New(ctx, root)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.GetAll(ctx, "../../etc/passwd")
	require.Error(t, err)
}
