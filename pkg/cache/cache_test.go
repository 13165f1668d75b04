package cache

import (
	"context"
	"iter"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/deltakit/deltakit/pkg/objectreader"
	"github.com/deltakit/deltakit/pkg/types"
)

type countingReader struct {
	calls int
	data  []byte
}

func (r *countingReader) ListPrefix(ctx context.Context, prefix string) iter.Seq2[objectreader.ObjectInfo, error] {
	return func(yield func(objectreader.ObjectInfo, error) bool) {}
}

func (r *countingReader) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	r.calls++
	return r.data, nil
}

func (r *countingReader) GetAll(ctx context.Context, path string) ([]byte, error) {
	r.calls++
	return r.data, nil
}

func (r *countingReader) Head(ctx context.Context, path string) (int64, error) { return int64(len(r.data)), nil }
func (r *countingReader) Backend() types.BackendKind                          { return types.BackendLocal }
func (r *countingReader) Close() error                                       { return nil }

func TestCachedReader_HitsAvoidInnerCall(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()

	inner := &countingReader{data: []byte("hello world")}
	r := Wrap(inner, db)
	ctx := context.Background()

	b1, err := r.GetRange(ctx, "file.json", 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), b1)
	assert.Equal(t, 1, inner.calls)

	b2, err := r.GetRange(ctx, "file.json", 0, 5)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, inner.calls, "second read should hit the cache")
}

func TestCachedReader_CloseClosesInnerAndDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	db, err := Open(dbPath)
	require.NoError(t, err)

	inner := &countingReader{data: []byte("x")}
	r := Wrap(inner, db)
	require.NoError(t, r.Close())

	// db is closed; a further operation against it must fail rather than
	// silently succeed against a leaked handle.
	err = db.Update(func(tx *bolt.Tx) error { return nil })
	assert.Error(t, err)
}

func TestCachedReader_ListPrefixPassesThrough(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()

	inner := &countingReader{}
	r := Wrap(inner, db)
	for range r.ListPrefix(context.Background(), "") {
	}
}
