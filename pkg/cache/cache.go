package cache

import (
	"context"
	"fmt"
	"iter"

	bolt "go.etcd.io/bbolt"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/metrics"
	"github.com/deltakit/deltakit/pkg/objectreader"
	"github.com/deltakit/deltakit/pkg/types"
)

var bucketRanges = []byte("ranges")

// cachedReader wraps an objectreader.Reader with a bbolt-backed byte-range
// cache. Only GetRange and GetAll are cached; ListPrefix always passes
// through, and Head is not cached since it is cheap and rarely repeated.
type cachedReader struct {
	inner objectreader.Reader
	db    *bolt.DB
}

// Open opens (creating if absent) a bbolt database at path for use as a
// byte-range cache.
func Open(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, deltaerr.Config("opening cache database", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRanges)
		return err
	})
	if err != nil {
		db.Close()
		return nil, deltaerr.Config("initializing cache bucket", err)
	}
	return db, nil
}

// Wrap returns a Reader that serves byte ranges from db before falling
// through to inner on a miss, caching the result.
func Wrap(inner objectreader.Reader, db *bolt.DB) objectreader.Reader {
	return &cachedReader{inner: inner, db: db}
}

func rangeKey(path string, offset, length int64) []byte {
	return []byte(fmt.Sprintf("%s\x00%d\x00%d", path, offset, length))
}

func (c *cachedReader) lookup(key []byte) ([]byte, bool) {
	var val []byte
	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRanges)
		if v := b.Get(key); v != nil {
			val = append([]byte(nil), v...)
		}
		return nil
	})
	return val, val != nil
}

func (c *cachedReader) store(key, value []byte) {
	_ = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRanges).Put(key, value)
	})
}

func (c *cachedReader) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	key := rangeKey(path, offset, length)
	if v, ok := c.lookup(key); ok {
		metrics.CacheHitsTotal.Inc()
		return v, nil
	}
	metrics.CacheMissesTotal.Inc()
	b, err := c.inner.GetRange(ctx, path, offset, length)
	if err != nil {
		return nil, err
	}
	c.store(key, b)
	return b, nil
}

func (c *cachedReader) GetAll(ctx context.Context, path string) ([]byte, error) {
	key := rangeKey(path, 0, -1)
	if v, ok := c.lookup(key); ok {
		metrics.CacheHitsTotal.Inc()
		return v, nil
	}
	metrics.CacheMissesTotal.Inc()
	b, err := c.inner.GetAll(ctx, path)
	if err != nil {
		return nil, err
	}
	c.store(key, b)
	return b, nil
}

func (c *cachedReader) Head(ctx context.Context, path string) (int64, error) {
	return c.inner.Head(ctx, path)
}

func (c *cachedReader) ListPrefix(ctx context.Context, prefix string) iter.Seq2[objectreader.ObjectInfo, error] {
	return c.inner.ListPrefix(ctx, prefix)
}

func (c *cachedReader) Backend() types.BackendKind { return c.inner.Backend() }

// Close releases the inner Reader's connection pool and closes the cache
// database. Callers that share one *bolt.DB across multiple Wrap calls
// must not rely on this to close the database more than once.
func (c *cachedReader) Close() error {
	innerErr := c.inner.Close()
	dbErr := c.db.Close()
	if innerErr != nil {
		return innerErr
	}
	return dbErr
}
