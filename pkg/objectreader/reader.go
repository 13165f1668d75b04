package objectreader

import (
	"context"
	"iter"

	"github.com/deltakit/deltakit/pkg/types"
)

// ObjectInfo describes one object under a listed prefix.
type ObjectInfo struct {
	Path string
	Size int64
}

// Reader is the capability set every backend implements. Paths passed to
// its methods are relative to the Reader's base URI.
type Reader interface {
	// ListPrefix lazily lists objects whose path starts with prefix.
	ListPrefix(ctx context.Context, prefix string) iter.Seq2[ObjectInfo, error]

	// GetRange reads length bytes starting at offset.
	GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error)

	// GetAll reads the full contents of path.
	GetAll(ctx context.Context, path string) ([]byte, error)

	// Head returns the size of path without reading its body.
	Head(ctx context.Context, path string) (int64, error)

	// Backend reports which BackendKind this Reader implements, used for
	// metrics labels and log fields.
	Backend() types.BackendKind

	// Close releases the Reader's connection pool.
	Close() error
}

// Option configures a Reader constructed by New.
type Option func(*options)

type options struct {
	maxConnsPerHost int
}

func defaultOptions() *options {
	return &options{maxConnsPerHost: 32}
}

// WithMaxConnsPerHost overrides the default per-host connection pool size
// (32). Only the S3 backend applies it; the GCS and Azure backends use
// their SDKs' default transports.
func WithMaxConnsPerHost(n int) Option {
	return func(o *options) { o.maxConnsPerHost = n }
}

// New dispatches baseURI's scheme to a backend and returns a bound Reader.
// Unsupported schemes fail with a ConfigError.
func New(ctx context.Context, baseURI string, opts ...Option) (Reader, error) {
	parsed, err := ParseURI(baseURI)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	switch parsed.Backend {
	case types.BackendLocal:
		return newLocalReader(parsed)
	case types.BackendS3:
		return newS3Reader(ctx, parsed, o)
	case types.BackendGCS:
		return newGCSReader(ctx, parsed, o)
	case types.BackendAzure:
		return newAzureReader(ctx, parsed, o)
	default:
		return nil, configErrUnsupportedBackend(baseURI)
	}
}
