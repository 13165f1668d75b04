package objectreader

import (
	"context"
	"errors"
	"io"
	"iter"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/types"
)

type gcsReader struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

func newGCSReader(ctx context.Context, parsed ParsedURI, o *options) (Reader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, deltaerr.Config("creating GCS client", err)
	}
	return &gcsReader{
		client: client,
		bucket: client.Bucket(parsed.Bucket),
		prefix: parsed.Key,
	}, nil
}

func (r *gcsReader) key(rel string) string {
	if r.prefix == "" {
		return rel
	}
	return r.prefix + "/" + strings.TrimPrefix(rel, "/")
}

func (r *gcsReader) ListPrefix(ctx context.Context, prefix string) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		it := r.bucket.Objects(ctx, &storage.Query{Prefix: r.key(prefix)})
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield(ObjectInfo{}, translateGCSErr(err))
				return
			}
			rel := strings.TrimPrefix(attrs.Name, r.prefix+"/")
			if !yield(ObjectInfo{Path: rel, Size: attrs.Size}, nil) {
				return
			}
		}
	}
}

func (r *gcsReader) GetAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := withRetry(ctx, "gcs", "get", func(ctx context.Context) (*storage.Reader, error) {
		rdr, err := r.bucket.Object(r.key(path)).NewReader(ctx)
		return rdr, translateGCSErr(err)
	})
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, deltaerr.IO(deltaerr.Network, "reading GCS object body", err).With("path", path)
	}
	return b, nil
}

func (r *gcsReader) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	rc, err := withRetry(ctx, "gcs", "get_range", func(ctx context.Context) (*storage.Reader, error) {
		rdr, err := r.bucket.Object(r.key(path)).NewRangeReader(ctx, offset, length)
		return rdr, translateGCSErr(err)
	})
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, deltaerr.IO(deltaerr.Network, "reading GCS object range", err).With("path", path)
	}
	return b, nil
}

func (r *gcsReader) Head(ctx context.Context, path string) (int64, error) {
	attrs, err := withRetry(ctx, "gcs", "head", func(ctx context.Context) (*storage.ObjectAttrs, error) {
		a, err := r.bucket.Object(r.key(path)).Attrs(ctx)
		return a, translateGCSErr(err)
	})
	if err != nil {
		return 0, err
	}
	return attrs.Size, nil
}

func (r *gcsReader) Backend() types.BackendKind { return types.BackendGCS }

func (r *gcsReader) Close() error { return r.client.Close() }

func translateGCSErr(err error) error {
	if err == nil {
		return nil
	}
	var de *deltaerr.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return deltaerr.IO(deltaerr.NotFound, "GCS object not found", err)
	}
	var apiErr interface{ Code() int }
	if errors.As(err, &apiErr) {
		switch apiErr.Code() {
		case http.StatusNotFound:
			return deltaerr.IO(deltaerr.NotFound, "GCS object not found", err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return deltaerr.IO(deltaerr.Forbidden, "GCS access denied", err)
		}
	}
	return deltaerr.IO(deltaerr.Network, "GCS request failed", err)
}
