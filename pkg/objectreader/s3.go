package objectreader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/types"
)

type s3Reader struct {
	client *s3.Client
	bucket string
	prefix string
}

func newS3Reader(ctx context.Context, parsed ParsedURI, o *options) (Reader, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithHTTPClient(&http.Client{
			Transport: &http.Transport{MaxConnsPerHost: o.maxConnsPerHost},
		}),
	)
	if err != nil {
		return nil, deltaerr.Config("loading AWS config", err)
	}
	return &s3Reader{
		client: s3.NewFromConfig(cfg),
		bucket: parsed.Bucket,
		prefix: parsed.Key,
	}, nil
}

func (r *s3Reader) key(rel string) string {
	if r.prefix == "" {
		return rel
	}
	return r.prefix + "/" + strings.TrimPrefix(rel, "/")
}

func (r *s3Reader) ListPrefix(ctx context.Context, prefix string) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		fullPrefix := r.key(prefix)
		paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(r.bucket),
			Prefix: aws.String(fullPrefix),
		})
		for paginator.HasMorePages() {
			page, err := withRetry(ctx, "s3", "list", func(ctx context.Context) (*s3.ListObjectsV2Output, error) {
				out, err := paginator.NextPage(ctx)
				return out, translateS3Err(err)
			})
			if err != nil {
				yield(ObjectInfo{}, err)
				return
			}
			for _, obj := range page.Contents {
				rel := strings.TrimPrefix(aws.ToString(obj.Key), r.prefix+"/")
				size := int64(0)
				if obj.Size != nil {
					size = *obj.Size
				}
				if !yield(ObjectInfo{Path: rel, Size: size}, nil) {
					return
				}
			}
		}
	}
}

func (r *s3Reader) GetAll(ctx context.Context, path string) ([]byte, error) {
	out, err := withRetry(ctx, "s3", "get", func(ctx context.Context) (*s3.GetObjectOutput, error) {
		o, err := r.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(r.key(path)),
		})
		return o, translateS3Err(err)
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, deltaerr.IO(deltaerr.Network, "reading S3 object body", err).With("path", path)
	}
	return b, nil
}

func (r *s3Reader) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	rng := fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
	out, err := withRetry(ctx, "s3", "get_range", func(ctx context.Context) (*s3.GetObjectOutput, error) {
		o, err := r.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(r.key(path)),
			Range:  aws.String(rng),
		})
		return o, translateS3Err(err)
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, deltaerr.IO(deltaerr.Network, "reading S3 object range", err).With("path", path)
	}
	return b, nil
}

func (r *s3Reader) Head(ctx context.Context, path string) (int64, error) {
	out, err := withRetry(ctx, "s3", "head", func(ctx context.Context) (*s3.HeadObjectOutput, error) {
		o, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(r.key(path)),
		})
		return o, translateS3Err(err)
	})
	if err != nil {
		return 0, err
	}
	if out.ContentLength == nil {
		return 0, nil
	}
	return *out.ContentLength, nil
}

func (r *s3Reader) Backend() types.BackendKind { return types.BackendS3 }

func (r *s3Reader) Close() error { return nil }

// translateS3Err classifies an AWS SDK error into deltaerr's IOKind taxonomy.
// It runs inside every retried closure so withRetry's transience check and
// the CLI's exit-code mapping both see classified errors.
func translateS3Err(err error) error {
	if err == nil {
		return nil
	}
	var de *deltaerr.Error
	if errors.As(err, &de) {
		return err
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return deltaerr.IO(deltaerr.NotFound, "S3 object not found", err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return deltaerr.IO(deltaerr.Forbidden, "S3 access denied", err)
		case http.StatusTooManyRequests:
			return deltaerr.IO(deltaerr.Network, "S3 throttled", err)
		default:
			if respErr.HTTPStatusCode() >= 500 {
				return deltaerr.IO(deltaerr.Network, "S3 server error", err)
			}
		}
	}
	return deltaerr.IO(deltaerr.Network, "S3 request failed", err)
}
