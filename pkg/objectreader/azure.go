package objectreader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/types"
)

type azureReader struct {
	client    *azblob.Client
	container string
	prefix    string
}

func newAzureReader(ctx context.Context, parsed ParsedURI, o *options) (Reader, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, deltaerr.Config("creating Azure credential", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountFromBucket(parsed.Bucket))
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, deltaerr.Config("creating Azure blob client", err)
	}
	return &azureReader{
		client:    client,
		container: containerFromBucket(parsed.Bucket),
		prefix:    parsed.Key,
	}, nil
}

// accountFromBucket and containerFromBucket split the "account.container"
// form produced by ParseURI's abfs(s):// host parsing.
func accountFromBucket(bucket string) string {
	parts := strings.SplitN(bucket, ".", 2)
	return parts[0]
}

func containerFromBucket(bucket string) string {
	parts := strings.SplitN(bucket, ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return bucket
}

func (r *azureReader) key(rel string) string {
	if r.prefix == "" {
		return rel
	}
	return r.prefix + "/" + strings.TrimPrefix(rel, "/")
}

func (r *azureReader) ListPrefix(ctx context.Context, prefix string) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		fullPrefix := r.key(prefix)
		pager := r.client.NewListBlobsFlatPager(r.container, &azblob.ListBlobsFlatOptions{
			Prefix: &fullPrefix,
		})
		for pager.More() {
			page, err := withRetry(ctx, "azure", "list", func(ctx context.Context) (azblob.ListBlobsFlatResponse, error) {
				p, err := pager.NextPage(ctx)
				return p, translateAzureErr(err)
			})
			if err != nil {
				yield(ObjectInfo{}, err)
				return
			}
			for _, item := range page.Segment.BlobItems {
				if item.Name == nil {
					continue
				}
				rel := strings.TrimPrefix(*item.Name, r.prefix+"/")
				size := int64(0)
				if item.Properties != nil && item.Properties.ContentLength != nil {
					size = *item.Properties.ContentLength
				}
				if !yield(ObjectInfo{Path: rel, Size: size}, nil) {
					return
				}
			}
		}
	}
}

func (r *azureReader) GetAll(ctx context.Context, path string) ([]byte, error) {
	resp, err := withRetry(ctx, "azure", "get", func(ctx context.Context) (azblob.DownloadStreamResponse, error) {
		dl, err := r.client.DownloadStream(ctx, r.container, r.key(path), nil)
		return dl, translateAzureErr(err)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, deltaerr.IO(deltaerr.Network, "reading Azure blob body", err).With("path", path)
	}
	return b, nil
}

func (r *azureReader) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	resp, err := withRetry(ctx, "azure", "get_range", func(ctx context.Context) (azblob.DownloadStreamResponse, error) {
		dl, err := r.client.DownloadStream(ctx, r.container, r.key(path), &azblob.DownloadStreamOptions{
			Range: azblob.HTTPRange{Offset: offset, Count: length},
		})
		return dl, translateAzureErr(err)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, deltaerr.IO(deltaerr.Network, "reading Azure blob range", err).With("path", path)
	}
	return buf.Bytes(), nil
}

func (r *azureReader) Head(ctx context.Context, path string) (int64, error) {
	props, err := withRetry(ctx, "azure", "head", func(ctx context.Context) (blob.GetPropertiesResponse, error) {
		p, err := r.client.ServiceClient().NewContainerClient(r.container).NewBlobClient(r.key(path)).GetProperties(ctx, nil)
		return p, translateAzureErr(err)
	})
	if err != nil {
		return 0, err
	}
	if props.ContentLength == nil {
		return 0, nil
	}
	return *props.ContentLength, nil
}

func (r *azureReader) Backend() types.BackendKind { return types.BackendAzure }

func (r *azureReader) Close() error { return nil }

func translateAzureErr(err error) error {
	if err == nil {
		return nil
	}
	var de *deltaerr.Error
	if errors.As(err, &de) {
		return err
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return deltaerr.IO(deltaerr.NotFound, "Azure blob not found", err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return deltaerr.IO(deltaerr.Forbidden, "Azure access denied", err)
		default:
			if respErr.StatusCode >= 500 {
				return deltaerr.IO(deltaerr.Network, "Azure server error", err)
			}
		}
	}
	return deltaerr.IO(deltaerr.Network, "Azure request failed", err)
}
