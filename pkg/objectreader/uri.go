package objectreader

import (
	"net/url"
	"path"
	"strings"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/types"
)

// ParsedURI is a table base URI decomposed into the backend it selects and
// the bucket/container plus key prefix within that backend.
type ParsedURI struct {
	Backend types.BackendKind
	Bucket  string // empty for local
	Key     string // normalized path; absolute only for local tables
	Raw     string
}

// ParseURI selects a backend from a URI's scheme and normalizes its path:
// collapsing "//" and rejecting "..".
func ParseURI(raw string) (ParsedURI, error) {
	// Checked on the raw input: normalization would resolve ".." away.
	if strings.Contains(raw, "..") {
		return ParsedURI{}, deltaerr.Config("malformed URI: path traversal", nil).With("uri", raw)
	}
	switch {
	case strings.HasPrefix(raw, "s3://"):
		return parseBucketURI(raw, "s3://", types.BackendS3)
	case strings.HasPrefix(raw, "gs://"):
		return parseBucketURI(raw, "gs://", types.BackendGCS)
	case strings.HasPrefix(raw, "abfss://"):
		return parseAzureURI(raw, "abfss://")
	case strings.HasPrefix(raw, "abfs://"):
		return parseAzureURI(raw, "abfs://")
	case strings.HasPrefix(raw, "file://"):
		p := strings.TrimPrefix(raw, "file://")
		return ParsedURI{Backend: types.BackendLocal, Key: normalizeLocalPath(p), Raw: raw}, nil
	case strings.Contains(raw, "://"):
		scheme := raw[:strings.Index(raw, "://")]
		return ParsedURI{}, deltaerr.Config("unsupported backend scheme", nil).With("scheme", scheme).With("uri", raw)
	default:
		// Bare path: local backend.
		return ParsedURI{Backend: types.BackendLocal, Key: normalizeLocalPath(raw), Raw: raw}, nil
	}
}

func parseBucketURI(raw, prefix string, backend types.BackendKind) (ParsedURI, error) {
	rest := strings.TrimPrefix(raw, prefix)
	if rest == "" {
		return ParsedURI{}, deltaerr.Config("malformed URI: missing bucket", nil).With("uri", raw)
	}
	u, err := url.Parse("https://" + rest)
	if err != nil {
		return ParsedURI{}, deltaerr.Config("malformed URI", err).With("uri", raw)
	}
	bucket := u.Host
	if bucket == "" {
		return ParsedURI{}, deltaerr.Config("malformed URI: missing bucket", nil).With("uri", raw)
	}
	key := normalizePath(strings.TrimPrefix(u.Path, "/"))
	if strings.Contains(key, "..") {
		return ParsedURI{}, deltaerr.Config("malformed URI: path traversal", nil).With("uri", raw)
	}
	return ParsedURI{Backend: backend, Bucket: bucket, Key: key, Raw: raw}, nil
}

// parseAzureURI handles abfs(s)://container@account.dfs.core.windows.net/path,
// storing "account.container" in Bucket for azure.go to split back apart.
func parseAzureURI(raw, prefix string) (ParsedURI, error) {
	rest := strings.TrimPrefix(raw, prefix)
	u, err := url.Parse("https://" + rest)
	if err != nil {
		return ParsedURI{}, deltaerr.Config("malformed URI", err).With("uri", raw)
	}
	if u.User == nil || u.User.Username() == "" {
		return ParsedURI{}, deltaerr.Config("malformed URI: missing container", nil).With("uri", raw)
	}
	container := u.User.Username()
	account := strings.TrimSuffix(strings.TrimSuffix(u.Hostname(), ".dfs.core.windows.net"), ".blob.core.windows.net")
	if account == "" {
		return ParsedURI{}, deltaerr.Config("malformed URI: missing account", nil).With("uri", raw)
	}
	key := normalizePath(strings.TrimPrefix(u.Path, "/"))
	if strings.Contains(key, "..") {
		return ParsedURI{}, deltaerr.Config("malformed URI: path traversal", nil).With("uri", raw)
	}
	return ParsedURI{Backend: types.BackendAzure, Bucket: account + "." + container, Key: key, Raw: raw}, nil
}

// normalizePath collapses repeated slashes and resolves ".." segments,
// returning a key with no leading slash.
func normalizePath(p string) string {
	clean := path.Clean("/" + p)
	return strings.TrimPrefix(clean, "/")
}

// normalizeLocalPath is normalizePath for filesystem paths: an absolute
// input stays absolute so a local table at /data/t is not re-resolved
// against the working directory.
func normalizeLocalPath(p string) string {
	if p == "" {
		return ""
	}
	clean := path.Clean("/" + p)
	if strings.HasPrefix(p, "/") {
		return clean
	}
	return strings.TrimPrefix(clean, "/")
}

// Join appends a relative path (e.g. "_delta_log/00000000000000000000.json")
// to the base key, rejecting traversal.
func (p ParsedURI) Join(rel string) (string, error) {
	if strings.Contains(rel, "..") {
		return "", deltaerr.Config("malformed path: path traversal", nil).With("path", rel)
	}
	if p.Key == "" {
		return normalizePath(rel), nil
	}
	return p.Key + "/" + normalizePath(rel), nil
}

func configErrUnsupportedBackend(uri string) error {
	return deltaerr.Config("unsupported backend", nil).With("uri", uri)
}
