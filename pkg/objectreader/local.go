package objectreader

import (
	"context"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/types"
)

// localReader implements Reader over a directory on the local filesystem.
// It never retries: local I/O errors are not transient.
type localReader struct {
	root string
}

func newLocalReader(parsed ParsedURI) (Reader, error) {
	root := parsed.Key
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, deltaerr.Config("cannot resolve local table path", err).With("path", root)
	}
	return &localReader{root: abs}, nil
}

func (r *localReader) full(rel string) (string, error) {
	if strings.Contains(rel, "..") {
		return "", deltaerr.Config("malformed path: path traversal", nil).With("path", rel)
	}
	return filepath.Join(r.root, rel), nil
}

func (r *localReader) ListPrefix(ctx context.Context, prefix string) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		base, err := r.full(prefix)
		if err != nil {
			yield(ObjectInfo{}, err)
			return
		}
		// "_delta_log/" names a directory to list; "_delta_log/000" names a
		// filename prefix within its parent.
		dir := base
		if !strings.HasSuffix(prefix, "/") {
			dir = filepath.Dir(base)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			yield(ObjectInfo{}, deltaerr.IO(deltaerr.NotFound, "listing local directory", err).With("dir", dir))
			return
		}
		for _, e := range entries {
			if ctx.Err() != nil {
				yield(ObjectInfo{}, deltaerr.Cancel())
				return
			}
			if e.IsDir() {
				continue
			}
			rel, err := filepath.Rel(r.root, filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if !strings.HasPrefix(rel, prefix) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				if !yield(ObjectInfo{}, deltaerr.IO(deltaerr.NotFound, "stat local file", err).With("path", rel)) {
					return
				}
				continue
			}
			if !yield(ObjectInfo{Path: rel, Size: info.Size()}, nil) {
				return
			}
		}
	}
}

func (r *localReader) GetAll(ctx context.Context, path string) ([]byte, error) {
	full, err := r.full(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		return nil, localIOErr(path, err)
	}
	return b, nil
}

func (r *localReader) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	full, err := r.full(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, localIOErr(path, err)
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, localIOErr(path, err)
	}
	return buf[:n], nil
}

func (r *localReader) Head(ctx context.Context, path string) (int64, error) {
	full, err := r.full(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, localIOErr(path, err)
	}
	return info.Size(), nil
}

func (r *localReader) Backend() types.BackendKind { return types.BackendLocal }

func (r *localReader) Close() error { return nil }

func localIOErr(path string, err error) error {
	if os.IsNotExist(err) {
		return deltaerr.IO(deltaerr.NotFound, "local object not found", err).With("path", path)
	}
	if os.IsPermission(err) {
		return deltaerr.IO(deltaerr.Forbidden, "local object forbidden", err).With("path", path)
	}
	return deltaerr.IO(deltaerr.Malformed, "local object read failed", err).With("path", path)
}
