package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deltakit/deltakit/pkg/cache"
	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/deltalog"
	"github.com/deltakit/deltakit/pkg/log"
	"github.com/deltakit/deltakit/pkg/objectreader"
	"github.com/deltakit/deltakit/pkg/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// openTable resolves uri's backend and returns a bound deltalog.Table. When
// cmd's --cache-dir flag is set, the Reader is wrapped in a bbolt-backed
// byte-range cache (pkg/cache) keyed by this table's URI, so repeated
// commit and checkpoint reads across invocations against the same table
// are served from disk instead of the object store. The returned Reader is
// never closed here; callers close it (and, transitively, the cache
// database) when the command is done with it.
func openTable(ctx context.Context, cmd *cobra.Command, uri string) (*deltalog.Table, objectreader.Reader, error) {
	reader, err := objectreader.New(ctx, uri)
	if err != nil {
		return nil, nil, err
	}

	cacheDir, _ := cmd.Root().PersistentFlags().GetString("cache-dir")
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			reader.Close()
			return nil, nil, deltaerr.Config("creating --cache-dir", err)
		}
		db, err := cache.Open(filepath.Join(cacheDir, cacheFileName(uri)))
		if err != nil {
			reader.Close()
			return nil, nil, err
		}
		reader = cache.Wrap(reader, db)
	}

	ref := types.TableRef{BaseURI: uri, Backend: reader.Backend()}
	uriLogger := log.WithURI(uri)
	uriLogger.Debug().Str("backend", string(reader.Backend())).Msg("opened table")
	return deltalog.Open(ref, reader), reader, nil
}

// cacheFileName derives a stable, filesystem-safe cache database name from
// a table URI, so one --cache-dir can hold entries for multiple tables
// without their byte ranges colliding.
func cacheFileName(uri string) string {
	sum := sha256.Sum256([]byte(uri))
	return hex.EncodeToString(sum[:]) + ".db"
}

// versionFlag reads --version as an optional target: nil means latest.
func versionFlag(cmd *cobra.Command) (*int64, error) {
	if !cmd.Flags().Changed("version") {
		return nil, nil
	}
	v, err := cmd.Flags().GetInt64("version")
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Root().PersistentFlags().GetBool("json")
	return v
}

// printJSON writes v as indented JSON to stdout, or to --out atomically via
// a uuid-suffixed temp file renamed into place, if out is non-empty.
func printJSON(v any, out string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return deltaerr.InternalErr("failed to encode JSON output", err)
	}
	data = append(data, '\n')
	if out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return writeFileAtomic(out, data)
}

// writeFileAtomic writes data to a uuid-suffixed temp file in the same
// directory as path, then renames it into place, so a killed process never
// leaves a partially written output file.
func writeFileAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return deltaerr.IO(deltaerr.Malformed, "failed to write output file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return deltaerr.IO(deltaerr.Malformed, "failed to finalize output file", err)
	}
	return nil
}

// writeLines writes one path per line to stdout, or atomically to out.
func writeLines(lines []string, out string) error {
	var buf []byte
	for _, l := range lines {
		buf = append(buf, l...)
		buf = append(buf, '\n')
	}
	if out == "" {
		_, err := os.Stdout.Write(buf)
		return err
	}
	return writeFileAtomic(out, buf)
}
