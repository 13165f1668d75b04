package deltalog

import (
	"bufio"
	"bytes"

	jsoniter "github.com/json-iterator/go"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/log"
	"github.com/deltakit/deltakit/pkg/metrics"
	"github.com/deltakit/deltakit/pkg/types"
)

var fastJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// decodeStats parses the second-pass JSON-encoded stats string embedded in
// an Add action's "stats" field.
func decodeStats(raw string) (*types.Stats, error) {
	if raw == "" {
		return nil, nil
	}
	var s types.Stats
	if err := fastJSON.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// decodeCommit parses a newline-delimited JSON commit file into a
// CommitEntry, one action per line. Unrecognized action kinds are counted
// and skipped rather than treated as fatal, so replay keeps working
// against logs written by newer producers; a commit containing any logs
// one warning.
func decodeCommit(version types.Version, data []byte) (*types.CommitEntry, error) {
	entry := &types.CommitEntry{Version: version}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	unknown := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec types.ActionRecord
		if err := fastJSON.Unmarshal(line, &rec); err != nil {
			return nil, deltaerr.Corrupt(int64(version), "decoding commit action", err).With("line", lineNo)
		}
		if rec.Add != nil && rec.Add.StatsRaw != "" {
			if stats, err := decodeStats(rec.Add.StatsRaw); err == nil {
				rec.Add.Stats = stats
			}
		}
		if rec.Remove != nil {
			rec.Remove.Version = version
		}
		if rec.Kind() == "" {
			metrics.UnknownActionsTotal.Inc()
			unknown++
			continue
		}
		metrics.ActionsAppliedTotal.WithLabelValues(rec.Kind()).Inc()
		entry.Actions = append(entry.Actions, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, deltaerr.Corrupt(int64(version), "scanning commit file", err)
	}
	if unknown > 0 {
		logger := log.WithVersion(int64(version))
		logger.Warn().Int("unknown_actions", unknown).Msg("skipped unrecognized action kinds in commit")
	}
	return entry, nil
}
