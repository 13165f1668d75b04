package deltalog

import (
	"bytes"
	"fmt"

	goparquet "github.com/fraugster/parquet-go"
	"github.com/fraugster/parquet-go/floor"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/types"
)

// checkpointRow mirrors one row of a Delta checkpoint parquet file. Exactly
// one of the pointer fields is non-nil per row, matching the single-action
// encoding used by the JSON commit log. Columns outside this projection
// (protocol's reader/writer features, add's "tags", remove's
// "extendedFileMetadata") are intentionally left unread.
type checkpointRow struct {
	Txn      *checkpointTxn      `parquet:"txn"`
	Add      *checkpointAdd      `parquet:"add"`
	Remove   *checkpointRemove   `parquet:"remove"`
	MetaData *checkpointMetadata `parquet:"metaData"`
	Protocol *checkpointProtocol `parquet:"protocol"`
}

type checkpointAdd struct {
	Path             string            `parquet:"path"`
	PartitionValues  map[string]string `parquet:"partitionValues"`
	Size             int64             `parquet:"size"`
	ModificationTime int64             `parquet:"modificationTime"`
	DataChange       bool              `parquet:"dataChange"`
	Stats            *string           `parquet:"stats"`
}

type checkpointRemove struct {
	Path              string `parquet:"path"`
	DeletionTimestamp int64  `parquet:"deletionTimestamp"`
	DataChange        bool   `parquet:"dataChange"`
	Size              *int64 `parquet:"size"`
}

type checkpointMetadata struct {
	ID               string            `parquet:"id"`
	Name             *string           `parquet:"name"`
	SchemaString     string            `parquet:"schemaString"`
	PartitionColumns []string          `parquet:"partitionColumns"`
	Configuration    map[string]string `parquet:"configuration"`
}

type checkpointProtocol struct {
	MinReaderVersion int `parquet:"minReaderVersion"`
	MinWriterVersion int `parquet:"minWriterVersion"`
}

type checkpointTxn struct {
	AppID   string `parquet:"appId"`
	Version int64  `parquet:"version"`
}

// parseCheckpoint decodes a checkpoint parquet file's projected columns
// into a types.Checkpoint.
func parseCheckpoint(version types.Version, data []byte) (*types.Checkpoint, error) {
	fr, err := goparquet.NewFileReader(bytes.NewReader(data),
		"add", "remove", "metaData", "protocol", "txn")
	if err != nil {
		return nil, deltaerr.Corrupt(int64(version), "opening checkpoint parquet", err)
	}
	r := floor.NewReader(fr)
	defer r.Close()

	cp := &types.Checkpoint{Version: version}
	for r.Next() {
		var row checkpointRow
		if err := r.Scan(&row); err != nil {
			return nil, deltaerr.Corrupt(int64(version), "scanning checkpoint row", err)
		}
		switch {
		case row.Add != nil:
			cp.Adds = append(cp.Adds, toTypesAdd(row.Add))
		case row.MetaData != nil:
			cp.Metadata = toTypesMetadata(row.MetaData)
		case row.Protocol != nil:
			cp.Protocol = &types.Protocol{
				MinReaderVersion: row.Protocol.MinReaderVersion,
				MinWriterVersion: row.Protocol.MinWriterVersion,
			}
		case row.Remove != nil:
			// Checkpoints may retain recent tombstones; the active-set
			// replay never needs them so they are not projected further.
		}
	}
	if err := r.Err(); err != nil {
		return nil, deltaerr.Corrupt(int64(version), "reading checkpoint parquet", err)
	}
	return cp, nil
}

func toTypesAdd(a *checkpointAdd) *types.Add {
	out := &types.Add{
		Path:             a.Path,
		PartitionValues:  a.PartitionValues,
		Size:             a.Size,
		ModificationTime: a.ModificationTime,
		DataChange:       a.DataChange,
	}
	if a.Stats != nil {
		out.StatsRaw = *a.Stats
		if stats, err := decodeStats(*a.Stats); err == nil {
			out.Stats = stats
		}
	}
	return out
}

func toTypesMetadata(m *checkpointMetadata) *types.Metadata {
	name := ""
	if m.Name != nil {
		name = *m.Name
	}
	return &types.Metadata{
		ID:               m.ID,
		Name:             name,
		SchemaString:     m.SchemaString,
		PartitionColumns: m.PartitionColumns,
		Configuration:    m.Configuration,
	}
}

// checkpointFilePath returns the parquet object path for a single-part
// checkpoint at version.
func checkpointFilePath(version types.Version) string {
	return fmt.Sprintf("_delta_log/%020d.checkpoint.parquet", version)
}
