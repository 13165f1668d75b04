package types

import (
	"net/url"
	"strings"
)

// nullPartitionValue is the sentinel substituted for a missing partition
// value when building a canonical group key. It is shared by every caller
// that groups files by partition tuple (the Shard Planner's co-location
// grouping, partition-health, and the manifest command) so that group
// identity agrees across all of them for any file with a null partition
// value.
const nullPartitionValue = "null"

// PartitionKey builds the canonical group key for a partition-value tuple:
// columns in declared order, values URL-escaped, nullPartitionValue for a
// missing value. An empty columns list yields the empty key.
func PartitionKey(columns []string, values map[string]string) string {
	if len(columns) == 0 {
		return ""
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		v, ok := values[col]
		if !ok {
			parts[i] = col + "=" + nullPartitionValue
			continue
		}
		parts[i] = col + "=" + url.QueryEscape(v)
	}
	return strings.Join(parts, "/")
}
