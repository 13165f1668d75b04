/*
Package deltalog implements deltakit's Log Replayer: it turns a
table's _delta_log commit and checkpoint files into a Snapshot — the active
file set, partition schema, and live transaction versions as of a version.

# Commit format

Each commit file is newline-delimited JSON; every line is one action
(add, remove, metaData, protocol, txn, commitInfo), dispatched by which key
is present, the same tagged-union dispatch shape as a Raft FSM applying a
Command by its Op field. Unrecognized keys are counted and
skipped, never fatal, so that forward-compatible writers don't break older
readers.

# Replay

SnapshotAt fetches the commit range since the nearest checkpoint at or
below the target version, applies checkpoint state first, then commits in
strictly ascending version order. Concurrent I/O bottoms out in
errgroup.Group with SetLimit(16); reassembly into version order is always
sequential so Add/Remove ordering within a version, and across versions,
is deterministic regardless of fetch completion order.
*/
package deltalog
