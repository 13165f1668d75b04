/*
Package types defines the core data structures shared by deltakit's three
core components: the Object Reader, the Log Replayer, and the Shard
Planner.

# Core Types

Table identity and log structure:
  - TableRef: base URI plus backend kind
  - ActionRecord: one of Metadata, Protocol, Add, Remove, Txn, CommitInfo
  - Add / Remove: file lifecycle records carried inside a CommitEntry
  - Metadata: schema and partition-column configuration

Derived, read-only state:
  - Snapshot: the reconstructed active file set at a version
  - Snapshot.Tombstones: retained Remove records, used for vacuum auditing

Shard planning:
  - PlannerConfig: the planner's inputs
  - ShardAssignment / ShardManifest: the planner's output

All types here are plain data — no method carries I/O or depends on a
particular Object Reader backend. That keeps the Log Replayer and Shard
Planner testable against in-process fixtures.
*/
package types
