// Package log wraps zerolog with deltakit's component and context
// loggers. Initialize once with Init, then derive child loggers with
// WithComponent/WithURI/WithVersion/WithShard so every log line from the
// Object Reader, Log Replayer, or Shard Planner carries the table, version,
// or shard it concerns.
package log
