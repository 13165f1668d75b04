// Package metrics defines deltakit's Prometheus instrumentation: Object
// Reader request/retry counters, Log Replayer replay duration and action
// counts, and Shard Planner duration and imbalance histograms. Timer is a
// small helper for observing elapsed time into a histogram.
//
//	timer := metrics.NewTimer()
//	defer timer.ObserveDuration(metrics.ReplayDuration)
package metrics
