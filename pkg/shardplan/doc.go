/*
Package shardplan implements deltakit's Shard Planner: given a
Snapshot and a PlannerConfig, it produces a deterministic ShardManifest
assigning every active file to one of K shards.

# Algorithm

Three stages, each documented on the function that implements it:

  - formGroups groups active files by their co_locate_by tuple; every file
    in a group lands on the same shard.
  - preassign computes each group's preferred shard as the mode of the
    prior shards of its files in previous_assignment (ties broken by lowest
    index); the group's sticky key does not enter this choice.
  - balance orders groups by descending load and places each on the
    lowest-load feasible shard, preferring its preferred shard on ties.

Group load computation (summing bytes or imputing rows) runs concurrently
across groups via errgroup; the balancing pass itself is strictly
sequential, since shard load state cannot be computed two groups at a
time without breaking determinism.
*/
package shardplan
