// Package syncer keeps the local copies of the synchronized documents and
// the server copies converged.
//
// A Syncer decides per key whether to pull, push, merge or do nothing,
// based on the timestamp recorded in local sync metadata and the timestamp
// the server reports. It runs a full resync at startup, whenever the server
// becomes reachable again and on a fixed interval, and coalesces bursts of
// local edits into one debounced push per key.
//
// Sync failures are never returned to callers: they are logged, remembered
// in Status and retried by the next scheduled cycle.
package syncer
