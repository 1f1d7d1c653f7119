// Package cli provides the interactive drawer client.
//
// It wires configuration, the local SQLite store, the remote key-value
// client and the syncer, then runs a REPL over the profile and day
// services. Synchronization runs in the background: edits are pushed after
// a short debounce, a full resync happens at startup, on reconnect and on a
// fixed interval.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
