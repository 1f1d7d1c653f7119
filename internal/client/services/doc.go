// Package services holds the client-side operations on the two synchronized
// documents: profile management and saved days.
//
// Every mutation reads the current document from the local store, normalizes
// it, applies the change, stamps a strictly increasing timestamp, prunes
// tombstones and writes the document together with its sync metadata in one
// transaction. A debounced push is then scheduled for the key.
package services
