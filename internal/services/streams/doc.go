// Package streamsvc is the operation layer over the vesting engine and
// ledger store. Every public operation runs as one indivisible unit: checks
// first on in-memory copies, then a single Pebble batch committing all state
// changes, so a failed operation leaves nothing behind.
//
// Operations are serialized by a service mutex; the controller is the one
// shared mutable resource and is re-read from storage inside each operation,
// never cached across them.
package streamsvc
