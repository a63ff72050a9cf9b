// Package runtime wires storage, configuration, the ledger store, and the
// emitted-record log into a single handle passed to services and servers.
package runtime
