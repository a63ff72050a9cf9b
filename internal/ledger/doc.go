// Package ledger holds the protocol controller (version gate, claim fee,
// fee treasury) and the Pebble persistence for the controller singleton and
// stream records.
//
// The Controller is a pure state machine: its operations validate first and
// mutate only on success, so a caller can apply them to in-memory copies and
// persist controller + stream + event in one batch, giving each public
// operation all-or-nothing semantics. Serialization of concurrent operations
// is the caller's job (the streams service holds a mutex across each one).
package ledger
