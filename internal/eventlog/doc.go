// Package eventlog provides the append-only log of records emitted by ledger
// operations (stream created/claimed/destroyed), persisted in Pebble.
//
// Records are framed as varint header length | header | payload | crc32c so
// corruption is detected on read. Entry keys carry a big-endian sequence
// number, making a forward iterator yield records in emission order. The log
// is a feed for external observers; it is not consulted by the accounting
// engine itself.
package eventlog
