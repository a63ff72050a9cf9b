package eventlog

import "encoding/binary"

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - events/m            : log metadata (last sequence)
// - events/e/{seq_be8}  : one emitted record per sequence
var (
	metaKey     = []byte("events/m")
	entryPrefix = []byte("events/e/")
)

// KeyMeta returns the log metadata key.
func KeyMeta() []byte { return metaKey }

// KeyEntry builds the entry key with a big-endian sequence for proper ordering.
func KeyEntry(seq uint64) []byte {
	k := make([]byte, 0, len(entryPrefix)+8)
	k = append(k, entryPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(k, b[:]...)
}

// SeqFromKey extracts the sequence from an entry key.
func SeqFromKey(k []byte) uint64 {
	if len(k) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(k[len(k)-8:])
}

// EntryBounds returns [lower, upper) bounds covering all entry keys.
func EntryBounds() (lo, hi []byte) {
	lo = KeyEntry(0)
	hi = append(KeyEntry(^uint64(0)), 0x00)
	return lo, hi
}
