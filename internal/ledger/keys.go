package ledger

import "github.com/rzbill/vesta/pkg/id"

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - ledger/m            : controller singleton record
// - stream/{id16}       : one record per stream, keyed by its sortable ID
var (
	controllerKey = []byte("ledger/m")
	streamPrefix  = []byte("stream/")
)

// KeyController returns the controller singleton key.
func KeyController() []byte { return controllerKey }

// KeyStream builds the record key for a stream. IDs embed a millisecond
// timestamp, so a prefix scan yields streams in creation order.
func KeyStream(streamID id.ID) []byte {
	k := make([]byte, 0, len(streamPrefix)+id.Size)
	k = append(k, streamPrefix...)
	return append(k, streamID[:]...)
}

// StreamBounds returns [lower, upper) bounds covering all stream keys.
func StreamBounds() (lo, hi []byte) {
	lo = append([]byte{}, streamPrefix...)
	hi = append(append([]byte{}, streamPrefix...), 0xFF)
	return lo, hi
}
