package eventlog

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
)

// AppendRecord represents a single appendable record.
type AppendRecord struct {
	Header  []byte
	Payload []byte
}

// Log provides append-only operations over the emitted-record keyspace.
type Log struct {
	db *pebblestore.DB

	mu      sync.Mutex
	lastSeq uint64
}

// OpenLog initializes a Log and loads the last sequence from metadata (if any).
func OpenLog(db *pebblestore.DB) (*Log, error) {
	l := &Log{db: db}
	meta, err := db.Get(KeyMeta())
	if err == nil && len(meta) >= 8 {
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
	} else if err != nil && !pebblestore.IsNotFound(err) {
		return nil, err
	}
	return l, nil
}

// Append appends the provided records as a single atomic batch and returns
// the assigned sequence numbers.
func (l *Log) Append(ctx context.Context, recs []AppendRecord) ([]uint64, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewBatch()
	defer b.Close()

	seqs := make([]uint64, len(recs))
	for i, r := range recs {
		seq := l.lastSeq + uint64(i) + 1
		if err := b.Set(KeyEntry(seq), EncodeRecord(r.Header, r.Payload), nil); err != nil {
			return nil, err
		}
		seqs[i] = seq
	}

	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seqs[len(seqs)-1])
	if err := b.Set(KeyMeta(), meta[:], nil); err != nil {
		return nil, err
	}

	if err := l.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	l.lastSeq = seqs[len(seqs)-1]
	return seqs, nil
}

// LastSeq returns the sequence of the most recent record, 0 when empty.
func (l *Log) LastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeq
}

// Item is one decoded record returned by Read.
type Item struct {
	Seq     uint64
	Header  []byte
	Payload []byte
}

// ReadOptions controls a Read scan.
type ReadOptions struct {
	// Start is the first sequence to return (inclusive). Zero begins at the
	// first entry.
	Start uint64
	// Limit caps the number of returned items; 0 means no cap.
	Limit int
}

// Read returns up to Limit items starting at Start, in sequence order.
// Records failing checksum validation are skipped.
func (l *Log) Read(opts ReadOptions) ([]Item, error) {
	lo, hi := EntryBounds()
	if opts.Start > 0 {
		lo = KeyEntry(opts.Start)
	}
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var items []Item
	for ok := iter.First(); ok; ok = iter.Next() {
		if opts.Limit > 0 && len(items) >= opts.Limit {
			break
		}
		header, payload, ok2 := DecodeRecord(iter.Value())
		if !ok2 {
			continue
		}
		items = append(items, Item{Seq: SeqFromKey(iter.Key()), Header: header, Payload: payload})
	}
	return items, nil
}
