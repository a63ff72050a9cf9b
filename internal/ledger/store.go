package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/rzbill/vesta/internal/eventlog"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
	"github.com/rzbill/vesta/pkg/id"
)

// ErrStreamNotFound reports a lookup for an unknown or destroyed stream.
var ErrStreamNotFound = errors.New("ledger: stream not found")

// ErrCorruptRecord reports a persisted record that failed its checksum or
// decode. Surfaced rather than skipped: ledger state must not silently
// degrade.
var ErrCorruptRecord = errors.New("ledger: corrupt record")

// Store persists the controller singleton and stream records. Values are
// JSON framed with the event log's crc32c record codec; the record header
// carries the write time in ms.
type Store struct {
	db *pebblestore.DB
}

// OpenStore opens the ledger keyspace, initializing the controller with
// initialFee on first use.
func OpenStore(db *pebblestore.DB, initialFee uint64) (*Store, error) {
	s := &Store{db: db}
	_, err := s.Controller()
	if pebblestore.IsNotFound(err) {
		ctl, cerr := NewController(initialFee)
		if cerr != nil {
			return nil, cerr
		}
		b := db.NewBatch()
		defer b.Close()
		if perr := s.PutController(b, ctl); perr != nil {
			return nil, perr
		}
		if cerr := db.CommitBatch(context.Background(), b); cerr != nil {
			return nil, cerr
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying database for batch commits.
func (s *Store) DB() *pebblestore.DB { return s.db }

func encodeRecord(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var header [8]byte
	binary.BigEndian.PutUint64(header[:], uint64(time.Now().UnixMilli()))
	return eventlog.EncodeRecord(header[:], payload), nil
}

func decodeRecord(b []byte, v any) error {
	_, payload, ok := eventlog.DecodeRecord(b)
	if !ok {
		return ErrCorruptRecord
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return nil
}

// Controller loads the controller singleton.
func (s *Store) Controller() (*Controller, error) {
	raw, err := s.db.Get(KeyController())
	if err != nil {
		return nil, err
	}
	var ctl Controller
	if err := decodeRecord(raw, &ctl); err != nil {
		return nil, err
	}
	return &ctl, nil
}

// PutController stages the controller record into the batch.
func (s *Store) PutController(b *pebble.Batch, ctl *Controller) error {
	val, err := encodeRecord(ctl)
	if err != nil {
		return err
	}
	return b.Set(KeyController(), val, nil)
}

// Stream loads one stream by ID.
func (s *Store) Stream(streamID id.ID) (*vesting.Stream, error) {
	raw, err := s.db.Get(KeyStream(streamID))
	if err != nil {
		if pebblestore.IsNotFound(err) {
			return nil, ErrStreamNotFound
		}
		return nil, err
	}
	var st vesting.Stream
	if err := decodeRecord(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// PutStream stages the stream record into the batch.
func (s *Store) PutStream(b *pebble.Batch, st *vesting.Stream) error {
	val, err := encodeRecord(st)
	if err != nil {
		return err
	}
	return b.Set(KeyStream(st.ID), val, nil)
}

// DeleteStream stages removal of the stream record into the batch.
func (s *Store) DeleteStream(b *pebble.Batch, streamID id.ID) error {
	return b.Delete(KeyStream(streamID), nil)
}

// ListStreams returns up to limit streams in creation order (limit 0 means
// no cap).
func (s *Store) ListStreams(limit int) ([]*vesting.Stream, error) {
	lo, hi := StreamBounds()
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []*vesting.Stream
	for ok := iter.First(); ok; ok = iter.Next() {
		if limit > 0 && len(out) >= limit {
			break
		}
		var st vesting.Stream
		if err := decodeRecord(iter.Value(), &st); err != nil {
			return nil, err
		}
		out = append(out, &st)
	}
	return out, nil
}
