package streamsvc

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"github.com/rzbill/vesta/internal/eventlog"
	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/runtime"
	"github.com/rzbill/vesta/internal/vesting"
	"github.com/rzbill/vesta/pkg/id"
	logpkg "github.com/rzbill/vesta/pkg/log"
)

// Service exposes the public vesting operations: create, claim, destroy,
// ledger administration, and read models. See the package comment for the
// atomicity and serialization contract.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
	ids    *id.Generator

	// mu serializes all mutating operations against the controller
	// singleton and stream records.
	mu sync.Mutex

	// nowMs supplies the engine clock in Unix ms. Overridable in tests.
	nowMs func() uint64
}

// New returns a Service using a default logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, nil)
}

// NewWithLogger constructs the service with an injected logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("streams"))
	}
	return &Service{
		rt:     rt,
		logger: logger,
		ids:    id.NewGenerator(),
		nowMs:  func() uint64 { return uint64(time.Now().UnixMilli()) },
	}
}

// CreateStream validates the request, escrows the deposit, persists the new
// stream, and emits a stream_created record.
func (s *Service) CreateStream(ctx context.Context, req CreateStreamRequest) (*StreamView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowMs()
	store := s.rt.Ledger()
	ctl, err := store.Controller()
	if err != nil {
		return nil, err
	}

	// Segment construction is a validation step of its own; stream assembly
	// re-checks the same bounds.
	segments := make([]vesting.Segment, 0, len(req.Segments))
	for _, spec := range req.Segments {
		seg, err := vesting.NewSegment(spec.Amount, spec.Exponent, spec.DurationMs)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	stream, err := ctl.CreateStream(vesting.CreateParams{
		ID:        s.ids.Next(),
		Sender:    req.Sender,
		Owner:     req.Owner,
		Token:     req.Token,
		Deposit:   req.Deposit,
		StartTime: req.StartTimeMs,
		Cliff:     req.CliffMs,
		Segments:  segments,
	}, now)
	if err != nil {
		return nil, err
	}

	b := store.DB().NewBatch()
	defer b.Close()
	if err := store.PutStream(b, stream); err != nil {
		return nil, err
	}
	if err := store.DB().CommitBatch(ctx, b); err != nil {
		return nil, err
	}

	s.emit(ctx, now, EventStreamCreated{
		Type:        EventTypeStreamCreated,
		StreamID:    stream.ID.String(),
		Sender:      stream.Sender,
		Owner:       stream.Owner,
		Token:       stream.Token,
		Amount:      stream.InitialDeposit,
		StartTimeMs: stream.StartTime,
		EndTimeMs:   stream.EndTime,
		CliffMs:     stream.Cliff,
		Segments:    stream.Segments,
	})
	metricStreamsCreated.Inc()
	s.logger.Info("stream created",
		logpkg.Str("id", stream.ID.String()),
		logpkg.Str("token", stream.Token),
		logpkg.Uint64("deposit", stream.InitialDeposit),
		logpkg.Int("segments", len(stream.Segments)),
	)
	return s.view(stream, now)
}

// Claim pays the claim fee into the treasury and transfers everything
// currently claimable to the stream owner. Fee transfer and balance
// decrement commit in one batch with the validity checks done up front.
func (s *Service) Claim(ctx context.Context, streamID string, feePayment uint64, claimedBy string) (*ClaimResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sid, err := id.Parse(streamID)
	if err != nil {
		return nil, err
	}
	now := s.nowMs()
	store := s.rt.Ledger()
	ctl, err := store.Controller()
	if err != nil {
		return nil, err
	}
	stream, err := store.Stream(sid)
	if err != nil {
		return nil, err
	}

	amount, err := ctl.Claim(stream, feePayment, now)
	if err != nil {
		return nil, err
	}

	b := store.DB().NewBatch()
	defer b.Close()
	if err := store.PutStream(b, stream); err != nil {
		return nil, err
	}
	if err := store.PutController(b, ctl); err != nil {
		return nil, err
	}
	if err := store.DB().CommitBatch(ctx, b); err != nil {
		return nil, err
	}

	s.emit(ctx, now, EventStreamClaimed{
		Type:             EventTypeStreamClaimed,
		StreamID:         streamID,
		ClaimedBy:        claimedBy,
		Amount:           amount,
		RemainingBalance: stream.Balance,
	})
	metricClaims.Inc()
	metricClaimedAmount.Add(float64(amount))
	metricFeesCollected.Add(float64(feePayment))
	s.logger.Info("stream claimed",
		logpkg.Str("id", streamID),
		logpkg.Uint64("amount", amount),
		logpkg.Uint64("remaining", stream.Balance),
	)
	return &ClaimResult{
		StreamID:         streamID,
		Amount:           amount,
		RemainingBalance: stream.Balance,
		FeePaid:          feePayment,
	}, nil
}

// TransferStream reassigns the stream's owner. Escrowed funds and claim
// history are unaffected.
func (s *Service) TransferStream(ctx context.Context, streamID string, newOwner string) (*StreamView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sid, err := id.Parse(streamID)
	if err != nil {
		return nil, err
	}
	now := s.nowMs()
	store := s.rt.Ledger()
	ctl, err := store.Controller()
	if err != nil {
		return nil, err
	}
	stream, err := store.Stream(sid)
	if err != nil {
		return nil, err
	}
	prevOwner := stream.Owner
	if err := ctl.Transfer(stream, newOwner); err != nil {
		return nil, err
	}

	b := store.DB().NewBatch()
	defer b.Close()
	if err := store.PutStream(b, stream); err != nil {
		return nil, err
	}
	if err := store.DB().CommitBatch(ctx, b); err != nil {
		return nil, err
	}

	s.emit(ctx, now, EventStreamTransferred{
		Type:     EventTypeStreamTransferred,
		StreamID: streamID,
		From:     prevOwner,
		To:       newOwner,
	})
	s.logger.Info("stream transferred",
		logpkg.Str("id", streamID),
		logpkg.Str("from", prevOwner),
		logpkg.Str("to", newOwner),
	)
	return s.view(stream, now)
}

// Destroy deallocates a fully claimed stream. Irreversible; the stream is no
// longer queryable afterwards.
func (s *Service) Destroy(ctx context.Context, streamID string, destroyedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sid, err := id.Parse(streamID)
	if err != nil {
		return err
	}
	now := s.nowMs()
	store := s.rt.Ledger()
	ctl, err := store.Controller()
	if err != nil {
		return err
	}
	stream, err := store.Stream(sid)
	if err != nil {
		return err
	}
	if err := ctl.Destroy(stream); err != nil {
		return err
	}

	b := store.DB().NewBatch()
	defer b.Close()
	if err := store.DeleteStream(b, sid); err != nil {
		return err
	}
	if err := store.DB().CommitBatch(ctx, b); err != nil {
		return err
	}

	s.emit(ctx, now, EventStreamDestroyed{
		Type:        EventTypeStreamDestroyed,
		StreamID:    streamID,
		DestroyedBy: destroyedBy,
	})
	metricStreamsDestroyed.Inc()
	s.logger.Info("stream destroyed", logpkg.Str("id", streamID))
	return nil
}

// GetStream returns the read model of one stream at the current instant.
func (s *Service) GetStream(ctx context.Context, streamID string) (*StreamView, error) {
	sid, err := id.Parse(streamID)
	if err != nil {
		return nil, err
	}
	stream, err := s.rt.Ledger().Stream(sid)
	if err != nil {
		return nil, err
	}
	return s.view(stream, s.nowMs())
}

// ListStreams returns stream read models in creation order, optionally
// narrowed by a CEL filter expression. Limit 0 applies the configured
// default.
func (s *Service) ListStreams(ctx context.Context, filterExpr string, limit int) ([]*StreamView, error) {
	filter, err := newStreamFilter(filterExpr)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.rt.Config().DefaultListLimit
	}
	streams, err := s.rt.Ledger().ListStreams(0)
	if err != nil {
		return nil, err
	}
	now := s.nowMs()
	out := make([]*StreamView, 0, min(limit, len(streams)))
	for _, stream := range streams {
		if len(out) >= limit {
			break
		}
		if !filter.evalStream(stream, now) {
			continue
		}
		v, err := s.view(stream, now)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Ledger returns the controller read model.
func (s *Service) Ledger(ctx context.Context) (*LedgerView, error) {
	ctl, err := s.rt.Ledger().Controller()
	if err != nil {
		return nil, err
	}
	return &LedgerView{Version: ctl.Version, ClaimFee: ctl.ClaimFee, Treasury: ctl.Treasury}, nil
}

// SetClaimFee updates the fee charged on subsequent claims.
func (s *Service) SetClaimFee(ctx context.Context, fee uint64) (*LedgerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctl, err := s.persistController(ctx, func(ctl *ledger.Controller) error {
		return ctl.SetClaimFee(fee)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("claim fee updated", logpkg.Uint64("fee", fee))
	return &LedgerView{Version: ctl.Version, ClaimFee: ctl.ClaimFee, Treasury: ctl.Treasury}, nil
}

// WithdrawTreasury drains the treasury and returns the drained amount.
func (s *Service) WithdrawTreasury(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var amount uint64
	_, err := s.persistController(ctx, func(ctl *ledger.Controller) error {
		amount = ctl.WithdrawTreasury()
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("treasury withdrawn", logpkg.Uint64("amount", amount))
	return amount, nil
}

// MigrateVersion sets the controller version, re-enabling operations after
// an upgrade.
func (s *Service) MigrateVersion(ctx context.Context, version uint64) (*LedgerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctl, err := s.persistController(ctx, func(ctl *ledger.Controller) error {
		ctl.MigrateVersion(version)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("protocol version migrated", logpkg.Uint64("version", version))
	return &LedgerView{Version: ctl.Version, ClaimFee: ctl.ClaimFee, Treasury: ctl.Treasury}, nil
}

// Events returns decoded emitted records from start (inclusive), optionally
// narrowed by a CEL filter expression.
func (s *Service) Events(ctx context.Context, start uint64, limit int, filterExpr string) ([]EventView, error) {
	filter, err := newEventFilter(filterExpr)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.rt.Config().DefaultListLimit
	}
	items, err := s.rt.Events().Read(eventlog.ReadOptions{Start: start})
	if err != nil {
		return nil, err
	}
	out := make([]EventView, 0, min(limit, len(items)))
	for _, it := range items {
		if len(out) >= limit {
			break
		}
		var ts uint64
		if len(it.Header) >= 8 {
			ts = binary.BigEndian.Uint64(it.Header[:8])
		}
		var envelope struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(it.Payload, &envelope)
		if !filter.evalEvent(it.Seq, ts, envelope.Type, it.Payload) {
			continue
		}
		out = append(out, EventView{Seq: it.Seq, TsMs: ts, Type: envelope.Type, Payload: it.Payload})
	}
	return out, nil
}

// persistController loads the controller, applies mutate, and commits the
// updated record. Caller holds s.mu.
func (s *Service) persistController(ctx context.Context, mutate func(*ledger.Controller) error) (*ledger.Controller, error) {
	store := s.rt.Ledger()
	ctl, err := store.Controller()
	if err != nil {
		return nil, err
	}
	if err := mutate(ctl); err != nil {
		return nil, err
	}
	b := store.DB().NewBatch()
	defer b.Close()
	if err := store.PutController(b, ctl); err != nil {
		return nil, err
	}
	if err := store.DB().CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	return ctl, nil
}

// emit appends one record to the event log with an 8-byte big-endian ms
// timestamp header. Emission failures are logged, not surfaced: the ledger
// state already committed and observers catch up from storage.
func (s *Service) emit(ctx context.Context, nowMs uint64, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("encode event", logpkg.Err(err))
		return
	}
	var header [8]byte
	binary.BigEndian.PutUint64(header[:], nowMs)
	if _, err := s.rt.Events().Append(ctx, []eventlog.AppendRecord{{Header: header[:], Payload: body}}); err != nil {
		s.logger.Error("append event", logpkg.Err(err))
	}
}

func (s *Service) view(stream *vesting.Stream, now uint64) (*StreamView, error) {
	streamed, err := stream.StreamedAmount(now)
	if err != nil {
		return nil, err
	}
	claimable, err := stream.ClaimableAmount(now)
	if err != nil {
		return nil, err
	}
	return &StreamView{
		ID:             stream.ID.String(),
		Sender:         stream.Sender,
		Owner:          stream.Owner,
		Token:          stream.Token,
		Balance:        stream.Balance,
		InitialDeposit: stream.InitialDeposit,
		Claimed:        stream.Claimed(),
		StartTimeMs:    stream.StartTime,
		EndTimeMs:      stream.EndTime,
		CliffMs:        stream.Cliff,
		TickSize:       stream.TickSize,
		Segments:       stream.Segments,
		CreatedAtMs:    stream.CreatedAt,
		Streamed:       streamed,
		Claimable:      claimable,
		AsOfMs:         now,
	}, nil
}
