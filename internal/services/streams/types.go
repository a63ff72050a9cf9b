package streamsvc

import (
	"encoding/json"

	"github.com/rzbill/vesta/internal/vesting"
)

// SegmentSpec is the wire form of one curve segment.
type SegmentSpec struct {
	Amount     uint64 `json:"amount"`
	Exponent   uint8  `json:"exponent"`
	DurationMs uint64 `json:"durationMs"`
}

// CreateStreamRequest carries the inputs for stream creation.
type CreateStreamRequest struct {
	Sender      string        `json:"sender"`
	Owner       string        `json:"owner"`
	Token       string        `json:"token"`
	Deposit     uint64        `json:"deposit"`
	StartTimeMs uint64        `json:"startTimeMs"`
	CliffMs     uint64        `json:"cliffMs"`
	Segments    []SegmentSpec `json:"segments"`
}

// StreamView is the read model of a stream, including curve computations at
// the query instant.
type StreamView struct {
	ID             string            `json:"id"`
	Sender         string            `json:"sender"`
	Owner          string            `json:"owner"`
	Token          string            `json:"token"`
	Balance        uint64            `json:"balance"`
	InitialDeposit uint64            `json:"initialDeposit"`
	Claimed        uint64            `json:"claimed"`
	StartTimeMs    uint64            `json:"startTimeMs"`
	EndTimeMs      uint64            `json:"endTimeMs"`
	CliffMs        uint64            `json:"cliffMs"`
	TickSize       uint64            `json:"tickSize"`
	Segments       []vesting.Segment `json:"segments"`
	CreatedAtMs    uint64            `json:"createdAtMs"`
	Streamed       uint64            `json:"streamed"`
	Claimable      uint64            `json:"claimable"`
	AsOfMs         uint64            `json:"asOfMs"`
}

// ClaimResult reports a successful claim.
type ClaimResult struct {
	StreamID         string `json:"streamId"`
	Amount           uint64 `json:"amount"`
	RemainingBalance uint64 `json:"remainingBalance"`
	FeePaid          uint64 `json:"feePaid"`
}

// LedgerView is the read model of the controller singleton.
type LedgerView struct {
	Version  uint64 `json:"version"`
	ClaimFee uint64 `json:"claimFee"`
	Treasury uint64 `json:"treasury"`
}

// Emitted record types.
const (
	EventTypeStreamCreated     = "stream_created"
	EventTypeStreamClaimed     = "stream_claimed"
	EventTypeStreamTransferred = "stream_transferred"
	EventTypeStreamDestroyed   = "stream_destroyed"
)

// EventStreamCreated is emitted once per created stream.
type EventStreamCreated struct {
	Type        string            `json:"type"`
	StreamID    string            `json:"streamId"`
	Sender      string            `json:"sender"`
	Owner       string            `json:"owner"`
	Token       string            `json:"token"`
	Amount      uint64            `json:"amount"`
	StartTimeMs uint64            `json:"startTimeMs"`
	EndTimeMs   uint64            `json:"endTimeMs"`
	CliffMs     uint64            `json:"cliffMs"`
	Segments    []vesting.Segment `json:"segments"`
}

// EventStreamClaimed is emitted once per successful claim.
type EventStreamClaimed struct {
	Type             string `json:"type"`
	StreamID         string `json:"streamId"`
	ClaimedBy        string `json:"claimedBy"`
	Amount           uint64 `json:"amount"`
	RemainingBalance uint64 `json:"remainingBalance"`
}

// EventStreamTransferred is emitted when a stream changes owner.
type EventStreamTransferred struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// EventStreamDestroyed is emitted when a drained stream is destroyed.
type EventStreamDestroyed struct {
	Type        string `json:"type"`
	StreamID    string `json:"streamId"`
	DestroyedBy string `json:"destroyedBy"`
}

// EventView is one decoded emitted record.
type EventView struct {
	Seq     uint64          `json:"seq"`
	TsMs    uint64          `json:"tsMs"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
