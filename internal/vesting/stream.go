package vesting

import (
	"fmt"

	"github.com/rzbill/vesta/pkg/id"
)

// Stream is a single vesting position: a deposit unlocking over time per its
// segment list. Balance is the only mutable field and only ever decreases,
// via claims; the rest is fixed at creation.
//
// Invariants held at all times until destruction:
//
//	InitialDeposit == sum(segment.Amount)
//	EndTime - StartTime == sum(segment.Duration)
//	Cliff < EndTime - StartTime
//	0 < Balance <= InitialDeposit
type Stream struct {
	ID      id.ID  `json:"id"`
	Sender  string `json:"sender"`
	Owner   string `json:"owner"`
	Token   string `json:"token"`
	Balance uint64 `json:"balance"`
	// InitialDeposit equals the sum of all segment amounts.
	InitialDeposit uint64 `json:"initialDeposit"`
	// StartTime and EndTime are Unix ms; EndTime = StartTime + total duration.
	StartTime uint64 `json:"startTimeMs"`
	EndTime   uint64 `json:"endTimeMs"`
	// Cliff is an offset from StartTime before which nothing is claimable.
	Cliff    uint64    `json:"cliffMs"`
	Segments []Segment `json:"segments"`
	// TickSize is the calibrated time rescale, fixed at creation.
	TickSize  uint64 `json:"tickSize"`
	CreatedAt uint64 `json:"createdAtMs"`
}

// CreateParams carries the caller-supplied inputs for NewStream.
type CreateParams struct {
	ID        id.ID
	Sender    string
	Owner     string
	Token     string
	Deposit   uint64
	StartTime uint64
	Cliff     uint64
	Segments  []Segment
}

// NewStream validates params against now (Unix ms) and assembles a Stream
// with the full deposit escrowed as its opening balance.
func NewStream(p CreateParams, now uint64) (*Stream, error) {
	if p.Deposit == 0 {
		return nil, ErrInsufficientDeposit
	}
	if p.StartTime < now {
		return nil, fmt.Errorf("%w: start %d before now %d", ErrInvalidStartTime, p.StartTime, now)
	}
	totalDuration, err := Validate(p.Deposit, p.Segments)
	if err != nil {
		return nil, err
	}
	endTime := p.StartTime + totalDuration
	if endTime <= p.StartTime {
		// Degenerate or wrapped around uint64.
		return nil, fmt.Errorf("%w: degenerate end time", ErrInvalidSegmentSet)
	}
	// Compared against the total duration rather than as start+cliff vs end:
	// same condition, but immune to the sum wrapping around uint64.
	if p.Cliff >= totalDuration {
		return nil, fmt.Errorf("%w: cliff %dms, duration %dms", ErrCliffTooLarge, p.Cliff, totalDuration)
	}
	return &Stream{
		ID:             p.ID,
		Sender:         p.Sender,
		Owner:          p.Owner,
		Token:          p.Token,
		Balance:        p.Deposit,
		InitialDeposit: p.Deposit,
		StartTime:      p.StartTime,
		EndTime:        endTime,
		Cliff:          p.Cliff,
		Segments:       p.Segments,
		TickSize:       calibrateTick(maxDuration(p.Segments)),
		CreatedAt:      now,
	}, nil
}

// Claimed returns how much has been claimed so far. Deriving it from the
// balance (rather than tracking a separate counter) keeps the conservation
// invariant self-correcting across repeated claims.
func (s *Stream) Claimed() uint64 { return s.InitialDeposit - s.Balance }

// StreamedAmount computes the cumulative amount unlocked by the curve at
// instant now, independent of claims. It is non-decreasing in now and
// bounded above by the initial deposit.
func (s *Stream) StreamedAmount(now uint64) (uint64, error) {
	if now < s.StartTime {
		return 0, nil
	}
	if now < s.StartTime+s.Cliff {
		return 0, nil
	}
	if now > s.EndTime {
		return s.InitialDeposit, nil
	}
	var sum uint64
	segmentStart := s.StartTime
	for _, seg := range s.Segments {
		if segmentStart > now {
			break
		}
		v, err := evalSegment(segmentStart, seg, s.TickSize, now)
		if err != nil {
			return 0, err
		}
		sum += v
		segmentStart += seg.Duration
	}
	// Terminal clamp: per-segment tick rounding can only lose fractions, but
	// the cap guarantees the bound regardless.
	if sum > s.InitialDeposit {
		sum = s.InitialDeposit
	}
	return sum, nil
}

// ClaimableAmount computes how much the owner could claim at instant now:
// the streamed amount minus what was already claimed. After the stream ends
// everything remaining is claimable. For a fixed claim history the result is
// non-decreasing in now.
func (s *Stream) ClaimableAmount(now uint64) (uint64, error) {
	if now < s.StartTime || now < s.StartTime+s.Cliff {
		return 0, nil
	}
	if now > s.EndTime {
		return s.Balance, nil
	}
	streamed, err := s.StreamedAmount(now)
	if err != nil {
		return 0, err
	}
	claimed := s.Claimed()
	if streamed <= claimed {
		return 0, nil
	}
	return streamed - claimed, nil
}
