package vesting

import (
	"fmt"
	"math/bits"
)

// Protocol constants. These are part of the externally observable contract.
const (
	// MaxExponent bounds the easing exponent of a segment.
	MaxExponent = 10
	// MaxSegments bounds the number of segments per stream.
	MaxSegments = 500
	// MaxSegmentDuration is the longest allowed segment, ~6 years in ms.
	MaxSegmentDuration uint64 = 189_345_600_000
	// MaxDurationTicks bounds the tick count of the longest segment in a
	// stream. Chosen so a tick count raised to MaxExponent, multiplied by a
	// full-range uint64 amount, stays within big-integer intermediates that
	// narrow safely back to uint64 after division.
	MaxDurationTicks uint64 = 525_600
)

// Segment is one immutable piece of a vesting curve. Its amount unlocks from
// 0 to Amount as elapsed time within the segment goes from 0 to Duration,
// following amount * (elapsed/duration)^Exponent.
type Segment struct {
	Amount   uint64 `json:"amount"`
	Exponent uint8  `json:"exponent"`
	Duration uint64 `json:"durationMs"`
}

// NewSegment validates and constructs a Segment. Duration is in milliseconds
// and must be in (0, MaxSegmentDuration]; Exponent must be at most
// MaxExponent.
func NewSegment(amount uint64, exponent uint8, durationMs uint64) (Segment, error) {
	if exponent > MaxExponent {
		return Segment{}, fmt.Errorf("%w: %d > %d", ErrInvalidExponent, exponent, MaxExponent)
	}
	if durationMs == 0 {
		return Segment{}, fmt.Errorf("%w: zero duration", ErrInvalidSegmentSet)
	}
	if durationMs > MaxSegmentDuration {
		return Segment{}, fmt.Errorf("%w: duration %d exceeds max %d", ErrInvalidSegmentSet, durationMs, MaxSegmentDuration)
	}
	return Segment{Amount: amount, Exponent: exponent, Duration: durationMs}, nil
}

// Validate checks a proposed segment list against a deposit and returns the
// total duration of the curve. Segment bounds are re-checked here even though
// NewSegment enforces them, because segment construction and stream assembly
// are independent steps.
//
// Ordering is significant: segment i's window starts at the cumulative
// duration of segments 0..i-1. Nothing relates exponents across segments;
// adjacent segments with different exponents compose curves with a slope
// discontinuity at the boundary, which is intentional.
func Validate(deposit uint64, segments []Segment) (totalDuration uint64, err error) {
	if len(segments) == 0 {
		return 0, fmt.Errorf("%w: no segments", ErrInvalidSegmentSet)
	}
	if len(segments) > MaxSegments {
		return 0, fmt.Errorf("%w: %d segments exceeds max %d", ErrInvalidSegmentSet, len(segments), MaxSegments)
	}
	var amountSum uint64
	for i, seg := range segments {
		if seg.Exponent > MaxExponent {
			return 0, fmt.Errorf("%w: segment %d: %d > %d", ErrInvalidExponent, i, seg.Exponent, MaxExponent)
		}
		if seg.Duration == 0 {
			return 0, fmt.Errorf("%w: segment %d has zero duration", ErrInvalidSegmentSet, i)
		}
		if seg.Duration > MaxSegmentDuration {
			return 0, fmt.Errorf("%w: segment %d duration exceeds max", ErrInvalidSegmentSet, i)
		}
		var carry uint64
		amountSum, carry = addCheck(amountSum, seg.Amount)
		if carry != 0 {
			return 0, fmt.Errorf("%w: segment amounts overflow", ErrInvalidSegmentSet)
		}
		// MaxSegments * MaxSegmentDuration is far below uint64 range, no
		// overflow possible here.
		totalDuration += seg.Duration
	}
	if amountSum != deposit {
		return 0, fmt.Errorf("%w: segment amounts sum to %d, deposit is %d", ErrInvalidSegmentSet, amountSum, deposit)
	}
	return totalDuration, nil
}

func addCheck(a, b uint64) (sum, carry uint64) {
	return bits.Add64(a, b, 0)
}

// maxDuration returns the longest segment duration in the list.
func maxDuration(segments []Segment) uint64 {
	var max uint64
	for _, seg := range segments {
		if seg.Duration > max {
			max = seg.Duration
		}
	}
	return max
}
