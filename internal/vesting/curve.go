package vesting

import "math/big"

// calibrateTick derives the stream's tick size from its longest segment
// duration. Short streams get millisecond-exact ticks; longer ones scale so
// the tick count of any segment stays at or below MaxDurationTicks.
//
// The tick size is computed exactly once at stream creation and stored on the
// stream. Recomputing it per call against a different duration could
// retroactively change already-reported values and break monotonicity.
func calibrateTick(maxSegmentDuration uint64) uint64 {
	if maxSegmentDuration <= MaxDurationTicks {
		return 1
	}
	return (maxSegmentDuration + MaxDurationTicks - 1) / MaxDurationTicks
}

// evalSegment computes the value unlocked by one segment at instant now.
// Returns 0 before the segment starts and exactly Amount once it completes;
// in between it evaluates floor(elapsed_ticks^exp * amount / duration_ticks^exp)
// on arbitrary-precision integers.
//
// Raising a raw millisecond duration (up to ~1.9e11) to the 10th power would
// overflow even 256-bit intermediates once multiplied by an amount, hence the
// tick rescale: it bounds the exponentiation base while preserving the
// elapsed/duration ratio to one part in MaxDurationTicks.
func evalSegment(segmentStart uint64, seg Segment, tickSize, now uint64) (uint64, error) {
	if now <= segmentStart {
		return 0, nil
	}
	if now >= segmentStart+seg.Duration {
		return seg.Amount, nil
	}
	elapsed := now - segmentStart

	elapsedTicks := elapsed / tickSize
	durationTicks := seg.Duration / tickSize
	if durationTicks == 0 {
		// Segment shorter than one tick. Fall back to the raw millisecond
		// ratio: such durations are below the tick size, whose 10th power
		// stays within bounds.
		elapsedTicks, durationTicks = elapsed, seg.Duration
	}

	exp := big.NewInt(int64(seg.Exponent))
	num := new(big.Int).Exp(new(big.Int).SetUint64(elapsedTicks), exp, nil)
	num.Mul(num, new(big.Int).SetUint64(seg.Amount))
	den := new(big.Int).Exp(new(big.Int).SetUint64(durationTicks), exp, nil)
	num.Quo(num, den)

	if !num.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return num.Uint64(), nil
}
