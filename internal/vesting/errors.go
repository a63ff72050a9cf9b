package vesting

import "errors"

// Engine error taxonomy. Every failed operation aborts whole with no partial
// state mutation; callers match with errors.Is.
var (
	// ErrInsufficientDeposit rejects zero-value deposits at creation.
	ErrInsufficientDeposit = errors.New("vesting: deposit must be positive")

	// ErrInvalidStartTime rejects streams starting in the past.
	ErrInvalidStartTime = errors.New("vesting: start time is in the past")

	// ErrInvalidSegmentSet covers malformed segment lists: zero or over-max
	// duration, amount sum not equal to the deposit, empty list, or more than
	// MaxSegments entries.
	ErrInvalidSegmentSet = errors.New("vesting: invalid segment set")

	// ErrInvalidExponent rejects segment exponents above MaxExponent.
	ErrInvalidExponent = errors.New("vesting: exponent exceeds maximum")

	// ErrCliffTooLarge rejects cliffs that consume the entire stream.
	ErrCliffTooLarge = errors.New("vesting: cliff consumes entire duration")

	// ErrZeroClaimable signals a claim attempted with nothing vested.
	ErrZeroClaimable = errors.New("vesting: nothing claimable")

	// ErrNonZeroBalance signals a destroy attempted before full claim.
	ErrNonZeroBalance = errors.New("vesting: balance not zero")

	// ErrArithmeticOverflow is the defensive backstop in curve evaluation.
	// Unreachable for validated inputs thanks to tick calibration.
	ErrArithmeticOverflow = errors.New("vesting: arithmetic overflow")
)
