// Package vesting implements the deterministic vesting-curve engine: segment
// validation, tick calibration, curve evaluation, and the per-stream
// streamed/claimable computations.
//
// # Model
//
// A stream escrows a deposit that unlocks over a sequence of curve segments.
// Segment i unlocks its amount smoothly over its duration following
// amount * (elapsed/duration)^exponent, starting where segment i-1 ended.
// Exponent 1 is linear; higher exponents back-load the unlock.
//
// # Arithmetic
//
// All amounts are uint64 base units and all times are Unix milliseconds.
// Curve evaluation rescales elapsed/duration into stream ticks so that the
// base of exponentiation stays small, then computes
// elapsed_ticks^exp * amount / duration_ticks^exp on math/big integers with
// floor division. A result that does not fit uint64 fails with
// ErrArithmeticOverflow; tick calibration makes that unreachable for
// validated inputs, the check is a backstop.
//
// The package holds no state and performs no I/O; persistence and operation
// gating live in the ledger package.
package vesting
