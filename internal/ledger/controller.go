package ledger

import (
	"errors"
	"fmt"

	"github.com/rzbill/vesta/internal/vesting"
)

// Protocol constants. Fee amounts are in base units of the protocol fee
// token (1 unit = 1e9).
const (
	// ProtocolVersion is the version this build of the engine speaks. A
	// persisted controller carrying any other version fails every operation
	// closed until migrated.
	ProtocolVersion uint64 = 1
	// MaxClaimFee caps what the fee can ever be raised to.
	MaxClaimFee uint64 = 50_000_000_000
	// DefaultClaimFee is one quarter of a fee unit, applied at first
	// initialization.
	DefaultClaimFee uint64 = 250_000_000
)

// Controller errors.
var (
	// ErrStaleVersion signals an operation attempted against a controller
	// whose version does not match ProtocolVersion.
	ErrStaleVersion = errors.New("ledger: stale protocol version")
	// ErrInvalidFeePayment signals a claim whose fee payment does not match
	// the current claim fee exactly.
	ErrInvalidFeePayment = errors.New("ledger: fee payment mismatch")
	// ErrFeeExceedsCap signals a fee update above MaxClaimFee.
	ErrFeeExceedsCap = errors.New("ledger: fee exceeds cap")
)

// Controller is the protocol singleton: version gate, claim fee, and the
// treasury accumulating fees paid on claims.
type Controller struct {
	Version  uint64 `json:"version"`
	ClaimFee uint64 `json:"claimFee"`
	Treasury uint64 `json:"treasury"`
}

// NewController builds the initial controller state. A zero initialFee
// selects DefaultClaimFee.
func NewController(initialFee uint64) (*Controller, error) {
	if initialFee == 0 {
		initialFee = DefaultClaimFee
	}
	if initialFee > MaxClaimFee {
		return nil, fmt.Errorf("%w: %d > %d", ErrFeeExceedsCap, initialFee, MaxClaimFee)
	}
	return &Controller{Version: ProtocolVersion, ClaimFee: initialFee}, nil
}

func (c *Controller) guardVersion() error {
	if c.Version != ProtocolVersion {
		return fmt.Errorf("%w: controller at %d, engine at %d", ErrStaleVersion, c.Version, ProtocolVersion)
	}
	return nil
}

// CreateStream gates stream creation on the protocol version and assembles
// the stream with the full deposit escrowed.
func (c *Controller) CreateStream(p vesting.CreateParams, now uint64) (*vesting.Stream, error) {
	if err := c.guardVersion(); err != nil {
		return nil, err
	}
	return vesting.NewStream(p, now)
}

// Claim validates the fee payment, moves the fee into the treasury, and
// decrements the stream balance by the claimable amount, which it returns.
// No state is touched unless every check passes.
func (c *Controller) Claim(s *vesting.Stream, feePayment, now uint64) (uint64, error) {
	if err := c.guardVersion(); err != nil {
		return 0, err
	}
	if feePayment != c.ClaimFee {
		return 0, fmt.Errorf("%w: paid %d, fee is %d", ErrInvalidFeePayment, feePayment, c.ClaimFee)
	}
	amount, err := s.ClaimableAmount(now)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, vesting.ErrZeroClaimable
	}
	c.Treasury += feePayment
	s.Balance -= amount
	return amount, nil
}

// Destroy checks that the stream is fully claimed. The caller deallocates
// the entity on success; no operation is valid on it afterwards.
func (c *Controller) Destroy(s *vesting.Stream) error {
	if err := c.guardVersion(); err != nil {
		return err
	}
	if s.Balance != 0 {
		return fmt.Errorf("%w: %d remaining", vesting.ErrNonZeroBalance, s.Balance)
	}
	return nil
}

// Transfer reassigns who may claim from the stream. Escrowed funds and the
// vesting curve are untouched.
func (c *Controller) Transfer(s *vesting.Stream, newOwner string) error {
	if err := c.guardVersion(); err != nil {
		return err
	}
	s.Owner = newOwner
	return nil
}

// SetClaimFee updates the fee charged on subsequent claims. It does not
// touch escrowed funds or past fees.
func (c *Controller) SetClaimFee(fee uint64) error {
	if fee > MaxClaimFee {
		return fmt.Errorf("%w: %d > %d", ErrFeeExceedsCap, fee, MaxClaimFee)
	}
	c.ClaimFee = fee
	return nil
}

// WithdrawTreasury drains the treasury to zero and returns the drained
// amount.
func (c *Controller) WithdrawTreasury() uint64 {
	amount := c.Treasury
	c.Treasury = 0
	return amount
}

// MigrateVersion sets the controller version, re-enabling operations after
// an upgrade. No other side effects.
func (c *Controller) MigrateVersion(version uint64) {
	c.Version = version
}
