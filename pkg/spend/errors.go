package spend

import (
	"errors"

	"github.com/suffix-labs/kaspa-txcore/pkg/crypto"
)

// Validation failures surfaced by BuildSignedTransaction. All checks run
// before any construction work, so a failed call has no partial output.
var (
	// ErrInvalidPrivateKey is the crypto package's key validation failure,
	// re-exported so callers can match the whole taxonomy in one place.
	ErrInvalidPrivateKey = crypto.ErrInvalidPrivateKey

	// ErrNoInputs is returned when the request selects no UTXOs.
	ErrNoInputs = errors.New("transaction has no inputs")

	// ErrNoOutputs is returned when the request pays no one.
	ErrNoOutputs = errors.New("transaction has no outputs")

	// ErrNegativeFee is returned when the fee is below zero.
	ErrNegativeFee = errors.New("fee must not be negative")

	// ErrNonPositiveOutputAmount is returned when an output amount is zero.
	ErrNonPositiveOutputAmount = errors.New("output amount must be positive")

	// ErrInsufficientBalance is returned when the selected inputs cannot
	// cover the outputs plus the fee.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
