// Package spend builds and signs Kaspa value-transfer transactions.
//
// The engine runs one linear pipeline per call:
//   - Validate: reject bad keys, empty input/output sets, negative fees
//   - Build: resolve addresses to spend scripts, assemble the unsigned
//     skeleton, compute the change output
//   - Sign: Schnorr-sign each input over a shared sighash cache
//   - Emit: the broadcast-ready signed payload
//
// Failure at any stage aborts the whole call; there is no partial output and
// no state carried between calls. Retry policy (fee bumping, widening the
// UTXO selection) belongs to the caller.
//
// This corresponds to:
//   - rusty-kaspa/wallet/core/src/tx/generator/generator.rs
//   - kaspad/cmd/kaspawallet/libkaspawallet/transaction.go
package spend

import (
	"fmt"

	"github.com/suffix-labs/kaspa-txcore/pkg/address"
	"github.com/suffix-labs/kaspa-txcore/pkg/crypto"
	"github.com/suffix-labs/kaspa-txcore/pkg/tx"
)

// DefaultDustThreshold is the smallest change amount worth creating an
// output for, in sompi. Smaller leftovers are folded into the fee.
const DefaultDustThreshold = 546

// Input is one UTXO chosen by coin selection.
type Input struct {
	TransactionID string // Hex ID of the transaction that created the UTXO
	Index         uint32 // Output position within that transaction
	Address       string // Address the UTXO pays to; resolved to its spend script
	Amount        uint64 // UTXO value in sompi
}

// Output is one payment destination.
type Output struct {
	Address string
	Amount  uint64 // Must be positive
}

// Request carries everything one BuildSignedTransaction call needs. The
// caller owns all fields; the engine never retains or mutates them.
type Request struct {
	Inputs        []Input
	Outputs       []Output
	ChangeAddress string
	Fee           int64 // In sompi; validated non-negative

	// PrivateKey is the raw 32-byte Schnorr signing key for every input.
	PrivateKey []byte

	// AllowedPrefixes restricts which networks' addresses the request may
	// reference.
	AllowedPrefixes []address.Prefix

	// DustThreshold overrides DefaultDustThreshold when positive.
	DustThreshold uint64
}

// BuildSignedTransaction validates the request, builds the transaction
// skeleton with a change output when one is due, signs every input with
// SIGHASH_ALL, and returns the broadcast payload.
func BuildSignedTransaction(request *Request) (*tx.SignedPayload, error) {
	privateKey, err := validateRequest(request)
	if err != nil {
		return nil, err
	}

	transaction, err := buildUnsignedTransaction(request)
	if err != nil {
		return nil, err
	}

	if err := signTransaction(transaction, privateKey); err != nil {
		return nil, err
	}

	return tx.NewSignedPayload(transaction), nil
}

// validateRequest runs every fail-fast check and returns the parsed signing
// key. Nothing is constructed until all checks pass.
func validateRequest(request *Request) (*crypto.PrivateKey, error) {
	privateKey, err := crypto.PrivateKeyFromBytes(request.PrivateKey)
	if err != nil {
		return nil, err
	}

	if len(request.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(request.Outputs) == 0 {
		return nil, ErrNoOutputs
	}
	if request.Fee < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeFee, request.Fee)
	}
	for i := range request.Outputs {
		if request.Outputs[i].Amount == 0 {
			return nil, fmt.Errorf("%w: output %d", ErrNonPositiveOutputAmount, i)
		}
	}

	return privateKey, nil
}
