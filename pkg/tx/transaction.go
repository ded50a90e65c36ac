// Package tx defines the Kaspa transaction model used by the signing engine.
//
// The types in this file correspond to the Rust implementation found in:
//   - rusty-kaspa/consensus/core/src/tx.rs (Transaction, TransactionInput, TransactionOutput)
//   - rusty-kaspa/consensus/core/src/subnets.rs (SubnetworkId)
//
// References:
//   - kaspad/domain/consensus/model/externalapi/transaction.go
//
// Amounts, lock times and sequences are 64-bit unsigned integers in the
// smallest denomination (sompi); they are never represented as floats.
package tx

import (
	"encoding/hex"
	"fmt"
)

const (
	// TransactionIDSize is the byte length of a transaction ID.
	TransactionIDSize = 32

	// SubnetworkIDSize is the byte length of a subnetwork ID.
	SubnetworkIDSize = 20
)

// TransactionID identifies a transaction by its hash.
//
// Corresponds to: rusty-kaspa/consensus/core/src/tx.rs (TransactionId)
//
// Kaspa transaction IDs are displayed in the byte order they are hashed in,
// unlike Bitcoin txids which are displayed reversed.
type TransactionID [TransactionIDSize]byte

// NewTransactionIDFromString parses a 64-character hex string into a
// transaction ID.
func NewTransactionIDFromString(s string) (TransactionID, error) {
	var id TransactionID
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("failed to parse transaction ID %q: %w", s, err)
	}
	if len(decoded) != TransactionIDSize {
		return id, fmt.Errorf("transaction ID must be %d bytes, got %d", TransactionIDSize, len(decoded))
	}
	copy(id[:], decoded)
	return id, nil
}

// String returns the hex form of the transaction ID.
func (id TransactionID) String() string {
	return hex.EncodeToString(id[:])
}

// SubnetworkID partitions transactions by the subnetwork they belong to.
//
// Corresponds to: rusty-kaspa/consensus/core/src/subnets.rs (SubnetworkId)
type SubnetworkID [SubnetworkIDSize]byte

// SubnetworkIDNative is the all-zero subnetwork carrying plain value
// transfers. Every transaction this engine builds lives on it.
var SubnetworkIDNative = SubnetworkID{}

// String returns the hex form of the subnetwork ID.
func (s SubnetworkID) String() string {
	return hex.EncodeToString(s[:])
}

// ScriptPublicKey pairs a spend script with its scripting-engine version.
//
// Corresponds to: rusty-kaspa/consensus/core/src/tx.rs (ScriptPublicKey)
//
// Version 0 is the only script version currently deployed; the field exists
// so future script engines can be introduced without re-interpreting old
// scripts.
type ScriptPublicKey struct {
	Version uint16
	Script  []byte
}

// Outpoint references the output being spent by an input.
//
// Corresponds to: rusty-kaspa/consensus/core/src/tx.rs (TransactionOutpoint)
type Outpoint struct {
	TransactionID TransactionID // Transaction the spent output was created in
	Index         uint32        // Position of the output within that transaction
}

// UTXOEntry carries the properties of the output an input spends. The
// signature hash commits to these, so a signer cannot be tricked about the
// amount or script of the coin it is spending.
//
// Corresponds to: rusty-kaspa/consensus/core/src/utxo/utxo_entry.rs
type UTXOEntry struct {
	Amount          uint64 // Value of the spent output in sompi
	ScriptPublicKey ScriptPublicKey
}

// Input spends one previous output.
//
// Corresponds to: rusty-kaspa/consensus/core/src/tx.rs (TransactionInput)
type Input struct {
	PreviousOutpoint Outpoint
	SignatureScript  []byte // Unlocking script; empty until the input is signed
	Sequence         uint64
	SigOpCount       uint8 // Signature operations this input contributes (1 for key spends)

	// UTXOEntry describes the output this input spends. It is populated by
	// the transaction builder and consumed by signature hashing; it is not
	// part of the serialized transaction.
	UTXOEntry *UTXOEntry
}

// Output creates one new spendable coin.
//
// Corresponds to: rusty-kaspa/consensus/core/src/tx.rs (TransactionOutput)
type Output struct {
	Amount          uint64 // Value in sompi, always > 0 for engine-built outputs
	ScriptPublicKey ScriptPublicKey
}

// Transaction is the in-memory form constructed and signed by the engine.
//
// Corresponds to: rusty-kaspa/consensus/core/src/tx.rs (Transaction)
//
// Gas and payload fields are absent: the engine only produces native-subnetwork
// value transfers, where both are zero. The signature hash algorithm still
// commits to their zero placeholders.
type Transaction struct {
	Version      uint16
	Inputs       []Input
	Outputs      []Output
	LockTime     uint64
	SubnetworkID SubnetworkID
}

// TotalInputAmount sums the UTXO amounts of all inputs. Inputs without a
// populated UTXO entry contribute zero.
func (t *Transaction) TotalInputAmount() uint64 {
	var total uint64
	for i := range t.Inputs {
		if entry := t.Inputs[i].UTXOEntry; entry != nil {
			total += entry.Amount
		}
	}
	return total
}

// TotalOutputAmount sums the amounts of all outputs.
func (t *Transaction) TotalOutputAmount() uint64 {
	var total uint64
	for i := range t.Outputs {
		total += t.Outputs[i].Amount
	}
	return total
}
