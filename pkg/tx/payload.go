// Signed payload serialization.
//
// The JSON shape below is the contract a broadcast-submission collaborator
// depends on; it mirrors the submitTransaction request body of the Kaspa
// node RPC.
//
// Corresponds to:
//   - rusty-kaspa/rpc/core/src/model/tx.rs (RpcTransaction)
//   - kaspad/infrastructure/network/netadapter/server/grpcserver/protowire/rpc.proto
//
// Amounts and the lock time are serialized as decimal strings: consumers in
// languages whose native number type cannot hold a full 64-bit unsigned value
// would otherwise silently lose precision. Byte fields are lowercase hex.
package tx

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// ParseError reports a malformed signed payload.
type ParseError struct {
	Message string // Human-readable error message
	Cause   error  // Underlying decode error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// SignedPayload is the broadcast-ready form of a fully signed transaction.
type SignedPayload struct {
	Transaction PayloadTransaction `json:"transaction"`
	AllowOrphan bool               `json:"allowOrphan"`
}

// PayloadTransaction carries the transaction fields in wire form.
type PayloadTransaction struct {
	Version      uint16          `json:"version"`
	Inputs       []PayloadInput  `json:"inputs"`
	Outputs      []PayloadOutput `json:"outputs"`
	LockTime     string          `json:"lockTime"`
	SubnetworkID string          `json:"subnetworkId"`
}

// PayloadOutpoint references the spent output in wire form.
type PayloadOutpoint struct {
	TransactionID string `json:"transactionId"`
	Index         uint32 `json:"index"`
}

// PayloadInput is one signed input in wire form.
type PayloadInput struct {
	PreviousOutpoint PayloadOutpoint `json:"previousOutpoint"`
	SignatureScript  string          `json:"signatureScript"`
	Sequence         uint64          `json:"sequence"`
	SigOpCount       uint8           `json:"sigOpCount"`
}

// PayloadScriptPublicKey is a versioned spend script in wire form.
type PayloadScriptPublicKey struct {
	Version uint16 `json:"version"`
	Script  string `json:"scriptPublicKey"`
}

// PayloadOutput is one created output in wire form.
type PayloadOutput struct {
	Amount          string                 `json:"amount"`
	ScriptPublicKey PayloadScriptPublicKey `json:"scriptPublicKey"`
}

// NewSignedPayload converts a signed transaction into its wire form with
// allowOrphan fixed to false.
func NewSignedPayload(transaction *Transaction) *SignedPayload {
	payload := &SignedPayload{
		Transaction: PayloadTransaction{
			Version:      transaction.Version,
			Inputs:       make([]PayloadInput, 0, len(transaction.Inputs)),
			Outputs:      make([]PayloadOutput, 0, len(transaction.Outputs)),
			LockTime:     strconv.FormatUint(transaction.LockTime, 10),
			SubnetworkID: transaction.SubnetworkID.String(),
		},
		AllowOrphan: false,
	}

	for i := range transaction.Inputs {
		input := &transaction.Inputs[i]
		payload.Transaction.Inputs = append(payload.Transaction.Inputs, PayloadInput{
			PreviousOutpoint: PayloadOutpoint{
				TransactionID: input.PreviousOutpoint.TransactionID.String(),
				Index:         input.PreviousOutpoint.Index,
			},
			SignatureScript: hex.EncodeToString(input.SignatureScript),
			Sequence:        input.Sequence,
			SigOpCount:      input.SigOpCount,
		})
	}

	for i := range transaction.Outputs {
		output := &transaction.Outputs[i]
		payload.Transaction.Outputs = append(payload.Transaction.Outputs, PayloadOutput{
			Amount: strconv.FormatUint(output.Amount, 10),
			ScriptPublicKey: PayloadScriptPublicKey{
				Version: output.ScriptPublicKey.Version,
				Script:  hex.EncodeToString(output.ScriptPublicKey.Script),
			},
		})
	}

	return payload
}

// Encode marshals the payload to JSON.
func (p *SignedPayload) Encode() ([]byte, error) {
	encoded, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed payload: %w", err)
	}
	return encoded, nil
}

// ParseSignedPayload decodes and validates a JSON payload. Unknown fields are
// rejected, every hex and decimal field must parse, and the transaction must
// have at least one input and one output.
func ParseSignedPayload(data []byte) (*SignedPayload, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	payload := &SignedPayload{}
	if err := decoder.Decode(payload); err != nil {
		return nil, &ParseError{Message: "invalid payload JSON", Cause: err}
	}

	if err := payload.validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

func (p *SignedPayload) validate() error {
	transaction := &p.Transaction

	if len(transaction.Inputs) == 0 {
		return &ParseError{Message: "transaction has no inputs"}
	}
	if len(transaction.Outputs) == 0 {
		return &ParseError{Message: "transaction has no outputs"}
	}

	if _, err := strconv.ParseUint(transaction.LockTime, 10, 64); err != nil {
		return &ParseError{Message: fmt.Sprintf("invalid lockTime %q", transaction.LockTime), Cause: err}
	}

	subnetworkID, err := hex.DecodeString(transaction.SubnetworkID)
	if err != nil {
		return &ParseError{Message: "invalid subnetworkId hex", Cause: err}
	}
	if len(subnetworkID) != SubnetworkIDSize {
		return &ParseError{Message: fmt.Sprintf("subnetworkId must be %d bytes, got %d", SubnetworkIDSize, len(subnetworkID))}
	}

	for i := range transaction.Inputs {
		input := &transaction.Inputs[i]
		if _, err := NewTransactionIDFromString(input.PreviousOutpoint.TransactionID); err != nil {
			return &ParseError{Message: fmt.Sprintf("input %d: invalid previous transaction ID", i), Cause: err}
		}
		if _, err := hex.DecodeString(input.SignatureScript); err != nil {
			return &ParseError{Message: fmt.Sprintf("input %d: invalid signatureScript hex", i), Cause: err}
		}
	}

	for i := range transaction.Outputs {
		output := &transaction.Outputs[i]
		if _, err := strconv.ParseUint(output.Amount, 10, 64); err != nil {
			return &ParseError{Message: fmt.Sprintf("output %d: invalid amount %q", i, output.Amount), Cause: err}
		}
		if _, err := hex.DecodeString(output.ScriptPublicKey.Script); err != nil {
			return &ParseError{Message: fmt.Sprintf("output %d: invalid scriptPublicKey hex", i), Cause: err}
		}
	}

	return nil
}

// ToTransaction converts the wire form back into the transaction model. UTXO
// entries are not part of the wire form, so the result cannot be re-signed;
// it supports inspection and re-serialization.
func (p *SignedPayload) ToTransaction() (*Transaction, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	source := &p.Transaction
	lockTime, _ := strconv.ParseUint(source.LockTime, 10, 64)

	transaction := &Transaction{
		Version:  source.Version,
		Inputs:   make([]Input, 0, len(source.Inputs)),
		Outputs:  make([]Output, 0, len(source.Outputs)),
		LockTime: lockTime,
	}

	subnetworkID, _ := hex.DecodeString(source.SubnetworkID)
	copy(transaction.SubnetworkID[:], subnetworkID)

	for i := range source.Inputs {
		input := &source.Inputs[i]
		transactionID, _ := NewTransactionIDFromString(input.PreviousOutpoint.TransactionID)
		signatureScript, _ := hex.DecodeString(input.SignatureScript)
		transaction.Inputs = append(transaction.Inputs, Input{
			PreviousOutpoint: Outpoint{
				TransactionID: transactionID,
				Index:         input.PreviousOutpoint.Index,
			},
			SignatureScript: signatureScript,
			Sequence:        input.Sequence,
			SigOpCount:      input.SigOpCount,
		})
	}

	for i := range source.Outputs {
		output := &source.Outputs[i]
		amount, _ := strconv.ParseUint(output.Amount, 10, 64)
		script, _ := hex.DecodeString(output.ScriptPublicKey.Script)
		transaction.Outputs = append(transaction.Outputs, Output{
			Amount: amount,
			ScriptPublicKey: ScriptPublicKey{
				Version: output.ScriptPublicKey.Version,
				Script:  script,
			},
		})
	}

	return transaction, nil
}
