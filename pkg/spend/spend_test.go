package spend

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/suffix-labs/kaspa-txcore/pkg/address"
	"github.com/suffix-labs/kaspa-txcore/pkg/crypto"
	"github.com/suffix-labs/kaspa-txcore/pkg/tx"
)

// testPrivateKey returns a fixed signing key so sighashes are reproducible
// across runs.
func testPrivateKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()

	keyBytes := [32]byte{
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
		0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x00,
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
		0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x01,
	}
	key, err := crypto.PrivateKeyFromBytes(keyBytes[:])
	if err != nil {
		t.Fatalf("Failed to create private key: %v", err)
	}
	return key
}

// keyAddress encodes the key's Schnorr public key as a mainnet address.
func keyAddress(t *testing.T, key *crypto.PrivateKey) string {
	t.Helper()

	publicKey := key.SchnorrPublicKey()
	addr, err := address.FromPublicKey(address.PrefixMainnet, publicKey[:])
	if err != nil {
		t.Fatalf("Failed to build address: %v", err)
	}
	return addr.String()
}

// recipientAddress is an unrelated mainnet destination.
func recipientAddress() string {
	return address.New(address.PrefixMainnet, address.VersionPubKey, bytes.Repeat([]byte{0xbb}, 32)).String()
}

const testTransactionID = "aa00000000000000000000000000000000000000000000000000000000000011"

func baseRequest(t *testing.T) *Request {
	t.Helper()

	key := testPrivateKey(t)
	source := keyAddress(t, key)

	return &Request{
		Inputs: []Input{{
			TransactionID: testTransactionID,
			Index:         0,
			Address:       source,
			Amount:        100000000,
		}},
		Outputs: []Output{{
			Address: recipientAddress(),
			Amount:  50000000,
		}},
		ChangeAddress:   source,
		Fee:             1000,
		PrivateKey:      key.Bytes(),
		AllowedPrefixes: []address.Prefix{address.PrefixMainnet},
	}
}

func outputAmounts(t *testing.T, payload *tx.SignedPayload) []uint64 {
	t.Helper()

	amounts := make([]uint64, 0, len(payload.Transaction.Outputs))
	for _, output := range payload.Transaction.Outputs {
		amount, err := strconv.ParseUint(output.Amount, 10, 64)
		if err != nil {
			t.Fatalf("Failed to parse output amount %q: %v", output.Amount, err)
		}
		amounts = append(amounts, amount)
	}
	return amounts
}

func TestBuildWithChange(t *testing.T) {
	payload, err := BuildSignedTransaction(baseRequest(t))
	if err != nil {
		t.Fatalf("BuildSignedTransaction failed: %v", err)
	}

	// 100000000 - 50000000 - 1000 = 49999000, well above the dust threshold.
	amounts := outputAmounts(t, payload)
	if len(amounts) != 2 {
		t.Fatalf("expected payment plus change, got %d outputs", len(amounts))
	}
	if amounts[0] != 50000000 {
		t.Errorf("payment output: got %d, want 50000000", amounts[0])
	}
	if amounts[1] != 49999000 {
		t.Errorf("change output: got %d, want 49999000", amounts[1])
	}

	if payload.AllowOrphan {
		t.Error("allowOrphan must be false")
	}
	if payload.Transaction.Version != 0 {
		t.Errorf("version: got %d, want 0", payload.Transaction.Version)
	}
	if payload.Transaction.LockTime != "0" {
		t.Errorf("lockTime: got %q, want \"0\"", payload.Transaction.LockTime)
	}
	if payload.Transaction.SubnetworkID != strings.Repeat("0", 40) {
		t.Errorf("subnetworkId: got %q", payload.Transaction.SubnetworkID)
	}

	input := payload.Transaction.Inputs[0]
	if input.Sequence != 0 {
		t.Errorf("sequence: got %d, want 0", input.Sequence)
	}
	if input.SigOpCount != 1 {
		t.Errorf("sigOpCount: got %d, want 1", input.SigOpCount)
	}
	if input.PreviousOutpoint.TransactionID != testTransactionID {
		t.Errorf("previous transaction ID: got %q", input.PreviousOutpoint.TransactionID)
	}
}

func TestBuildExactAmountNoChange(t *testing.T) {
	request := baseRequest(t)
	request.Outputs[0].Amount = 99999500
	request.Fee = 500

	payload, err := BuildSignedTransaction(request)
	if err != nil {
		t.Fatalf("BuildSignedTransaction failed: %v", err)
	}

	amounts := outputAmounts(t, payload)
	if len(amounts) != 1 {
		t.Fatalf("expected exactly one output, got %d", len(amounts))
	}
	if amounts[0] != 99999500 {
		t.Errorf("payment output: got %d, want 99999500", amounts[0])
	}
}

func TestDustLeftoverFoldsIntoFee(t *testing.T) {
	request := baseRequest(t)
	request.Inputs[0].Amount = 100000600
	request.Outputs[0].Amount = 100000000
	request.Fee = 500
	// Leftover is 100: positive but below the 546 sompi threshold.

	payload, err := BuildSignedTransaction(request)
	if err != nil {
		t.Fatalf("BuildSignedTransaction failed: %v", err)
	}

	amounts := outputAmounts(t, payload)
	if len(amounts) != 1 {
		t.Fatalf("dust change must not create an output, got %d outputs", len(amounts))
	}
	if amounts[0] != 100000000 {
		t.Errorf("payment output: got %d, want 100000000", amounts[0])
	}
}

func TestChangeAtThresholdBoundary(t *testing.T) {
	t.Run("exactly at threshold", func(t *testing.T) {
		request := baseRequest(t)
		request.Inputs[0].Amount = 50001046 // change = 546
		request.Fee = 500

		payload, err := BuildSignedTransaction(request)
		if err != nil {
			t.Fatalf("BuildSignedTransaction failed: %v", err)
		}
		amounts := outputAmounts(t, payload)
		if len(amounts) != 2 || amounts[1] != 546 {
			t.Fatalf("expected change output of 546, got %v", amounts)
		}
	})

	t.Run("one below threshold", func(t *testing.T) {
		request := baseRequest(t)
		request.Inputs[0].Amount = 50001045 // change = 545
		request.Fee = 500

		payload, err := BuildSignedTransaction(request)
		if err != nil {
			t.Fatalf("BuildSignedTransaction failed: %v", err)
		}
		amounts := outputAmounts(t, payload)
		if len(amounts) != 1 {
			t.Fatalf("expected dust suppression, got %v", amounts)
		}
	})
}

func TestCustomDustThreshold(t *testing.T) {
	request := baseRequest(t)
	request.Inputs[0].Amount = 50001500 // change = 1000 with fee 500
	request.Fee = 500
	request.DustThreshold = 1001

	payload, err := BuildSignedTransaction(request)
	if err != nil {
		t.Fatalf("BuildSignedTransaction failed: %v", err)
	}
	if len(payload.Transaction.Outputs) != 1 {
		t.Fatalf("change of 1000 must be dust under a threshold of 1001")
	}

	request.DustThreshold = 1000
	payload, err = BuildSignedTransaction(request)
	if err != nil {
		t.Fatalf("BuildSignedTransaction failed: %v", err)
	}
	amounts := outputAmounts(t, payload)
	if len(amounts) != 2 || amounts[1] != 1000 {
		t.Fatalf("expected change output of 1000, got %v", amounts)
	}
}

func TestInsufficientBalance(t *testing.T) {
	t.Run("outputs exceed inputs", func(t *testing.T) {
		request := baseRequest(t)
		request.Outputs[0].Amount = 100000001

		_, err := BuildSignedTransaction(request)
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
	})

	t.Run("fee pushes past inputs", func(t *testing.T) {
		request := baseRequest(t)
		request.Outputs[0].Amount = 100000000
		request.Fee = 1

		_, err := BuildSignedTransaction(request)
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
	})
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"short private key", func(r *Request) { r.PrivateKey = make([]byte, 31) }, ErrInvalidPrivateKey},
		{"zero private key", func(r *Request) { r.PrivateKey = make([]byte, 32) }, ErrInvalidPrivateKey},
		{"overflowing private key", func(r *Request) { r.PrivateKey = bytes.Repeat([]byte{0xff}, 32) }, ErrInvalidPrivateKey},
		{"no inputs", func(r *Request) { r.Inputs = nil }, ErrNoInputs},
		{"no outputs", func(r *Request) { r.Outputs = nil }, ErrNoOutputs},
		{"negative fee", func(r *Request) { r.Fee = -1 }, ErrNegativeFee},
		{"zero output amount", func(r *Request) { r.Outputs[0].Amount = 0 }, ErrNonPositiveOutputAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := baseRequest(t)
			tt.mutate(request)

			_, err := BuildSignedTransaction(request)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("input check precedes output check", func(t *testing.T) {
		request := baseRequest(t)
		request.Inputs = nil
		request.Outputs = nil

		_, err := BuildSignedTransaction(request)
		if !errors.Is(err, ErrNoInputs) {
			t.Fatalf("expected ErrNoInputs, got %v", err)
		}
	})
}

func TestAddressResolutionFailures(t *testing.T) {
	t.Run("input address from wrong network", func(t *testing.T) {
		request := baseRequest(t)
		testnetAddr := address.New(address.PrefixTestnet, address.VersionPubKey, bytes.Repeat([]byte{0x01}, 32))
		request.Inputs[0].Address = testnetAddr.String()

		_, err := BuildSignedTransaction(request)
		if !errors.Is(err, address.ErrUnknownPrefix) {
			t.Fatalf("expected ErrUnknownPrefix, got %v", err)
		}
	})

	t.Run("corrupted output address", func(t *testing.T) {
		request := baseRequest(t)
		request.Outputs[0].Address = "kaspa:qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq"

		_, err := BuildSignedTransaction(request)
		if !errors.Is(err, address.ErrInvalidChecksum) {
			t.Fatalf("expected ErrInvalidChecksum, got %v", err)
		}
	})

	t.Run("malformed change address", func(t *testing.T) {
		request := baseRequest(t)
		request.ChangeAddress = "no separator here"

		_, err := BuildSignedTransaction(request)
		if !errors.Is(err, address.ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat, got %v", err)
		}
		if !strings.Contains(err.Error(), "change address") {
			t.Errorf("error should name the change address: %v", err)
		}
	})

	t.Run("malformed input transaction id", func(t *testing.T) {
		request := baseRequest(t)
		request.Inputs[0].TransactionID = "not hex"

		if _, err := BuildSignedTransaction(request); err == nil {
			t.Fatal("expected transaction ID error")
		}
	})
}

func TestSignatureScriptShape(t *testing.T) {
	request := baseRequest(t)
	request.Inputs = append(request.Inputs, Input{
		TransactionID: "bb00000000000000000000000000000000000000000000000000000000000022",
		Index:         3,
		Address:       request.Inputs[0].Address,
		Amount:        25000000,
	})

	payload, err := BuildSignedTransaction(request)
	if err != nil {
		t.Fatalf("BuildSignedTransaction failed: %v", err)
	}

	seen := make(map[string]bool)
	for i, input := range payload.Transaction.Inputs {
		script, err := hex.DecodeString(input.SignatureScript)
		if err != nil {
			t.Fatalf("input %d: signature script is not hex: %v", i, err)
		}
		if len(script) != 66 {
			t.Fatalf("input %d: signature script length %d, want 66", i, len(script))
		}
		if script[0] != 0x41 {
			t.Errorf("input %d: push opcode 0x%02x, want 0x41", i, script[0])
		}
		if script[65] != 0x01 {
			t.Errorf("input %d: hash type byte 0x%02x, want 0x01", i, script[65])
		}
		if seen[input.SignatureScript] {
			t.Errorf("input %d: duplicate signature script; sighashes must differ per input", i)
		}
		seen[input.SignatureScript] = true
	}
}

// TestFeeConservationProperty checks the integer accounting identity on
// arbitrary successful builds: inputs always equal outputs plus the declared
// fee plus any dust leftover folded into it.
func TestFeeConservationProperty(t *testing.T) {
	key := testPrivateKey(t)
	source := keyAddress(t, key)
	destination := recipientAddress()

	rapid.Check(t, func(rt *rapid.T) {
		numOutputs := rapid.IntRange(1, 3).Draw(rt, "numOutputs")

		var outputs []Output
		var totalOutput uint64
		for i := 0; i < numOutputs; i++ {
			amount := rapid.Uint64Range(1, 50000000).Draw(rt, "amount")
			outputs = append(outputs, Output{Address: destination, Amount: amount})
			totalOutput += amount
		}

		fee := rapid.Int64Range(0, 100000).Draw(rt, "fee")
		leftover := rapid.Uint64Range(0, 10000).Draw(rt, "leftover")
		totalInput := totalOutput + uint64(fee) + leftover

		inputs := []Input{{TransactionID: testTransactionID, Index: 0, Address: source, Amount: totalInput}}
		if rapid.Bool().Draw(rt, "splitInputs") && totalInput >= 2 {
			half := totalInput / 2
			inputs = []Input{
				{TransactionID: testTransactionID, Index: 0, Address: source, Amount: half},
				{TransactionID: testTransactionID, Index: 1, Address: source, Amount: totalInput - half},
			}
		}

		payload, err := BuildSignedTransaction(&Request{
			Inputs:          inputs,
			Outputs:         outputs,
			ChangeAddress:   source,
			Fee:             fee,
			PrivateKey:      key.Bytes(),
			AllowedPrefixes: []address.Prefix{address.PrefixMainnet},
		})
		if err != nil {
			rt.Fatalf("BuildSignedTransaction failed: %v", err)
		}

		var totalPaid uint64
		for _, output := range payload.Transaction.Outputs {
			amount, err := strconv.ParseUint(output.Amount, 10, 64)
			if err != nil {
				rt.Fatalf("bad amount %q: %v", output.Amount, err)
			}
			totalPaid += amount
		}

		if leftover >= DefaultDustThreshold {
			if len(payload.Transaction.Outputs) != numOutputs+1 {
				rt.Fatalf("expected change output: %d outputs, leftover %d", len(payload.Transaction.Outputs), leftover)
			}
			if totalPaid+uint64(fee) != totalInput {
				rt.Fatalf("conservation violated: paid %d + fee %d != inputs %d", totalPaid, fee, totalInput)
			}
		} else {
			if len(payload.Transaction.Outputs) != numOutputs {
				rt.Fatalf("unexpected change output below dust threshold")
			}
			if totalPaid != totalOutput {
				rt.Fatalf("outputs changed: paid %d, want %d", totalPaid, totalOutput)
			}
			if totalInput-totalPaid != uint64(fee)+leftover {
				rt.Fatalf("effective fee %d, want declared %d plus leftover %d", totalInput-totalPaid, fee, leftover)
			}
		}
	})
}
