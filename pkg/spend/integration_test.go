package spend

import (
	"encoding/hex"
	"testing"

	"github.com/suffix-labs/kaspa-txcore/pkg/address"
	"github.com/suffix-labs/kaspa-txcore/pkg/crypto"
	"github.com/suffix-labs/kaspa-txcore/pkg/tx"
)

// TestSpendEndToEnd drives the full pipeline: build a signed transaction from
// wallet inputs, serialize it, parse it back with the strict parser, and
// verify every Schnorr signature against independently recomputed sighashes.
func TestSpendEndToEnd(t *testing.T) {
	// Step 1: Create the spending key and its mainnet address.
	key := testPrivateKey(t)
	publicKey := key.SchnorrPublicKey()
	sourceAddr, err := address.FromPublicKey(address.PrefixMainnet, publicKey[:])
	if err != nil {
		t.Fatalf("Failed to derive source address: %v", err)
	}
	source := sourceAddr.String()
	t.Logf("Source address: %s", source)

	// Step 2: Assemble a request spending two UTXOs with change left over.
	inputAmounts := []uint64{30000000, 20000000}
	request := &Request{
		Inputs: []Input{
			{
				TransactionID: "0101010101010101010101010101010101010101010101010101010101010101",
				Index:         0,
				Address:       source,
				Amount:        inputAmounts[0],
			},
			{
				TransactionID: "0202020202020202020202020202020202020202020202020202020202020202",
				Index:         7,
				Address:       source,
				Amount:        inputAmounts[1],
			},
		},
		Outputs: []Output{{
			Address: recipientAddress(),
			Amount:  35000000,
		}},
		ChangeAddress:   source,
		Fee:             10000,
		PrivateKey:      key.Bytes(),
		AllowedPrefixes: []address.Prefix{address.PrefixMainnet},
	}

	// Step 3: Build and sign.
	payload, err := BuildSignedTransaction(request)
	if err != nil {
		t.Fatalf("Failed to build signed transaction: %v", err)
	}
	t.Logf("Built transaction with %d inputs and %d outputs",
		len(payload.Transaction.Inputs), len(payload.Transaction.Outputs))

	// Step 4: Serialize to the node submission format and re-parse strictly.
	encoded, err := payload.Encode()
	if err != nil {
		t.Fatalf("Failed to encode payload: %v", err)
	}
	t.Logf("Payload size: %d bytes", len(encoded))

	parsed, err := tx.ParseSignedPayload(encoded)
	if err != nil {
		t.Fatalf("Failed to re-parse payload: %v", err)
	}

	// Step 5: Convert back to the transaction model and reattach the spent
	// UTXO entries the wire format does not carry.
	transaction, err := parsed.ToTransaction()
	if err != nil {
		t.Fatalf("Failed to convert payload to transaction: %v", err)
	}

	sourceScript, err := sourceAddr.ScriptPublicKey()
	if err != nil {
		t.Fatalf("Failed to derive source script: %v", err)
	}
	for i := range transaction.Inputs {
		transaction.Inputs[i].UTXOEntry = &tx.UTXOEntry{
			Amount: inputAmounts[i],
			ScriptPublicKey: tx.ScriptPublicKey{
				Version: 0,
				Script:  sourceScript,
			},
		}
	}

	// Step 6: Recompute each input's sighash and verify its signature. The
	// signature scripts never feed the preimage, so reparsed transactions
	// hash identically to the unsigned skeleton.
	reusedValues := &crypto.SighashReusedValues{}
	for i, input := range transaction.Inputs {
		sighash, err := crypto.CalculateSignatureHash(transaction, i, crypto.SigHashAll, reusedValues)
		if err != nil {
			t.Fatalf("Failed to compute sighash for input %d: %v", i, err)
		}

		script := input.SignatureScript
		if len(script) != 66 || script[0] != 0x41 || script[65] != byte(crypto.SigHashAll) {
			t.Fatalf("Input %d: malformed signature script %s", i, hex.EncodeToString(script))
		}
		signature := script[1 : 1+crypto.SchnorrSignatureSize]

		if !crypto.VerifySchnorrSignature(publicKey, sighash, signature) {
			t.Fatalf("Input %d: signature does not verify", i)
		}
		t.Logf("Input %d: signature verified against sighash %x", i, sighash[:8])
	}

	// Step 7: Check the accounting: 30000000 + 20000000 in, 35000000 paid,
	// 10000 fee, so the change output holds 14990000.
	amounts := outputAmounts(t, parsed)
	if len(amounts) != 2 {
		t.Fatalf("Expected payment and change outputs, got %d", len(amounts))
	}
	if amounts[0] != 35000000 {
		t.Errorf("Payment output: got %d, want 35000000", amounts[0])
	}
	if amounts[1] != 14990000 {
		t.Errorf("Change output: got %d, want 14990000", amounts[1])
	}

	// Step 8: The change script must pay back to the source address.
	changeScript := transaction.Outputs[1].ScriptPublicKey.Script
	extracted, err := address.ExtractScriptAddress(changeScript, address.PrefixMainnet)
	if err != nil {
		t.Fatalf("Failed to extract change address: %v", err)
	}
	if extracted.String() != source {
		t.Errorf("Change pays %s, want %s", extracted.String(), source)
	}

	t.Log("End-to-end spend verified")
}

// TestSignaturesCommitToSpentOutputs flips a spent UTXO amount after signing
// and checks that verification against the recomputed sighash fails.
func TestSignaturesCommitToSpentOutputs(t *testing.T) {
	// Step 1: Build a signed single-input transaction.
	key := testPrivateKey(t)
	publicKey := key.SchnorrPublicKey()
	request := baseRequest(t)

	payload, err := BuildSignedTransaction(request)
	if err != nil {
		t.Fatalf("Failed to build signed transaction: %v", err)
	}

	// Step 2: Reconstruct the model transaction with a falsified UTXO amount.
	transaction, err := payload.ToTransaction()
	if err != nil {
		t.Fatalf("Failed to convert payload: %v", err)
	}
	sourceScript, err := address.ScriptPublicKey(request.Inputs[0].Address, address.PrefixMainnet)
	if err != nil {
		t.Fatalf("Failed to derive source script: %v", err)
	}
	transaction.Inputs[0].UTXOEntry = &tx.UTXOEntry{
		Amount:          request.Inputs[0].Amount + 1,
		ScriptPublicKey: tx.ScriptPublicKey{Version: 0, Script: sourceScript},
	}

	// Step 3: The recomputed sighash must no longer match the signature.
	sighash, err := crypto.CalculateSignatureHash(transaction, 0, crypto.SigHashAll, nil)
	if err != nil {
		t.Fatalf("Failed to compute sighash: %v", err)
	}
	signature := transaction.Inputs[0].SignatureScript[1 : 1+crypto.SchnorrSignatureSize]
	if crypto.VerifySchnorrSignature(publicKey, sighash, signature) {
		t.Fatal("Signature verified against a falsified UTXO amount")
	}
}
