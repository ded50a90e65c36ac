package spend

import (
	"bytes"
	"fmt"

	"github.com/suffix-labs/kaspa-txcore/pkg/crypto"
	"github.com/suffix-labs/kaspa-txcore/pkg/tx"
)

// signTransaction signs every input in order with SIGHASH_ALL. The sighash
// cache is shared across the loop, so the four sub-hashes are computed once
// for the whole transaction. Signature scripts do not feed the sighash
// preimage, so installing them as the loop goes does not disturb later
// inputs.
func signTransaction(transaction *tx.Transaction, privateKey *crypto.PrivateKey) error {
	reusedValues := &crypto.SighashReusedValues{}

	for i := range transaction.Inputs {
		sighash, err := crypto.CalculateSignatureHash(transaction, i, crypto.SigHashAll, reusedValues)
		if err != nil {
			return fmt.Errorf("failed to compute sighash for input %d: %w", i, err)
		}

		signature, err := privateKey.SignSchnorr(sighash)
		if err != nil {
			return fmt.Errorf("failed to sign input %d: %w", i, err)
		}

		transaction.Inputs[i].SignatureScript = buildSignatureScript(signature)
	}

	return nil
}

// buildSignatureScript assembles the pay-to-schnorr-pubkey unlocking script:
// one push of signature || hash-type byte (0x41 || 64-byte signature || 0x01).
func buildSignatureScript(signature []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(signature) + 1))
	buf.Write(signature)
	buf.WriteByte(byte(crypto.SigHashAll))
	return buf.Bytes()
}
