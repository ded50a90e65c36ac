// Package crypto implements Kaspa signature hash computation and signing.
//
// The signature hash commits to a configurable subset of a transaction's
// contents; it is what a Schnorr signature actually signs, per input.
//
// This implementation corresponds to:
//   - rusty-kaspa/consensus/core/src/hashing/sighash.rs
//   - rusty-kaspa/consensus/core/src/hashing/sighash_type.rs
//   - kaspad/domain/consensus/utils/consensushashing/calculate_signature_hash.go
//
// References:
//   - Every hash in the algorithm is BLAKE2b-256 keyed with
//     "TransactionSigningHash" (see hashes.go).
//   - Four sub-hashes (previous outputs, sequences, sig-op counts, outputs)
//     are shared by all inputs of one transaction and memoized in
//     SighashReusedValues, making total work O(inputs + outputs) instead of
//     O(inputs²).
package crypto

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/suffix-labs/kaspa-txcore/pkg/tx"
)

// SigHashType designates which parts of the transaction a signature commits
// to. Exactly one of All/None/Single is active at a time; AnyOneCanPay is an
// independent modifier that drops the commitment to the other inputs.
type SigHashType uint8

// Supported hash type flags.
const (
	SigHashAll          SigHashType = 0b00000001
	SigHashNone         SigHashType = 0b00000010
	SigHashSingle       SigHashType = 0b00000100
	SigHashAnyOneCanPay SigHashType = 0b10000000

	sigHashMask = 0b00000111
)

func (t SigHashType) isSigHashAll() bool {
	return t&sigHashMask == SigHashAll
}

func (t SigHashType) isSigHashNone() bool {
	return t&sigHashMask == SigHashNone
}

func (t SigHashType) isSigHashSingle() bool {
	return t&sigHashMask == SigHashSingle
}

func (t SigHashType) isSigHashAnyOneCanPay() bool {
	return t&SigHashAnyOneCanPay != 0
}

// IsStandard reports whether t is one of the six hash type values accepted on
// the wire.
func (t SigHashType) IsStandard() bool {
	switch t {
	case SigHashAll,
		SigHashNone,
		SigHashSingle,
		SigHashAll | SigHashAnyOneCanPay,
		SigHashNone | SigHashAnyOneCanPay,
		SigHashSingle | SigHashAnyOneCanPay:
		return true
	}
	return false
}

// SighashReusedValues memoizes the sub-hashes shared by every input of one
// transaction. Pass one value per transaction and reuse it across all
// CalculateSignatureHash calls for that transaction; each sub-hash is then
// computed at most once. The zero value is ready to use.
type SighashReusedValues struct {
	previousOutputsHash *[32]byte
	sequencesHash       *[32]byte
	sigOpCountsHash     *[32]byte
	outputsHash         *[32]byte
}

// zeroHash is substituted for any sub-hash the hash type excludes, and for
// the payload hash of native-subnetwork transactions.
var zeroHash [32]byte

// CalculateSignatureHash computes the signature hash of the input at
// inputIndex.
//
// The preimage layout follows rusty-kaspa's calc_schnorr_signature_hash:
//
//	version (2 LE) ||
//	previousOutputsHash || sequencesHash || sigOpCountsHash ||
//	outpoint (txid 32 || index 4 LE) ||
//	UTXO scriptPublicKey (version 2 LE || length 8 LE || script) ||
//	UTXO amount (8 LE) ||
//	sequence (8 LE) ||
//	sigOpCount (1) ||
//	outputsHash ||
//	lockTime (8 LE) ||
//	subnetworkID (20 zero bytes) || gas (8 LE zero) || payloadHash (32 zero) ||
//	hashType (1)
//
// The subnetwork, gas and payload slots are hard-coded to their zero
// placeholders: this engine only signs native-subnetwork, payload-less
// transfers. Payload-bearing transactions would need real values here and
// are deliberately not supported.
func CalculateSignatureHash(t *tx.Transaction, inputIndex int, hashType SigHashType, reusedValues *SighashReusedValues) ([32]byte, error) {
	if inputIndex < 0 || inputIndex >= len(t.Inputs) {
		return [32]byte{}, fmt.Errorf("input index %d out of range for %d inputs", inputIndex, len(t.Inputs))
	}
	input := &t.Inputs[inputIndex]
	if input.UTXOEntry == nil {
		return [32]byte{}, fmt.Errorf("input %d has no UTXO entry to sign against", inputIndex)
	}
	if reusedValues == nil {
		reusedValues = &SighashReusedValues{}
	}

	h, _ := blake2bKeyed256(TransactionSigningDomain)

	binary.Write(h, binary.LittleEndian, t.Version)

	previousOutputsHash := getPreviousOutputsHash(t, hashType, reusedValues)
	h.Write(previousOutputsHash[:])

	sequencesHash := getSequencesHash(t, hashType, reusedValues)
	h.Write(sequencesHash[:])

	sigOpCountsHash := getSigOpCountsHash(t, hashType, reusedValues)
	h.Write(sigOpCountsHash[:])

	hashOutpoint(h, input.PreviousOutpoint)
	hashScriptPublicKey(h, input.UTXOEntry.ScriptPublicKey)
	binary.Write(h, binary.LittleEndian, input.UTXOEntry.Amount)
	binary.Write(h, binary.LittleEndian, input.Sequence)
	h.Write([]byte{input.SigOpCount})

	outputsHash := getOutputsHash(t, inputIndex, hashType, reusedValues)
	h.Write(outputsHash[:])

	binary.Write(h, binary.LittleEndian, t.LockTime)
	h.Write(tx.SubnetworkIDNative[:])
	binary.Write(h, binary.LittleEndian, uint64(0)) // gas
	h.Write(zeroHash[:])                            // payload hash
	h.Write([]byte{byte(hashType)})

	var sighash [32]byte
	copy(sighash[:], h.Sum(nil))
	return sighash, nil
}

// getPreviousOutputsHash commits to every input's outpoint. ANYONECANPAY drops
// the commitment entirely - the signature then covers only its own input.
func getPreviousOutputsHash(t *tx.Transaction, hashType SigHashType, reusedValues *SighashReusedValues) [32]byte {
	if hashType.isSigHashAnyOneCanPay() {
		return zeroHash
	}

	if reusedValues.previousOutputsHash == nil {
		h, _ := blake2bKeyed256(TransactionSigningDomain)
		for i := range t.Inputs {
			hashOutpoint(h, t.Inputs[i].PreviousOutpoint)
		}
		reusedValues.previousOutputsHash = finalize(h)
	}
	return *reusedValues.previousOutputsHash
}

// getSequencesHash commits to every input's sequence. Any mode that lets other
// inputs change after signing (SINGLE, NONE, ANYONECANPAY) zeroes it.
func getSequencesHash(t *tx.Transaction, hashType SigHashType, reusedValues *SighashReusedValues) [32]byte {
	if hashType.isSigHashSingle() || hashType.isSigHashAnyOneCanPay() || hashType.isSigHashNone() {
		return zeroHash
	}

	if reusedValues.sequencesHash == nil {
		h, _ := blake2bKeyed256(TransactionSigningDomain)
		for i := range t.Inputs {
			binary.Write(h, binary.LittleEndian, t.Inputs[i].Sequence)
		}
		reusedValues.sequencesHash = finalize(h)
	}
	return *reusedValues.sequencesHash
}

// getSigOpCountsHash commits to one sig-op count byte per input.
func getSigOpCountsHash(t *tx.Transaction, hashType SigHashType, reusedValues *SighashReusedValues) [32]byte {
	if hashType.isSigHashAnyOneCanPay() {
		return zeroHash
	}

	if reusedValues.sigOpCountsHash == nil {
		h, _ := blake2bKeyed256(TransactionSigningDomain)
		for i := range t.Inputs {
			h.Write([]byte{t.Inputs[i].SigOpCount})
		}
		reusedValues.sigOpCountsHash = finalize(h)
	}
	return *reusedValues.sigOpCountsHash
}

// getOutputsHash commits to the outputs the hash type selects: none for NONE,
// only the output paired with this input for SINGLE (zero if no such output
// exists), all outputs otherwise. Only the all-outputs form is memoized; the
// SINGLE form depends on the input index.
func getOutputsHash(t *tx.Transaction, inputIndex int, hashType SigHashType, reusedValues *SighashReusedValues) [32]byte {
	if hashType.isSigHashNone() {
		return zeroHash
	}

	if hashType.isSigHashSingle() {
		if inputIndex >= len(t.Outputs) {
			return zeroHash
		}
		h, _ := blake2bKeyed256(TransactionSigningDomain)
		hashTxOut(h, &t.Outputs[inputIndex])
		return *finalize(h)
	}

	if reusedValues.outputsHash == nil {
		h, _ := blake2bKeyed256(TransactionSigningDomain)
		for i := range t.Outputs {
			hashTxOut(h, &t.Outputs[i])
		}
		reusedValues.outputsHash = finalize(h)
	}
	return *reusedValues.outputsHash
}

func hashOutpoint(h hash.Hash, outpoint tx.Outpoint) {
	h.Write(outpoint.TransactionID[:])
	binary.Write(h, binary.LittleEndian, outpoint.Index)
}

func hashScriptPublicKey(h hash.Hash, scriptPublicKey tx.ScriptPublicKey) {
	binary.Write(h, binary.LittleEndian, scriptPublicKey.Version)
	binary.Write(h, binary.LittleEndian, uint64(len(scriptPublicKey.Script)))
	h.Write(scriptPublicKey.Script)
}

func hashTxOut(h hash.Hash, output *tx.Output) {
	binary.Write(h, binary.LittleEndian, output.Amount)
	hashScriptPublicKey(h, output.ScriptPublicKey)
}

func finalize(h hash.Hash) *[32]byte {
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return &digest
}
