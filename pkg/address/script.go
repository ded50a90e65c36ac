package address

import "fmt"

// Script opcodes used by the three standard spend-script templates.
//
// Corresponds to: kaspad/domain/consensus/utils/txscript opcode constants
const (
	opData32        = 0x20
	opData33        = 0x21
	opEqual         = 0x87
	opBlake2b       = 0xaa
	opCheckSigECDSA = 0xab
	opCheckSig      = 0xac
)

// ScriptPublicKey derives the spend script for the address, dispatching on
// the version byte:
//
//	version 0: <push 32> <schnorr pubkey> OP_CHECKSIG        (34 bytes)
//	version 1: <push 33> <ecdsa pubkey>   OP_CHECKSIGECDSA   (35 bytes)
//	version 8: OP_BLAKE2B <push 32> <script hash> OP_EQUAL   (35 bytes)
//
// Payload lengths are validated here: ErrInvalidKeyLength for versions 0
// and 1, ErrInvalidHashLength for version 8, ErrUnsupportedVersion for
// anything else.
//
// Corresponds to: kaspad/domain/consensus/utils/txscript PayToAddrScript
func (a Address) ScriptPublicKey() ([]byte, error) {
	switch a.Version {
	case VersionPubKey:
		if len(a.Payload) != PublicKeySize {
			return nil, fmt.Errorf("%w: version %d expects a %d-byte key, got %d bytes",
				ErrInvalidKeyLength, a.Version, PublicKeySize, len(a.Payload))
		}
		script := make([]byte, 0, PublicKeySize+2)
		script = append(script, opData32)
		script = append(script, a.Payload...)
		script = append(script, opCheckSig)
		return script, nil

	case VersionPubKeyECDSA:
		if len(a.Payload) != PublicKeyECDSASize {
			return nil, fmt.Errorf("%w: version %d expects a %d-byte key, got %d bytes",
				ErrInvalidKeyLength, a.Version, PublicKeyECDSASize, len(a.Payload))
		}
		script := make([]byte, 0, PublicKeyECDSASize+2)
		script = append(script, opData33)
		script = append(script, a.Payload...)
		script = append(script, opCheckSigECDSA)
		return script, nil

	case VersionScriptHash:
		if len(a.Payload) != ScriptHashSize {
			return nil, fmt.Errorf("%w: version %d expects a %d-byte hash, got %d bytes",
				ErrInvalidHashLength, a.Version, ScriptHashSize, len(a.Payload))
		}
		script := make([]byte, 0, ScriptHashSize+3)
		script = append(script, opBlake2b, opData32)
		script = append(script, a.Payload...)
		script = append(script, opEqual)
		return script, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.Version)
}

// ScriptPublicKey decodes an address string and derives its spend script in
// one step. This is the form transaction building uses: human-entered
// address in, on-chain script out.
func ScriptPublicKey(encoded string, allowed ...Prefix) ([]byte, error) {
	addr, err := Decode(encoded, allowed...)
	if err != nil {
		return nil, err
	}
	return addr.ScriptPublicKey()
}

// ExtractScriptAddress recovers the address a spend script pays to, the
// inverse of ScriptPublicKey. It recognizes the three standard templates;
// anything else fails with ErrNonStandardScript.
func ExtractScriptAddress(script []byte, prefix Prefix) (Address, error) {
	switch {
	case len(script) == PublicKeySize+2 &&
		script[0] == opData32 && script[len(script)-1] == opCheckSig:
		return New(prefix, VersionPubKey, script[1:len(script)-1]), nil

	case len(script) == PublicKeyECDSASize+2 &&
		script[0] == opData33 && script[len(script)-1] == opCheckSigECDSA:
		return New(prefix, VersionPubKeyECDSA, script[1:len(script)-1]), nil

	case len(script) == ScriptHashSize+3 &&
		script[0] == opBlake2b && script[1] == opData32 && script[len(script)-1] == opEqual:
		return New(prefix, VersionScriptHash, script[2:len(script)-1]), nil
	}

	return Address{}, fmt.Errorf("%w: %d bytes", ErrNonStandardScript, len(script))
}
