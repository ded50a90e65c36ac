// Package crypto implements secp256k1 key management for Kaspa signing.
//
// Kaspa signs inputs with BIP-340 Schnorr signatures. Addresses of version 0
// carry the 32-byte x-only form of the public key; version 1 addresses carry
// the 33-byte compressed ECDSA form.
//
// Key formats:
//   - Private keys: raw 32 bytes, big-endian scalar
//   - Schnorr public keys: 32-byte x-only (BIP-340)
//   - ECDSA public keys: compressed 33 bytes (0x02/0x03 prefix + x-coordinate)
//   - Signatures: 64-byte Schnorr (r || s)
package crypto

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// SchnorrSignatureSize is the byte length of a serialized Schnorr signature.
const SchnorrSignatureSize = 64

// SchnorrPublicKeySize is the byte length of an x-only public key.
const SchnorrPublicKeySize = 32

// ErrInvalidPrivateKey is returned when key bytes do not form a usable
// signing scalar: wrong length, zero, or not below the group order.
var ErrInvalidPrivateKey = errors.New("invalid private key")

// PrivateKey wraps a validated secp256k1 private key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PrivateKeyFromBytes creates a private key from raw bytes. The bytes must be
// a big-endian scalar in [1, N-1] where N is the secp256k1 group order;
// anything else fails with ErrInvalidPrivateKey.
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("%w: must be 32 bytes, got %d", ErrInvalidPrivateKey, len(keyBytes))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(keyBytes); overflow {
		return nil, fmt.Errorf("%w: not below the group order", ErrInvalidPrivateKey)
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidPrivateKey)
	}

	return &PrivateKey{key: secp256k1.NewPrivateKey(&scalar)}, nil
}

// GeneratePrivateKey creates a new private key from the system's secure
// randomness source.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// Bytes returns the raw 32-byte private key.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// SchnorrPublicKey returns the 32-byte x-only public key carried by version-0
// addresses.
func (pk *PrivateKey) SchnorrPublicKey() [32]byte {
	var result [32]byte
	copy(result[:], schnorr.SerializePubKey(pk.key.PubKey()))
	return result
}

// ECDSAPublicKey returns the 33-byte compressed public key carried by
// version-1 addresses.
func (pk *PrivateKey) ECDSAPublicKey() [33]byte {
	var result [33]byte
	copy(result[:], pk.key.PubKey().SerializeCompressed())
	return result
}

// SignSchnorr creates a 64-byte BIP-340 Schnorr signature over hash.
func (pk *PrivateKey) SignSchnorr(hash [32]byte) ([]byte, error) {
	sig, err := schnorr.Sign(pk.key, hash[:])
	if err != nil {
		return nil, fmt.Errorf("schnorr signing failed: %w", err)
	}
	return sig.Serialize(), nil
}

// VerifySchnorrSignature verifies a 64-byte Schnorr signature over hash
// against a 32-byte x-only public key.
func VerifySchnorrSignature(publicKey [32]byte, hash [32]byte, signature []byte) bool {
	pubKey, err := schnorr.ParsePubKey(publicKey[:])
	if err != nil {
		return false
	}

	sig, err := schnorr.ParseSignature(signature)
	if err != nil {
		return false
	}

	return sig.Verify(hash[:], pubKey)
}
