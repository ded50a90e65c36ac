// Package address implements the Kaspa address format.
//
// An address is a cashaddr-style Bech32 string: a human-readable network
// prefix, a ':' separator, and a data part holding a version byte plus a
// public key or script hash, re-packed into 5-bit symbols and protected by
// an 8-symbol BCH checksum. The version byte selects the payload type:
//
//	0: 32-byte Schnorr public key
//	1: 33-byte compressed ECDSA public key
//	8: 32-byte script hash
//
// The package also derives the script public key a decoded address spends
// to, which is what transaction outputs actually carry on the wire.
//
// Corresponds to: kaspad/util/address.go and kaspad/util/bech32
package address

import (
	"fmt"
	"strings"
)

// charset is the 32-character alphabet the 5-bit data symbols map through.
const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// checksumLength is the number of trailing 5-bit checksum symbols.
const checksumLength = 8

// Address version bytes and the payload sizes they require.
const (
	VersionPubKey      uint8 = 0
	VersionPubKeyECDSA uint8 = 1
	VersionScriptHash  uint8 = 8

	PublicKeySize      = 32
	PublicKeyECDSASize = 33
	ScriptHashSize     = 32
)

// Prefix is the human-readable network prefix of an address.
//
// The prefix is part of the checksummed data, so an address is only valid on
// the network it was encoded for. Callers pass the prefixes they accept into
// Decode; there is no global network state.
type Prefix string

// Well-known network prefixes.
const (
	PrefixMainnet Prefix = "kaspa"
	PrefixTestnet Prefix = "kaspatest"
	PrefixSimnet  Prefix = "kaspasim"
	PrefixDevnet  Prefix = "kaspadev"
)

// ParsePrefix maps a prefix string (case-insensitively) to one of the
// well-known network prefixes.
func ParsePrefix(s string) (Prefix, error) {
	switch Prefix(strings.ToLower(s)) {
	case PrefixMainnet:
		return PrefixMainnet, nil
	case PrefixTestnet:
		return PrefixTestnet, nil
	case PrefixSimnet:
		return PrefixSimnet, nil
	case PrefixDevnet:
		return PrefixDevnet, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPrefix, s)
}

// Address is a decoded address: network prefix, version byte, and raw
// payload bytes. It is a value type: constructors and Decode copy the
// payload, so an Address never aliases caller-owned memory.
type Address struct {
	Prefix  Prefix
	Version uint8
	Payload []byte
}

// New builds an Address from its parts. The payload is copied. No length
// validation happens here; payload lengths are checked where they matter,
// when deriving the spend script.
func New(prefix Prefix, version uint8, payload []byte) Address {
	p := make([]byte, len(payload))
	copy(p, payload)
	return Address{Prefix: prefix, Version: version, Payload: p}
}

// FromPublicKey builds a version-0 address from a 32-byte Schnorr public
// key.
func FromPublicKey(prefix Prefix, publicKey []byte) (Address, error) {
	if len(publicKey) != PublicKeySize {
		return Address{}, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidKeyLength, PublicKeySize, len(publicKey))
	}
	return New(prefix, VersionPubKey, publicKey), nil
}

// FromECDSAPublicKey builds a version-1 address from a 33-byte compressed
// ECDSA public key.
func FromECDSAPublicKey(prefix Prefix, publicKey []byte) (Address, error) {
	if len(publicKey) != PublicKeyECDSASize {
		return Address{}, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidKeyLength, PublicKeyECDSASize, len(publicKey))
	}
	return New(prefix, VersionPubKeyECDSA, publicKey), nil
}

// FromScriptHash builds a version-8 address from a 32-byte script hash.
func FromScriptHash(prefix Prefix, hash []byte) (Address, error) {
	if len(hash) != ScriptHashSize {
		return Address{}, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidHashLength, ScriptHashSize, len(hash))
	}
	return New(prefix, VersionScriptHash, hash), nil
}

// String re-encodes the address to its textual form.
func (a Address) String() string {
	return Encode(a.Prefix, a.Version, a.Payload)
}

// Encode encodes a version byte and payload under a network prefix.
//
// The version byte is prepended to the payload, the result is re-packed
// from bytes into 5-bit symbols (zero-padded on the right), the checksum is
// computed over the prefix and packed symbols, and everything maps through
// the encoding alphabet. The output is always lowercase.
//
// Encode never fails: payload lengths are deliberately not validated here,
// mirroring the decode side where a bad length only surfaces when a spend
// script is derived.
func Encode(prefix Prefix, version uint8, payload []byte) string {
	prefixStr := strings.ToLower(string(prefix))

	data := make([]byte, 0, len(payload)+1)
	data = append(data, version)
	data = append(data, payload...)

	// 8→5 packing cannot fail in padded mode.
	symbols, _ := convertBits(data, 8, 5, true)
	symbols = append(symbols, checksumSymbols(prefixStr, symbols)...)

	var sb strings.Builder
	sb.Grow(len(prefixStr) + 1 + len(symbols))
	sb.WriteString(prefixStr)
	sb.WriteByte(':')
	for _, s := range symbols {
		sb.WriteByte(charset[s])
	}
	return sb.String()
}

// Decode decodes and validates an address string, accepting only the given
// prefixes.
//
// Validation order: exactly one ':' separator (ErrInvalidFormat), no case
// mixing (ErrMixedCase), prefix membership (ErrUnknownPrefix), alphabet
// membership (ErrInvalidCharacter), checksum (ErrInvalidChecksum), strict
// 5→8 re-packing (ErrInvalidPadding), and a non-empty payload
// (ErrEmptyPayload). The first byte of the re-packed payload is the version;
// the rest is the raw payload.
func Decode(encoded string, allowed ...Prefix) (Address, error) {
	if strings.Count(encoded, ":") != 1 {
		return Address{}, fmt.Errorf("%w: expected exactly one ':' separator", ErrInvalidFormat)
	}

	var hasLower, hasUpper bool
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		}
	}
	if hasLower && hasUpper {
		return Address{}, ErrMixedCase
	}

	lowered := strings.ToLower(encoded)
	sep := strings.IndexByte(lowered, ':')
	prefix, data := lowered[:sep], lowered[sep+1:]

	known := false
	for _, p := range allowed {
		if strings.ToLower(string(p)) == prefix {
			known = true
			break
		}
	}
	if !known {
		return Address{}, fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
	}

	symbols := make([]byte, len(data))
	for i := 0; i < len(data); i++ {
		v := strings.IndexByte(charset, data[i])
		if v < 0 {
			return Address{}, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, data[i], i)
		}
		symbols[i] = byte(v)
	}

	if len(symbols) < checksumLength {
		return Address{}, fmt.Errorf("%w: data part shorter than the checksum", ErrInvalidChecksum)
	}
	if !verifyChecksum(prefix, symbols) {
		return Address{}, ErrInvalidChecksum
	}

	payload, err := convertBits(symbols[:len(symbols)-checksumLength], 5, 8, false)
	if err != nil {
		return Address{}, err
	}
	if len(payload) == 0 {
		return Address{}, ErrEmptyPayload
	}

	return Address{Prefix: Prefix(prefix), Version: payload[0], Payload: payload[1:]}, nil
}
