// Package api provides the high-level public API for transaction operations.
//
// This is the main entry point for applications embedding the kaspa-txcore
// library. It exposes the core operations as plain-data functions:
//
//  1. BuildSignedTransaction - Validates, builds, signs, and serializes a spend
//  2. ValidateAddress - Checks an address against a network
//  3. AddressToScriptPublicKey - Derives the spend script for an address
//  4. DecodeSignedPayload / EncodeSignedPayload - Payload JSON round trip
//  5. ParsePaymentRequest - Parses a payment request URI
//  6. SignMessage / VerifyMessage - Domain-separated personal message signing
//  7. GenerateKey - Creates a fresh key with its derived addresses
//
// Requests and results use strings, byte slices, and integers only, so
// callers wiring this into RPC or UI layers never import the inner packages.
package api

import (
	"encoding/hex"
	"fmt"

	"github.com/suffix-labs/kaspa-txcore/pkg/address"
	"github.com/suffix-labs/kaspa-txcore/pkg/crypto"
	"github.com/suffix-labs/kaspa-txcore/pkg/payuri"
	"github.com/suffix-labs/kaspa-txcore/pkg/spend"
	"github.com/suffix-labs/kaspa-txcore/pkg/tx"
)

// UTXO identifies a spendable output and the address it is locked to.
type UTXO struct {
	TxID    string // Hex transaction ID of the output's transaction
	Index   uint32 // Output index within that transaction
	Address string // Address the output is locked to
	Amount  uint64 // Value in sompi
}

// Recipient is a payment destination.
type Recipient struct {
	Address string // Destination address
	Amount  uint64 // Value in sompi
}

// BuildRequest contains everything needed to build and sign a transaction.
type BuildRequest struct {
	Inputs        []UTXO      // Outputs being spent
	Outputs       []Recipient // Payment destinations
	ChangeAddress string      // Where any non-dust remainder goes
	Fee           int64       // Fee in sompi
	PrivateKey    string      // 32-byte Schnorr private key, hex encoded
	Network       string      // "kaspa", "kaspatest", "kaspasim", "kaspadev" ("" = mainnet)
	DustThreshold uint64      // Minimum change worth creating (0 = default)
}

// ============================================================================
// API Function 1: BuildSignedTransaction
// ============================================================================

// BuildSignedTransaction builds, signs, and serializes a transaction.
//
// This function:
//  1. Decodes the private key and resolves the network prefix
//  2. Runs the spend pipeline: validate, build, attach change, sign
//  3. Serializes the result to the node submission JSON format
//
// Parameters:
//   - request: Inputs, outputs, change address, fee, and signing key
//
// Returns:
//   - Signed transaction payload as JSON bytes
//   - Error if validation, building, or signing fails
func BuildSignedTransaction(request *BuildRequest) ([]byte, error) {
	keyBytes, err := hex.DecodeString(request.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("private key is not valid hex: %w", err)
	}

	prefix, err := resolveNetwork(request.Network)
	if err != nil {
		return nil, err
	}

	spendRequest := &spend.Request{
		ChangeAddress:   request.ChangeAddress,
		Fee:             request.Fee,
		PrivateKey:      keyBytes,
		AllowedPrefixes: []address.Prefix{prefix},
		DustThreshold:   request.DustThreshold,
	}
	for _, input := range request.Inputs {
		spendRequest.Inputs = append(spendRequest.Inputs, spend.Input{
			TransactionID: input.TxID,
			Index:         input.Index,
			Address:       input.Address,
			Amount:        input.Amount,
		})
	}
	for _, output := range request.Outputs {
		spendRequest.Outputs = append(spendRequest.Outputs, spend.Output{
			Address: output.Address,
			Amount:  output.Amount,
		})
	}

	payload, err := spend.BuildSignedTransaction(spendRequest)
	if err != nil {
		return nil, err
	}

	return payload.Encode()
}

// ============================================================================
// API Function 2: ValidateAddress
// ============================================================================

// ValidateAddress checks that an address is well-formed for a network.
//
// Parameters:
//   - encoded: The address string, prefix included
//   - network: Network name; "" accepts any well-known network
//
// Returns:
//   - Error describing the first defect found (nil = valid)
func ValidateAddress(encoded string, network string) error {
	allowed, err := allowedPrefixes(network)
	if err != nil {
		return err
	}
	_, err = address.Decode(encoded, allowed...)
	return err
}

// ============================================================================
// API Function 3: AddressToScriptPublicKey
// ============================================================================

// AddressToScriptPublicKey derives the spend script an address commits to.
//
// Parameters:
//   - encoded: The address string, prefix included
//   - network: Network name; "" accepts any well-known network
//
// Returns:
//   - Serialized script bytes
//   - Error if the address is invalid or its version is unsupported
func AddressToScriptPublicKey(encoded string, network string) ([]byte, error) {
	allowed, err := allowedPrefixes(network)
	if err != nil {
		return nil, err
	}
	return address.ScriptPublicKey(encoded, allowed...)
}

// ============================================================================
// API Function 4: DecodeSignedPayload / EncodeSignedPayload
// ============================================================================

// DecodeSignedPayload strictly parses signed transaction payload JSON.
//
// This is a convenience wrapper around the tx package's parser: unknown
// fields and malformed values are rejected rather than ignored.
//
// Parameters:
//   - payloadJSON: Payload bytes in the node submission format
//
// Returns:
//   - Parsed payload structure
//   - Error if parsing or validation fails
func DecodeSignedPayload(payloadJSON []byte) (*tx.SignedPayload, error) {
	return tx.ParseSignedPayload(payloadJSON)
}

// EncodeSignedPayload serializes a payload back to JSON bytes.
func EncodeSignedPayload(payload *tx.SignedPayload) ([]byte, error) {
	return payload.Encode()
}

// ============================================================================
// API Function 5: ParsePaymentRequest
// ============================================================================

// ParsePaymentRequest parses a payment request URI.
//
// This is a convenience function that wraps the payuri package.
//
// Parameters:
//   - uri: Payment request URI (an address with optional query parameters)
//   - network: Network name; "" accepts any well-known network
//
// Returns:
//   - Parsed payment request
//   - Error if parsing fails
func ParsePaymentRequest(uri string, network string) (*payuri.PaymentRequest, error) {
	if network == "" {
		return payuri.Parse(uri)
	}
	prefix, err := address.ParsePrefix(network)
	if err != nil {
		return nil, err
	}
	return payuri.Parse(uri, prefix)
}

// ============================================================================
// API Functions 6a & 6b: SignMessage / VerifyMessage
// ============================================================================

// SignMessage signs a personal message with a private key.
//
// The message is hashed under a dedicated domain, so a message signature
// can never be replayed as a transaction signature.
//
// Parameters:
//   - privateKeyHex: 32-byte private key, hex encoded
//   - message: Arbitrary message bytes
//
// Returns:
//   - 64-byte Schnorr signature
//   - Error if the key is invalid or signing fails
func SignMessage(privateKeyHex string, message []byte) ([]byte, error) {
	key, err := parsePrivateKeyHex(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return crypto.SignMessage(key, message)
}

// VerifyMessage verifies a personal message signature.
//
// Parameters:
//   - publicKeyHex: 32-byte x-only public key, hex encoded
//   - message: The message that was signed
//   - signature: 64-byte Schnorr signature
//
// Returns:
//   - true if the signature is valid for the message and key
//   - Error if the public key is malformed
func VerifyMessage(publicKeyHex string, message, signature []byte) (bool, error) {
	keyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return false, fmt.Errorf("public key is not valid hex: %w", err)
	}
	if len(keyBytes) != crypto.SchnorrPublicKeySize {
		return false, fmt.Errorf("public key must be %d bytes, got %d",
			crypto.SchnorrPublicKeySize, len(keyBytes))
	}
	var publicKey [crypto.SchnorrPublicKeySize]byte
	copy(publicKey[:], keyBytes)
	return crypto.VerifyMessage(publicKey, message, signature), nil
}

// ============================================================================
// API Function 7: GenerateKey
// ============================================================================

// KeyInfo holds a generated key with everything derived from it.
type KeyInfo struct {
	PrivateKey       string // 32-byte private key, hex
	SchnorrPublicKey string // 32-byte x-only public key, hex
	ECDSAPublicKey   string // 33-byte compressed public key, hex
	Address          string // Schnorr address for the requested network
	ECDSAAddress     string // ECDSA address for the requested network
}

// GenerateKey creates a fresh private key and derives its addresses.
//
// Parameters:
//   - network: Network name for the derived addresses ("" = mainnet)
//
// Returns:
//   - KeyInfo with the key and both address forms
//   - Error if key generation or address derivation fails
func GenerateKey(network string) (*KeyInfo, error) {
	prefix, err := resolveNetwork(network)
	if err != nil {
		return nil, err
	}

	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("key generation failed: %w", err)
	}

	schnorrPub := key.SchnorrPublicKey()
	ecdsaPub := key.ECDSAPublicKey()

	schnorrAddr, err := address.FromPublicKey(prefix, schnorrPub[:])
	if err != nil {
		return nil, fmt.Errorf("failed to derive address: %w", err)
	}
	ecdsaAddr, err := address.FromECDSAPublicKey(prefix, ecdsaPub[:])
	if err != nil {
		return nil, fmt.Errorf("failed to derive ECDSA address: %w", err)
	}

	return &KeyInfo{
		PrivateKey:       hex.EncodeToString(key.Bytes()),
		SchnorrPublicKey: hex.EncodeToString(schnorrPub[:]),
		ECDSAPublicKey:   hex.EncodeToString(ecdsaPub[:]),
		Address:          schnorrAddr.String(),
		ECDSAAddress:     ecdsaAddr.String(),
	}, nil
}

// ============================================================================
// Helper functions
// ============================================================================

// resolveNetwork maps a network name to its prefix, defaulting to mainnet.
func resolveNetwork(network string) (address.Prefix, error) {
	if network == "" {
		return address.PrefixMainnet, nil
	}
	return address.ParsePrefix(network)
}

// allowedPrefixes maps a network name to the prefix set to accept. The
// empty name accepts every well-known network.
func allowedPrefixes(network string) ([]address.Prefix, error) {
	if network == "" {
		return []address.Prefix{
			address.PrefixMainnet, address.PrefixTestnet,
			address.PrefixSimnet, address.PrefixDevnet,
		}, nil
	}
	prefix, err := address.ParsePrefix(network)
	if err != nil {
		return nil, err
	}
	return []address.Prefix{prefix}, nil
}

// parsePrivateKeyHex decodes and validates a hex-encoded private key.
func parsePrivateKeyHex(privateKeyHex string) (*crypto.PrivateKey, error) {
	keyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("private key is not valid hex: %w", err)
	}
	return crypto.PrivateKeyFromBytes(keyBytes)
}
