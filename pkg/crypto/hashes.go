package crypto

import (
	"hash"

	blake2b "github.com/minio/blake2b-simd"
)

// Domain separation keys for BLAKE2b-256 hashing.
//
// Kaspa keys every hash with an ASCII domain string so a digest computed for
// one purpose can never be replayed as a digest for another. The key is a
// hash-function-level parameter, NOT data written into the message.
const (
	// TransactionSigningDomain keys every hash that feeds a transaction
	// signature: the four memoized sub-hashes and the final per-input hash.
	TransactionSigningDomain = "TransactionSigningHash"

	// PersonalMessageSigningDomain keys hashes of free-form signed messages,
	// keeping them incompatible with transaction signatures.
	PersonalMessageSigningDomain = "PersonalMessageSigningHash"
)

// blake2bKeyed256 creates a new BLAKE2b-256 hash keyed with the given domain.
// This is the correct way to use BLAKE2b for Kaspa signing - the domain is
// passed through the key parameter, so equal inputs hashed under different
// domains produce unrelated digests.
func blake2bKeyed256(domain string) (hash.Hash, error) {
	config := &blake2b.Config{
		Size: 32,
		Key:  []byte(domain),
	}
	return blake2b.New(config)
}
