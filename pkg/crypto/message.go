package crypto

// Message signing hashes the message under the personal-message domain before
// signing, so a message signature can never double as a transaction
// signature.
//
// Corresponds to: rusty-kaspa/wallet/core/src/message.rs

// SignMessage signs a free-form message with a 64-byte Schnorr signature.
func SignMessage(privateKey *PrivateKey, message []byte) ([]byte, error) {
	return privateKey.SignSchnorr(hashMessage(message))
}

// VerifyMessage verifies a message signature against a 32-byte x-only public
// key.
func VerifyMessage(publicKey [32]byte, message, signature []byte) bool {
	return VerifySchnorrSignature(publicKey, hashMessage(message), signature)
}

func hashMessage(message []byte) [32]byte {
	h, _ := blake2bKeyed256(PersonalMessageSigningDomain)
	h.Write(message)

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}
