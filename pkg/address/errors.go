package address

import "errors"

// Decode and script-derivation failures.
//
// Every error returned by this package wraps one of these sentinels with
// positional or length context, so callers can match the failure kind with
// errors.Is while still getting a useful message.
var (
	// ErrInvalidFormat is returned when the address string does not contain
	// exactly one ':' prefix separator.
	ErrInvalidFormat = errors.New("invalid address format")

	// ErrMixedCase is returned when the address mixes uppercase and lowercase
	// letters. An address must be entirely lowercase or entirely uppercase.
	ErrMixedCase = errors.New("address mixes uppercase and lowercase")

	// ErrUnknownPrefix is returned when the address prefix is not in the set
	// of prefixes the caller accepts.
	ErrUnknownPrefix = errors.New("unknown address prefix")

	// ErrInvalidCharacter is returned when the data part contains a character
	// outside the 32-character encoding alphabet.
	ErrInvalidCharacter = errors.New("invalid address character")

	// ErrInvalidChecksum is returned when the BCH checksum over the prefix
	// and data part does not verify.
	ErrInvalidChecksum = errors.New("checksum mismatch")

	// ErrInvalidPadding is returned when the 5-bit data symbols do not re-pack
	// cleanly into bytes: non-zero padding bits, or a full symbol left over.
	ErrInvalidPadding = errors.New("invalid payload padding")

	// ErrEmptyPayload is returned when an address decodes to zero payload
	// bytes (not even a version byte).
	ErrEmptyPayload = errors.New("empty address payload")

	// ErrUnsupportedVersion is returned when an address carries a version
	// byte this codec does not know how to turn into a spend script.
	ErrUnsupportedVersion = errors.New("unsupported address version")

	// ErrInvalidKeyLength is returned when a public-key address payload has
	// the wrong length for its version.
	ErrInvalidKeyLength = errors.New("invalid public key length")

	// ErrInvalidHashLength is returned when a script-hash address payload is
	// not exactly 32 bytes.
	ErrInvalidHashLength = errors.New("invalid script hash length")

	// ErrNonStandardScript is returned when a script public key does not
	// match any known spend-script template.
	ErrNonStandardScript = errors.New("non-standard script public key")
)
