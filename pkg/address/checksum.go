package address

// polyMod computes the 40-bit BCH checksum over a stream of 5-bit values.
//
// The accumulator keeps a 35-bit state; each symbol shifts the state left by
// five bits, XORs the symbol into the low bits, and folds the five overflow
// bits back in through the generator constants. The final state is XORed
// with 1 so that appending a correct checksum makes the whole stream sum to
// exactly zero.
//
// Corresponds to: kaspad/util/bech32 polyMod
func polyMod(values []byte) uint64 {
	checksum := uint64(1)
	for _, value := range values {
		topBits := checksum >> 35
		checksum = (checksum&0x07ffffffff)<<5 ^ uint64(value)
		if topBits&0x01 != 0 {
			checksum ^= 0x98f2bc8e61
		}
		if topBits&0x02 != 0 {
			checksum ^= 0x79b76d99e2
		}
		if topBits&0x04 != 0 {
			checksum ^= 0xf33e5fb3c4
		}
		if topBits&0x08 != 0 {
			checksum ^= 0xae2eabe2a8
		}
		if topBits&0x10 != 0 {
			checksum ^= 0x1e4f43e470
		}
	}
	return checksum ^ 1
}

// prefixSymbols returns the checksum contribution of the prefix: the low
// five bits of each prefix character.
func prefixSymbols(prefix string) []byte {
	symbols := make([]byte, len(prefix))
	for i := 0; i < len(prefix); i++ {
		symbols[i] = prefix[i] & 0x1f
	}
	return symbols
}

// checksumSymbols computes the eight 5-bit checksum symbols for a packed
// payload under the given prefix. The checksum is computed over
// prefix-symbols || 0 || payload-symbols || eight zero placeholders, and the
// resulting 40-bit value is split most-significant symbol first.
func checksumSymbols(prefix string, payloadSymbols []byte) []byte {
	data := make([]byte, 0, len(prefix)+1+len(payloadSymbols)+checksumLength)
	data = append(data, prefixSymbols(prefix)...)
	data = append(data, 0)
	data = append(data, payloadSymbols...)
	data = append(data, make([]byte, checksumLength)...)

	mod := polyMod(data)

	checksum := make([]byte, checksumLength)
	for i := 0; i < checksumLength; i++ {
		checksum[i] = byte(mod>>uint(5*(checksumLength-1-i))) & 0x1f
	}
	return checksum
}

// verifyChecksum reports whether the full received symbol stream (payload
// symbols plus the trailing checksum symbols) verifies under the prefix.
// It runs the same polynomial over prefix-symbols || 0 || symbols and
// requires the result to be exactly zero.
func verifyChecksum(prefix string, symbols []byte) bool {
	data := make([]byte, 0, len(prefix)+1+len(symbols))
	data = append(data, prefixSymbols(prefix)...)
	data = append(data, 0)
	data = append(data, symbols...)
	return polyMod(data) == 0
}
