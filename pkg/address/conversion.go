package address

import "fmt"

// convertBits regroups the bits of data from fromBits-wide groups into
// toBits-wide groups, most significant bits first.
//
// With pad=true (encoding direction, 8→5) any trailing bits are padded with
// zeros on the right to fill a final group. With pad=false (decoding
// direction, 5→8) the conversion is strict: it fails with ErrInvalidPadding
// if a full input group's worth of bits is left over, or if the leftover
// padding bits are not all zero.
//
// Corresponds to: kaspad/util/bech32 convertBits
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc, bits uint
	maxv := uint(1)<<toBits - 1

	converted := make([]byte, 0, (len(data)*int(fromBits)+int(toBits)-1)/int(toBits))
	for _, v := range data {
		acc = acc<<fromBits | uint(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			converted = append(converted, byte(acc>>bits)&byte(maxv))
		}
	}

	if pad {
		if bits > 0 {
			converted = append(converted, byte(acc<<(toBits-bits))&byte(maxv))
		}
		return converted, nil
	}

	// Strict mode: an entire leftover input group means the encoder emitted
	// a symbol too many; non-zero leftover bits mean the padding was not
	// zeros. Both make the symbol stream undecodable.
	if bits >= fromBits {
		return nil, fmt.Errorf("%w: %d leftover bits", ErrInvalidPadding, bits)
	}
	if byte(acc<<(toBits-bits))&byte(maxv) != 0 {
		return nil, fmt.Errorf("%w: non-zero padding bits", ErrInvalidPadding)
	}
	return converted, nil
}
