// Package payuri implements the kaspa payment request URI format.
//
// Payment requests follow the BIP 21 convention adapted to Kaspa: the
// address already carries the network scheme, so a request is the address
// itself with optional query parameters appended.
//
// URI Format:
//   kaspa:<payload>?amount=<KAS>&label=<label>&message=<message>
//
// Amounts are decimal KAS with up to 8 fractional digits and convert to
// integer sompi without going through floating point. Unknown parameters
// are rejected rather than ignored, and any "req-" prefixed parameter
// fails closed the way BIP 21 requires for unsupported mandatory fields.
//
// See: https://github.com/bitcoin/bips/blob/master/bip-0021.mediawiki
package payuri

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/suffix-labs/kaspa-txcore/pkg/address"
)

// SompiPerKaspa is the number of sompi in one KAS.
const SompiPerKaspa = 100_000_000

// maxFractionDigits is the decimal precision of a KAS amount.
const maxFractionDigits = 8

// Errors returned while parsing a payment request.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountTooLarge     = errors.New("amount out of range")
	ErrDuplicateParameter = errors.New("duplicate parameter")
	ErrUnknownParameter   = errors.New("unknown parameter")
	ErrRequiredParameter  = errors.New("unsupported required parameter")
)

// PaymentRequest represents a parsed payment request.
//
// Each request specifies:
//   - Address: the recipient address, re-encoded in canonical form
//   - Amount: requested value in sompi (nil = payer specifies)
//   - Label: optional label for the recipient
//   - Message: optional message to display to the payer
type PaymentRequest struct {
	Address string  // Canonical recipient address, prefix included
	Amount  *uint64 // Requested amount in sompi (nil = payer specifies)
	Label   *string // Optional label for recipient
	Message *string // Optional message to display to payer
}

// Parse parses a payment request URI.
//
// The address portion is validated through the address codec against the
// allowed prefixes, so a request for the wrong network fails here rather
// than at spend time.
//
// Parameters:
//   - uri: the payment request URI (an address, optionally with a query)
//   - allowed: acceptable network prefixes; empty means all well-known ones
//
// Returns:
//   - PaymentRequest with the canonical address and any request fields
//   - Error if the address is invalid or the query is malformed
//
// Example:
//   req, err := payuri.Parse("kaspa:qr...xyz?amount=1.5&label=coffee")
func Parse(uri string, allowed ...address.Prefix) (*PaymentRequest, error) {
	base, query, hasQuery := strings.Cut(uri, "?")

	if len(allowed) == 0 {
		allowed = []address.Prefix{
			address.PrefixMainnet, address.PrefixTestnet,
			address.PrefixSimnet, address.PrefixDevnet,
		}
	}
	addr, err := address.Decode(base, allowed...)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	request := &PaymentRequest{Address: addr.String()}
	if !hasQuery {
		return request, nil
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	for key, values := range params {
		if len(values) > 1 {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParameter, key)
		}
		value := values[0]

		switch key {
		case "amount":
			if value == "" {
				continue
			}
			sompi, err := ParseAmount(value)
			if err != nil {
				return nil, err
			}
			request.Amount = &sompi
		case "label":
			if value == "" {
				continue
			}
			request.Label = &value
		case "message":
			if value == "" {
				continue
			}
			request.Message = &value
		default:
			if strings.HasPrefix(key, "req-") {
				return nil, fmt.Errorf("%w: %q", ErrRequiredParameter, key)
			}
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
		}
	}

	return request, nil
}

// ParseAmount converts a decimal KAS amount string to sompi.
//
// Valid formats:
//   - "12" (whole KAS)
//   - "0.5" (fractional)
//   - "1.23456789" (full 8-digit precision)
//
// Both parts are parsed as integers and combined as
// whole*100_000_000 + fraction, so no precision is ever lost to floating
// point. Signs, empty parts, and more than 8 fractional digits are
// rejected.
func ParseAmount(amountStr string) (uint64, error) {
	whole, fraction, hasDot := strings.Cut(amountStr, ".")

	// strconv.ParseUint permits neither signs nor empty strings, which is
	// exactly the strictness the grammar wants.
	wholeKAS, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amountStr)
	}

	var fracSompi uint64
	if hasDot {
		if fraction == "" || len(fraction) > maxFractionDigits {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amountStr)
		}
		padded := fraction + strings.Repeat("0", maxFractionDigits-len(fraction))
		fracSompi, err = strconv.ParseUint(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amountStr)
		}
	}

	if wholeKAS > (math.MaxUint64-fracSompi)/SompiPerKaspa {
		return 0, fmt.Errorf("%w: %q", ErrAmountTooLarge, amountStr)
	}
	return wholeKAS*SompiPerKaspa + fracSompi, nil
}

// FormatAmount renders a sompi amount as a decimal KAS string with
// trailing zeros removed. The inverse of ParseAmount.
func FormatAmount(sompi uint64) string {
	whole := strconv.FormatUint(sompi/SompiPerKaspa, 10)
	fraction := sompi % SompiPerKaspa
	if fraction == 0 {
		return whole
	}
	frac := strings.TrimRight(fmt.Sprintf("%08d", fraction), "0")
	return whole + "." + frac
}

// Encode creates a payment request URI.
//
// This is the inverse of Parse(). It renders the address followed by the
// set request fields as query parameters, suitable for sharing or for
// encoding in a QR code.
func (r *PaymentRequest) Encode() string {
	uri := r.Address

	params := url.Values{}
	if r.Amount != nil {
		params.Add("amount", FormatAmount(*r.Amount))
	}
	if r.Label != nil {
		params.Add("label", *r.Label)
	}
	if r.Message != nil {
		params.Add("message", *r.Message)
	}

	if len(params) > 0 {
		uri += "?" + params.Encode()
	}

	return uri
}
