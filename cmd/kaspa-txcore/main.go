// kaspa-txcore CLI - address codec and transaction signing toolbox
//
// This CLI exposes the kaspa-txcore library: encoding and decoding
// addresses, building and signing transactions from wallet UTXOs, and
// inspecting signed payloads before submission.
//
// Example usage:
//   # Decode an address into its parts
//   kaspa-txcore decode-address kaspa:qr...
//
//   # Build and sign a transaction
//   kaspa-txcore build --input txid:index:address:amount \
//     --output address:amount --change kaspa:... --fee 1000 --key <hex>
//
//   # Inspect a signed payload
//   kaspa-txcore inspect payload.json
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/suffix-labs/kaspa-txcore/pkg/address"
	"github.com/suffix-labs/kaspa-txcore/pkg/api"
	"github.com/suffix-labs/kaspa-txcore/pkg/payuri"
	"github.com/suffix-labs/kaspa-txcore/pkg/tx"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "encode-address":
		cmdEncodeAddress(args, logger)
	case "decode-address":
		cmdDecodeAddress(args, logger)
	case "build":
		cmdBuild(args, logger)
	case "inspect":
		cmdInspect(args, logger)
	case "parse-uri":
		cmdParseURI(args, logger)
	case "generate-key":
		cmdGenerateKey(args, logger)
	case "version":
		cmdVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`kaspa-txcore - address codec and transaction signing toolbox

Usage:
  kaspa-txcore <command> [options]

Commands:
  encode-address               Encode a version byte and payload as an address
  decode-address <address>     Decode an address into its parts
  build                        Build and sign a transaction from UTXOs
  inspect <file|->             Summarize a signed transaction payload
  parse-uri <uri>              Parse a payment request URI
  generate-key                 Generate a private key with its addresses
  version                      Show version information
  help                         Show this help message

Examples:
  # Encode a 32-byte public key as a mainnet address
  kaspa-txcore encode-address --payload <64 hex chars>

  # Build a one-payment spend with change
  kaspa-txcore build \
    --input <txid>:<index>:<address>:<amount> \
    --output <address>:<amount> \
    --change <address> \
    --fee 1000 \
    --key <64 hex chars>

  # Inspect a payload from stdin
  kaspa-txcore build ... | kaspa-txcore inspect -

For more information, see: https://github.com/suffix-labs/kaspa-txcore`)
}

func cmdVersion() {
	fmt.Println("kaspa-txcore v0.1.0")
	fmt.Println("Address codec and transaction signing core for Kaspa wallets")
}

// parseArgs fills opts from args, exiting cleanly on --help.
func parseArgs(opts interface{}, args []string, logger *zap.Logger) []string {
	rest, err := flags.ParseArgs(opts, args)
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}
	return rest
}

type encodeAddressOptions struct {
	Prefix  string `long:"prefix" description:"network prefix" default:"kaspa"`
	Version uint8  `long:"version" description:"address version byte (0, 1, or 8)" default:"0"`
	Payload string `long:"payload" description:"payload bytes, hex encoded" required:"true"`
}

func cmdEncodeAddress(args []string, logger *zap.Logger) {
	var opts encodeAddressOptions
	parseArgs(&opts, args, logger)

	prefix, err := address.ParsePrefix(opts.Prefix)
	if err != nil {
		logger.Fatal("bad prefix", zap.Error(err))
	}
	payload, err := hex.DecodeString(opts.Payload)
	if err != nil {
		logger.Fatal("payload is not valid hex", zap.Error(err))
	}

	var addr address.Address
	switch opts.Version {
	case address.VersionPubKey:
		addr, err = address.FromPublicKey(prefix, payload)
	case address.VersionPubKeyECDSA:
		addr, err = address.FromECDSAPublicKey(prefix, payload)
	case address.VersionScriptHash:
		addr, err = address.FromScriptHash(prefix, payload)
	default:
		logger.Fatal("unsupported address version", zap.Uint8("version", opts.Version))
	}
	if err != nil {
		logger.Fatal("failed to encode address", zap.Error(err))
	}

	fmt.Println(addr.String())
}

type decodeAddressOptions struct {
	Network string `long:"network" description:"restrict to one network (empty = any)"`
}

func cmdDecodeAddress(args []string, logger *zap.Logger) {
	var opts decodeAddressOptions
	rest := parseArgs(&opts, args, logger)
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kaspa-txcore decode-address [--network <name>] <address>")
		os.Exit(1)
	}

	addr, err := address.Decode(rest[0], decodePrefixes(opts.Network, logger)...)
	if err != nil {
		logger.Fatal("failed to decode address", zap.Error(err))
	}

	fmt.Printf("Address: %s\n", addr.String())
	fmt.Printf("Prefix:  %s\n", addr.Prefix)
	fmt.Printf("Version: %d\n", addr.Version)
	fmt.Printf("Payload: %x (%d bytes)\n", addr.Payload, len(addr.Payload))

	if script, err := addr.ScriptPublicKey(); err == nil {
		fmt.Printf("Script:  %x\n", script)
	} else {
		fmt.Printf("Script:  (not derivable: %v)\n", err)
	}
}

// decodePrefixes maps a --network value to the prefixes Decode may accept:
// the one named network, or every well-known network when empty.
func decodePrefixes(network string, logger *zap.Logger) []address.Prefix {
	if network == "" {
		return []address.Prefix{
			address.PrefixMainnet, address.PrefixTestnet,
			address.PrefixSimnet, address.PrefixDevnet,
		}
	}
	prefix, err := address.ParsePrefix(network)
	if err != nil {
		logger.Fatal("bad network", zap.Error(err))
	}
	return []address.Prefix{prefix}
}

type buildOptions struct {
	Inputs        []string `long:"input" description:"UTXO to spend as txid:index:address:amount" required:"true"`
	Outputs       []string `long:"output" description:"payment as address:amount" required:"true"`
	ChangeAddress string   `long:"change" description:"change address" required:"true"`
	Fee           int64    `long:"fee" description:"fee in sompi" default:"0"`
	Key           string   `long:"key" description:"32-byte private key, hex encoded" required:"true"`
	Network       string   `long:"network" description:"network name" default:"kaspa"`
	DustThreshold uint64   `long:"dust-threshold" description:"minimum change worth creating (0 = default)"`
}

func cmdBuild(args []string, logger *zap.Logger) {
	var opts buildOptions
	parseArgs(&opts, args, logger)

	request := &api.BuildRequest{
		ChangeAddress: opts.ChangeAddress,
		Fee:           opts.Fee,
		PrivateKey:    opts.Key,
		Network:       opts.Network,
		DustThreshold: opts.DustThreshold,
	}

	for _, spec := range opts.Inputs {
		input, err := parseInputSpec(spec)
		if err != nil {
			logger.Fatal("bad --input", zap.String("spec", spec), zap.Error(err))
		}
		request.Inputs = append(request.Inputs, input)
	}
	for _, spec := range opts.Outputs {
		output, err := parseOutputSpec(spec)
		if err != nil {
			logger.Fatal("bad --output", zap.String("spec", spec), zap.Error(err))
		}
		request.Outputs = append(request.Outputs, output)
	}

	payloadJSON, err := api.BuildSignedTransaction(request)
	if err != nil {
		logger.Fatal("failed to build transaction", zap.Error(err))
	}

	logger.Info("transaction built",
		zap.Int("inputs", len(request.Inputs)),
		zap.Int("outputs", len(request.Outputs)),
		zap.Int("payloadBytes", len(payloadJSON)))

	// Payload goes to stdout so it can be piped; diagnostics stay on stderr.
	fmt.Println(string(payloadJSON))
}

// parseInputSpec parses "txid:index:address:amount". The address itself
// contains a colon, so the txid and index are taken from the front and the
// amount from the back.
func parseInputSpec(spec string) (api.UTXO, error) {
	first := strings.Index(spec, ":")
	if first < 0 {
		return api.UTXO{}, fmt.Errorf("expected txid:index:address:amount")
	}
	rest := spec[first+1:]
	second := strings.Index(rest, ":")
	last := strings.LastIndex(rest, ":")
	if second < 0 || last <= second {
		return api.UTXO{}, fmt.Errorf("expected txid:index:address:amount")
	}

	index, err := strconv.ParseUint(rest[:second], 10, 32)
	if err != nil {
		return api.UTXO{}, fmt.Errorf("bad index: %w", err)
	}
	amount, err := strconv.ParseUint(rest[last+1:], 10, 64)
	if err != nil {
		return api.UTXO{}, fmt.Errorf("bad amount: %w", err)
	}

	return api.UTXO{
		TxID:    spec[:first],
		Index:   uint32(index),
		Address: rest[second+1 : last],
		Amount:  amount,
	}, nil
}

// parseOutputSpec parses "address:amount", where the amount follows the
// last colon.
func parseOutputSpec(spec string) (api.Recipient, error) {
	last := strings.LastIndex(spec, ":")
	if last <= 0 {
		return api.Recipient{}, fmt.Errorf("expected address:amount")
	}
	amount, err := strconv.ParseUint(spec[last+1:], 10, 64)
	if err != nil {
		return api.Recipient{}, fmt.Errorf("bad amount: %w", err)
	}
	return api.Recipient{Address: spec[:last], Amount: amount}, nil
}

type inspectOptions struct {
	Network string `long:"network" description:"network for output address display" default:"kaspa"`
}

func cmdInspect(args []string, logger *zap.Logger) {
	var opts inspectOptions
	rest := parseArgs(&opts, args, logger)
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kaspa-txcore inspect [--network <name>] <payload.json | ->")
		os.Exit(1)
	}

	var payloadJSON []byte
	var err error
	if rest[0] == "-" {
		payloadJSON, err = io.ReadAll(os.Stdin)
	} else {
		payloadJSON, err = os.ReadFile(rest[0])
	}
	if err != nil {
		logger.Fatal("failed to read payload", zap.Error(err))
	}

	payload, err := api.DecodeSignedPayload(payloadJSON)
	if err != nil {
		logger.Fatal("payload rejected", zap.Error(err))
	}

	printPayloadSummary(payload, opts.Network, logger)
}

func printPayloadSummary(payload *tx.SignedPayload, network string, logger *zap.Logger) {
	prefix, err := address.ParsePrefix(network)
	if err != nil {
		logger.Fatal("bad network", zap.Error(err))
	}

	fmt.Printf("Version:      %d\n", payload.Transaction.Version)
	fmt.Printf("LockTime:     %s\n", payload.Transaction.LockTime)
	fmt.Printf("Subnetwork:   %s\n", payload.Transaction.SubnetworkID)
	fmt.Printf("AllowOrphan:  %v\n", payload.AllowOrphan)

	fmt.Printf("Inputs:       %d\n", len(payload.Transaction.Inputs))
	for i, input := range payload.Transaction.Inputs {
		fmt.Printf("  %d: %s:%d  sequence=%d sigOpCount=%d sigScript=%d hex chars\n",
			i, input.PreviousOutpoint.TransactionID, input.PreviousOutpoint.Index,
			input.Sequence, input.SigOpCount, len(input.SignatureScript))
	}

	fmt.Printf("Outputs:      %d\n", len(payload.Transaction.Outputs))
	var total uint64
	for i, output := range payload.Transaction.Outputs {
		line := fmt.Sprintf("  %d: %s sompi", i, output.Amount)

		if script, err := hex.DecodeString(output.ScriptPublicKey.Script); err == nil {
			if addr, err := address.ExtractScriptAddress(script, prefix); err == nil {
				line += "  -> " + addr.String()
			}
		}
		fmt.Println(line)

		if amount, err := strconv.ParseUint(output.Amount, 10, 64); err == nil {
			total += amount
		}
	}
	fmt.Printf("Total out:    %d sompi (%s KAS)\n", total, payuri.FormatAmount(total))
}

type parseURIOptions struct {
	Network string `long:"network" description:"restrict to one network (empty = any)"`
}

func cmdParseURI(args []string, logger *zap.Logger) {
	var opts parseURIOptions
	rest := parseArgs(&opts, args, logger)
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kaspa-txcore parse-uri [--network <name>] <uri>")
		os.Exit(1)
	}

	request, err := api.ParsePaymentRequest(rest[0], opts.Network)
	if err != nil {
		logger.Fatal("failed to parse URI", zap.Error(err))
	}

	fmt.Println("Payment Request:")
	fmt.Printf("  Address: %s\n", request.Address)

	if request.Amount != nil {
		fmt.Printf("  Amount:  %s KAS (%d sompi)\n", payuri.FormatAmount(*request.Amount), *request.Amount)
	} else {
		fmt.Println("  Amount:  (payer specified)")
	}
	if request.Label != nil {
		fmt.Printf("  Label:   %s\n", *request.Label)
	}
	if request.Message != nil {
		fmt.Printf("  Message: %s\n", *request.Message)
	}

	fmt.Printf("\nRe-encoded URI:\n%s\n", request.Encode())
}

type generateKeyOptions struct {
	Network string `long:"network" description:"network for the derived addresses" default:"kaspa"`
}

func cmdGenerateKey(args []string, logger *zap.Logger) {
	var opts generateKeyOptions
	parseArgs(&opts, args, logger)

	info, err := api.GenerateKey(opts.Network)
	if err != nil {
		logger.Fatal("failed to generate key", zap.Error(err))
	}

	fmt.Printf("Private key:        %s\n", info.PrivateKey)
	fmt.Printf("Schnorr public key: %s\n", info.SchnorrPublicKey)
	fmt.Printf("ECDSA public key:   %s\n", info.ECDSAPublicKey)
	fmt.Printf("Address:            %s\n", info.Address)
	fmt.Printf("ECDSA address:      %s\n", info.ECDSAAddress)
}
