package spend

import (
	"fmt"

	"github.com/suffix-labs/kaspa-txcore/pkg/address"
	"github.com/suffix-labs/kaspa-txcore/pkg/tx"
)

// buildUnsignedTransaction assembles the transaction skeleton: fixed
// version 0, lock time 0, native subnetwork, one input record per selected
// UTXO (sequence 0, one sig-op, empty signature script), one output record
// per payment, plus a change output when the leftover clears the dust
// threshold.
func buildUnsignedTransaction(request *Request) (*tx.Transaction, error) {
	transaction := &tx.Transaction{
		Version:      0,
		LockTime:     0,
		SubnetworkID: tx.SubnetworkIDNative,
		Inputs:       make([]tx.Input, 0, len(request.Inputs)),
		Outputs:      make([]tx.Output, 0, len(request.Outputs)+1),
	}

	var totalInput uint64
	for i := range request.Inputs {
		input := &request.Inputs[i]

		transactionID, err := tx.NewTransactionIDFromString(input.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}

		script, err := address.ScriptPublicKey(input.Address, request.AllowedPrefixes...)
		if err != nil {
			return nil, fmt.Errorf("input %d address %q: %w", i, input.Address, err)
		}

		transaction.Inputs = append(transaction.Inputs, tx.Input{
			PreviousOutpoint: tx.Outpoint{TransactionID: transactionID, Index: input.Index},
			Sequence:         0,
			SigOpCount:       1,
			UTXOEntry: &tx.UTXOEntry{
				Amount:          input.Amount,
				ScriptPublicKey: tx.ScriptPublicKey{Version: 0, Script: script},
			},
		})
		totalInput += input.Amount
	}

	var totalOutput uint64
	for i := range request.Outputs {
		output := &request.Outputs[i]

		script, err := address.ScriptPublicKey(output.Address, request.AllowedPrefixes...)
		if err != nil {
			return nil, fmt.Errorf("output %d address %q: %w", i, output.Address, err)
		}

		transaction.Outputs = append(transaction.Outputs, tx.Output{
			Amount:          output.Amount,
			ScriptPublicKey: tx.ScriptPublicKey{Version: 0, Script: script},
		})
		totalOutput += output.Amount
	}

	change, err := changeAmount(totalInput, totalOutput, uint64(request.Fee))
	if err != nil {
		return nil, err
	}

	dustThreshold := request.DustThreshold
	if dustThreshold == 0 {
		dustThreshold = DefaultDustThreshold
	}

	if change >= dustThreshold {
		script, err := address.ScriptPublicKey(request.ChangeAddress, request.AllowedPrefixes...)
		if err != nil {
			return nil, fmt.Errorf("change address %q: %w", request.ChangeAddress, err)
		}
		transaction.Outputs = append(transaction.Outputs, tx.Output{
			Amount:          change,
			ScriptPublicKey: tx.ScriptPublicKey{Version: 0, Script: script},
		})
	}

	return transaction, nil
}

// changeAmount computes totalInput - totalOutput - fee, guarding each
// subtraction against unsigned wraparound.
func changeAmount(totalInput, totalOutput, fee uint64) (uint64, error) {
	if totalInput < totalOutput {
		return 0, fmt.Errorf("%w: inputs %d do not cover outputs %d plus fee %d",
			ErrInsufficientBalance, totalInput, totalOutput, fee)
	}
	remainder := totalInput - totalOutput
	if remainder < fee {
		return 0, fmt.Errorf("%w: inputs %d do not cover outputs %d plus fee %d",
			ErrInsufficientBalance, totalInput, totalOutput, fee)
	}
	return remainder - fee, nil
}
