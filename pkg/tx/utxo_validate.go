package tx

import (
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/scroogecoin-core/pkg/crypto"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// UTXO-aware validation errors.
var (
	ErrInputNotFound   = errors.New("input UTXO not found")
	ErrInsufficientFee = errors.New("insufficient fee")
	ErrInputOverflow   = errors.New("input values overflow")
	ErrAddressMismatch = errors.New("input public key does not match UTXO owner")
)

// UTXOProvider provides read-only access to a UTXO set for validation.
// *internal/utxopool.Pool implements this interface.
type UTXOProvider interface {
	Get(outpoint types.Outpoint) (value uint64, address types.Address, ok bool)
}

// ValidateAgainstPool applies the five Scrooge rules to tx against the
// given UTXO pool:
//
//  1. every claimed input is in the pool,
//  2. every input's signature verifies against the address that owns the
//     referenced output and against the canonical bytes of this transaction,
//  3. no UTXO is claimed by more than one input of this transaction,
//  4. all output values are non-negative,
//  5. the sum of input values is at least the sum of output values.
//
// Returns the transaction's fee (total input value minus total output
// value) on success.
func (tx *Transaction) ValidateAgainstPool(pool UTXOProvider) (uint64, error) {
	if err := tx.ValidateStructure(); err != nil {
		return 0, err
	}

	var totalInput uint64
	for i, in := range tx.Inputs {
		value, owner, ok := pool.Get(in.PrevOut)
		if !ok {
			return 0, fmt.Errorf("input %d (%s): %w", i, in.PrevOut, ErrInputNotFound)
		}
		if crypto.AddressFromPubKey(in.PubKey) != owner {
			return 0, fmt.Errorf("input %d (%s): %w", i, in.PrevOut, ErrAddressMismatch)
		}
		if totalInput > math.MaxUint64-value {
			return 0, fmt.Errorf("input %d: %w", i, ErrInputOverflow)
		}
		totalInput += value
	}

	if err := tx.VerifySignatures(); err != nil {
		return 0, err
	}

	totalOutput, err := tx.TotalOutputValue()
	if err != nil {
		return 0, fmt.Errorf("output overflow: %w", err)
	}
	if totalInput < totalOutput {
		return 0, fmt.Errorf("%w: inputs=%d outputs=%d", ErrInsufficientFee, totalInput, totalOutput)
	}

	return totalInput - totalOutput, nil
}
