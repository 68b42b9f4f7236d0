package tx

import (
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/scroogecoin-core/config"
	"github.com/Klingon-tech/scroogecoin-core/pkg/crypto"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// Validation errors.
var (
	ErrNoOutputs      = errors.New("transaction has no outputs")
	ErrDuplicateInput = errors.New("duplicate input")
	ErrOutputOverflow = errors.New("output values overflow")
	ErrMissingPubKey  = errors.New("input missing public key")
	ErrMissingSig     = errors.New("input missing signature")
	ErrInvalidSig     = errors.New("invalid signature")
	ErrTooManyInputs  = errors.New("too many inputs")
	ErrTooManyOutputs = errors.New("too many outputs")
)

// ValidateStructure checks transaction structure and basic rules that do
// not require access to the UTXO set: non-empty outputs, no duplicate
// inputs, no output-sum overflow, and presence of signature material on
// every input. A coinbase (zero inputs) transaction has no inputs to
// check.
func (tx *Transaction) ValidateStructure() error {
	if len(tx.Outputs) == 0 {
		return ErrNoOutputs
	}
	if len(tx.Inputs) > config.MaxTxInputs {
		return fmt.Errorf("%w: %d inputs, max %d", ErrTooManyInputs, len(tx.Inputs), config.MaxTxInputs)
	}
	if len(tx.Outputs) > config.MaxTxOutputs {
		return fmt.Errorf("%w: %d outputs, max %d", ErrTooManyOutputs, len(tx.Outputs), config.MaxTxOutputs)
	}

	seen := make(map[types.Outpoint]bool, len(tx.Inputs))
	for i, in := range tx.Inputs {
		if seen[in.PrevOut] {
			return fmt.Errorf("input %d: %w", i, ErrDuplicateInput)
		}
		seen[in.PrevOut] = true

		if len(in.PubKey) == 0 {
			return fmt.Errorf("input %d: %w", i, ErrMissingPubKey)
		}
		if len(in.Signature) == 0 {
			return fmt.Errorf("input %d: %w", i, ErrMissingSig)
		}
	}

	var totalOutput uint64
	for i, out := range tx.Outputs {
		if totalOutput > math.MaxUint64-out.Value {
			return fmt.Errorf("output %d: %w", i, ErrOutputOverflow)
		}
		totalOutput += out.Value
	}

	return nil
}

// VerifySignatures checks that every non-coinbase input carries a valid
// Schnorr signature over the transaction hash.
func (tx *Transaction) VerifySignatures() error {
	hash := tx.Hash()
	for i, in := range tx.Inputs {
		if !crypto.VerifySignature(hash[:], in.Signature, in.PubKey) {
			return fmt.Errorf("input %d: %w", i, ErrInvalidSig)
		}
	}
	return nil
}
