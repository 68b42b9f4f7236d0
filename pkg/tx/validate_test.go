package tx

import (
	"errors"
	"math"
	"testing"

	"github.com/Klingon-tech/scroogecoin-core/config"
	"github.com/Klingon-tech/scroogecoin-core/pkg/crypto"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// validTx creates a minimal valid signed transaction for testing.
func validTx(t *testing.T) *Transaction {
	t.Helper()
	key, _ := crypto.GenerateKey()
	b := NewBuilder().
		AddInput(types.Outpoint{TxID: types.Hash{0x01}, Index: 0}).
		AddOutput(1000, types.Address{0x02})
	b.Sign(key)
	return b.Build()
}

func TestValidateStructure_Valid(t *testing.T) {
	tx := validTx(t)
	if err := tx.ValidateStructure(); err != nil {
		t.Errorf("valid tx should pass: %v", err)
	}
}

func TestValidateStructure_NoOutputs(t *testing.T) {
	tx := &Transaction{
		Inputs: []Input{{
			PrevOut:   types.Outpoint{TxID: types.Hash{0x01}},
			Signature: []byte("sig"),
			PubKey:    []byte("key"),
		}},
	}
	err := tx.ValidateStructure()
	if !errors.Is(err, ErrNoOutputs) {
		t.Errorf("expected ErrNoOutputs, got: %v", err)
	}
}

func TestValidateStructure_DuplicateInput(t *testing.T) {
	same := types.Outpoint{TxID: types.Hash{0x01}, Index: 0}
	tx := &Transaction{
		Inputs: []Input{
			{PrevOut: same, Signature: []byte("s"), PubKey: []byte("k")},
			{PrevOut: same, Signature: []byte("s"), PubKey: []byte("k")},
		},
		Outputs: []Output{{Value: 1000}},
	}
	err := tx.ValidateStructure()
	if !errors.Is(err, ErrDuplicateInput) {
		t.Errorf("expected ErrDuplicateInput, got: %v", err)
	}
}

func TestValidateStructure_MissingPubKey(t *testing.T) {
	tx := &Transaction{
		Inputs:  []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}}, Signature: []byte("s")}},
		Outputs: []Output{{Value: 1000}},
	}
	err := tx.ValidateStructure()
	if !errors.Is(err, ErrMissingPubKey) {
		t.Errorf("expected ErrMissingPubKey, got: %v", err)
	}
}

func TestValidateStructure_MissingSig(t *testing.T) {
	tx := &Transaction{
		Inputs:  []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}}, PubKey: []byte("k")}},
		Outputs: []Output{{Value: 1000}},
	}
	err := tx.ValidateStructure()
	if !errors.Is(err, ErrMissingSig) {
		t.Errorf("expected ErrMissingSig, got: %v", err)
	}
}

func TestValidateStructure_ZeroValueOutputIsAllowed(t *testing.T) {
	// Rule 4 requires outputs >= 0, so a zero-value output is structurally fine.
	tx := &Transaction{
		Inputs:  []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}}, Signature: []byte("s"), PubKey: []byte("k")}},
		Outputs: []Output{{Value: 0}},
	}
	if err := tx.ValidateStructure(); err != nil {
		t.Errorf("zero-value output should be structurally valid: %v", err)
	}
}

func TestValidateStructure_OutputOverflow(t *testing.T) {
	tx := &Transaction{
		Inputs: []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}}, Signature: []byte("s"), PubKey: []byte("k")}},
		Outputs: []Output{
			{Value: math.MaxUint64},
			{Value: 1},
		},
	}
	err := tx.ValidateStructure()
	if !errors.Is(err, ErrOutputOverflow) {
		t.Errorf("expected ErrOutputOverflow, got: %v", err)
	}
}

func TestValidateStructure_Coinbase(t *testing.T) {
	coinbase := &Transaction{
		Outputs: []Output{{Value: 50000, Address: types.Address{0x01}}},
	}
	if err := coinbase.ValidateStructure(); err != nil {
		t.Errorf("coinbase tx should pass ValidateStructure: %v", err)
	}
}

func TestVerifySignatures_Coinbase(t *testing.T) {
	// A coinbase has no inputs to verify, so VerifySignatures is a no-op pass.
	coinbase := &Transaction{
		Outputs: []Output{{Value: 50000, Address: types.Address{0x01}}},
	}
	if err := coinbase.VerifySignatures(); err != nil {
		t.Errorf("coinbase tx should pass VerifySignatures: %v", err)
	}
}

func TestVerifySignatures_Valid(t *testing.T) {
	tx := validTx(t)
	if err := tx.VerifySignatures(); err != nil {
		t.Errorf("valid signatures should verify: %v", err)
	}
}

func TestVerifySignatures_WrongKey(t *testing.T) {
	key1, _ := crypto.GenerateKey()
	key2, _ := crypto.GenerateKey()

	b := NewBuilder().
		AddInput(types.Outpoint{TxID: types.Hash{0x01}, Index: 0}).
		AddOutput(1000, types.Address{0x02})
	b.Sign(key1)
	transaction := b.Build()

	transaction.Inputs[0].PubKey = key2.PublicKey()

	err := transaction.VerifySignatures()
	if !errors.Is(err, ErrInvalidSig) {
		t.Errorf("expected ErrInvalidSig, got: %v", err)
	}
}

func TestVerifySignatures_TamperedOutput(t *testing.T) {
	tx := validTx(t)

	tx.Outputs[0].Value = 9999

	err := tx.VerifySignatures()
	if !errors.Is(err, ErrInvalidSig) {
		t.Errorf("tampered tx should fail verification: %v", err)
	}
}

func TestVerifySignatures_CorruptedSig(t *testing.T) {
	tx := validTx(t)

	tx.Inputs[0].Signature[0] ^= 0xFF

	err := tx.VerifySignatures()
	if !errors.Is(err, ErrInvalidSig) {
		t.Errorf("corrupted sig should fail: %v", err)
	}
}

func TestValidateStructure_TooManyInputs(t *testing.T) {
	inputs := make([]Input, config.MaxTxInputs+1)
	for i := range inputs {
		inputs[i] = Input{
			PrevOut:   types.Outpoint{TxID: types.Hash{byte(i >> 8), byte(i)}, Index: uint32(i)},
			Signature: []byte("s"),
			PubKey:    []byte("k"),
		}
	}
	transaction := &Transaction{
		Inputs:  inputs,
		Outputs: []Output{{Value: 1000}},
	}
	err := transaction.ValidateStructure()
	if !errors.Is(err, ErrTooManyInputs) {
		t.Errorf("expected ErrTooManyInputs, got: %v", err)
	}
}

func TestValidateStructure_TooManyInputs_AtLimit(t *testing.T) {
	inputs := make([]Input, config.MaxTxInputs)
	for i := range inputs {
		inputs[i] = Input{
			PrevOut:   types.Outpoint{TxID: types.Hash{byte(i >> 8), byte(i)}, Index: uint32(i)},
			Signature: []byte("s"),
			PubKey:    []byte("k"),
		}
	}
	transaction := &Transaction{
		Inputs:  inputs,
		Outputs: []Output{{Value: 1000}},
	}
	err := transaction.ValidateStructure()
	if errors.Is(err, ErrTooManyInputs) {
		t.Errorf("exactly MaxTxInputs should not trigger ErrTooManyInputs")
	}
}

func TestValidateStructure_TooManyOutputs(t *testing.T) {
	outputs := make([]Output, config.MaxTxOutputs+1)
	for i := range outputs {
		outputs[i] = Output{Value: 1}
	}
	transaction := &Transaction{
		Inputs:  []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}}, Signature: []byte("s"), PubKey: []byte("k")}},
		Outputs: outputs,
	}
	err := transaction.ValidateStructure()
	if !errors.Is(err, ErrTooManyOutputs) {
		t.Errorf("expected ErrTooManyOutputs, got: %v", err)
	}
}

func TestValidateStructure_TooManyOutputs_AtLimit(t *testing.T) {
	outputs := make([]Output, config.MaxTxOutputs)
	for i := range outputs {
		outputs[i] = Output{Value: 1}
	}
	transaction := &Transaction{
		Inputs:  []Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}}, Signature: []byte("s"), PubKey: []byte("k")}},
		Outputs: outputs,
	}
	err := transaction.ValidateStructure()
	if errors.Is(err, ErrTooManyOutputs) {
		t.Errorf("exactly MaxTxOutputs should not trigger ErrTooManyOutputs")
	}
}
