// Package utxopool maintains the in-memory set of unspent transaction
// outputs that transactions are validated against.
package utxopool

import (
	"sort"

	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// entry is a single UTXO's output: its value and owning address. The
// outpoint that claims it is the entry's map key.
type entry struct {
	value   uint64
	address types.Address
}

// Pool is an in-memory set of unspent transaction outputs keyed by
// outpoint. It exclusively owns its entries — Copy performs a deep,
// independent copy, and no method ever aliases another Pool's map.
type Pool struct {
	utxos map[types.Outpoint]entry
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{utxos: make(map[types.Outpoint]entry)}
}

// Get returns the value and owning address of the UTXO at outpoint, and
// whether it exists. Satisfies tx.UTXOProvider.
func (p *Pool) Get(outpoint types.Outpoint) (value uint64, address types.Address, ok bool) {
	e, ok := p.utxos[outpoint]
	return e.value, e.address, ok
}

// Contains reports whether outpoint is currently unspent in the pool.
func (p *Pool) Contains(outpoint types.Outpoint) bool {
	_, ok := p.utxos[outpoint]
	return ok
}

// Put inserts or overwrites the UTXO at outpoint.
func (p *Pool) Put(outpoint types.Outpoint, value uint64, address types.Address) {
	p.utxos[outpoint] = entry{value: value, address: address}
}

// Delete removes the UTXO at outpoint, if present.
func (p *Pool) Delete(outpoint types.Outpoint) {
	delete(p.utxos, outpoint)
}

// Len returns the number of UTXOs currently in the pool.
func (p *Pool) Len() int {
	return len(p.utxos)
}

// Copy returns a deep, independent copy of the pool.
func (p *Pool) Copy() *Pool {
	cp := make(map[types.Outpoint]entry, len(p.utxos))
	for k, v := range p.utxos {
		cp[k] = v
	}
	return &Pool{utxos: cp}
}

// Apply removes t's claimed inputs and inserts its outputs, indexed by
// t's digest. Callers must have already validated t against the pool
// (e.g. via tx.Transaction.ValidateAgainstPool) — Apply does not
// re-validate and will happily corrupt the pool invariant if fed an
// invalid transaction.
func (p *Pool) Apply(t *tx.Transaction) {
	for _, in := range t.Inputs {
		delete(p.utxos, in.PrevOut)
	}
	txID := t.Hash()
	for i, out := range t.Outputs {
		op := types.Outpoint{TxID: txID, Index: uint32(i)}
		p.utxos[op] = entry{value: out.Value, address: out.Address}
	}
}

// Undo reverses a prior Apply(t): removes t's outputs and reinserts the
// inputs it had consumed, restoring them to the values and addresses
// given in spent (one entry per input, same order as t.Inputs). Used by
// the selector's backtracking search to unwind a speculative Apply
// without replaying the pool from scratch.
func (p *Pool) Undo(t *tx.Transaction, spent []SpentInput) {
	txID := t.Hash()
	for i := range t.Outputs {
		delete(p.utxos, types.Outpoint{TxID: txID, Index: uint32(i)})
	}
	for i, in := range t.Inputs {
		p.utxos[in.PrevOut] = entry{value: spent[i].Value, address: spent[i].Address}
	}
}

// SpentInput captures the value and address of a UTXO immediately before
// it was consumed by Apply, so Undo can restore it exactly.
type SpentInput struct {
	Value   uint64
	Address types.Address
}

// SnapshotInputs records the current pool state of every input t claims,
// for later use with Undo. Call this before Apply.
func (p *Pool) SnapshotInputs(t *tx.Transaction) []SpentInput {
	spent := make([]SpentInput, len(t.Inputs))
	for i, in := range t.Inputs {
		e := p.utxos[in.PrevOut]
		spent[i] = SpentInput{Value: e.value, Address: e.address}
	}
	return spent
}

// Outpoints returns every outpoint currently in the pool, sorted for
// deterministic iteration (TxID then Index ascending).
func (p *Pool) Outpoints() []types.Outpoint {
	ops := make([]types.Outpoint, 0, len(p.utxos))
	for op := range p.utxos {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		a, b := ops[i], ops[j]
		for k := 0; k < types.HashSize; k++ {
			if a.TxID[k] != b.TxID[k] {
				return a.TxID[k] < b.TxID[k]
			}
		}
		return a.Index < b.Index
	})
	return ops
}
