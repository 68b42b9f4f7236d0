// Package mempool holds transactions proposed for inclusion in a future
// block. Unlike the teacher's fee-rate-prioritized mempool, this pool
// makes no acceptance or eviction decisions of its own: that judgment
// belongs entirely to internal/selector and internal/epoch when a block
// is assembled. The pool itself is a flat, append-only set of candidate
// transactions, deduplicated by digest.
package mempool

import (
	"sort"
	"sync"

	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// Pool holds pending transactions keyed by digest.
type Pool struct {
	mu  sync.Mutex
	txs map[types.Hash]*tx.Transaction
}

// New creates an empty mempool.
func New() *Pool {
	return &Pool{txs: make(map[types.Hash]*tx.Transaction)}
}

// Add inserts transaction into the pool. A transaction already present
// by digest is a silent no-op, per the append-only contract.
func (p *Pool) Add(transaction *tx.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	hash := transaction.Hash()
	if _, exists := p.txs[hash]; exists {
		return
	}
	p.txs[hash] = transaction
}

// Remove drops every transaction in txs from the pool, by digest. Used
// after a block is installed to cull the transactions it confirmed.
func (p *Pool) Remove(txs []*tx.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range txs {
		delete(p.txs, t.Hash())
	}
}

// Has reports whether a transaction with the given digest is pending.
func (p *Pool) Has(hash types.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, exists := p.txs[hash]
	return exists
}

// Len returns the number of pending transactions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.txs)
}

// List returns every pending transaction, ordered by digest ascending
// for deterministic iteration.
func (p *Pool) List() []*tx.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*tx.Transaction, 0, len(p.txs))
	for _, t := range p.txs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Hash(), out[j].Hash()
		return a.Less(b)
	})
	return out
}

// Copy returns an independent mempool holding the same transactions —
// used by internal/ledger.GetTransactionPool, which must never leak a
// reference to its own live pool.
func (p *Pool) Copy() *Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	cp := New()
	for h, t := range p.txs {
		cp.txs[h] = t
	}
	return cp
}
