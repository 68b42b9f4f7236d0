// Package epoch applies a batch of proposed transactions to a UTXO pool
// using a greedy fixed-point rule: repeatedly scan the batch, applying
// any transaction that is currently valid, until a full pass applies
// none.
package epoch

import (
	"github.com/Klingon-tech/scroogecoin-core/internal/utxopool"
	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
)

// HandleTxs applies as many of txs to pool as it can, in the order
// dependencies become satisfiable: each pass scans the remaining
// candidates in their given order and applies every transaction that
// currently validates against the working pool; passes repeat until one
// pass applies nothing. The caller's pool is mutated in place; result is
// returned for convenience and is the same pool.
//
// Grounded on the teacher's internal/chain.applyBlock validate-then-mutate
// style, restructured here as a standalone function over a caller-supplied
// pool rather than a stateful chain method, since selecting and applying are
// separate concerns in this design.
func HandleTxs(pool *utxopool.Pool, txs []*tx.Transaction) (applied []*tx.Transaction, result *utxopool.Pool) {
	remaining := make([]*tx.Transaction, len(txs))
	copy(remaining, txs)

	for {
		var progressed bool
		next := remaining[:0:0]

		for _, t := range remaining {
			if _, err := t.ValidateAgainstPool(pool); err != nil {
				next = append(next, t)
				continue
			}
			pool.Apply(t)
			applied = append(applied, t)
			progressed = true
		}

		remaining = next
		if !progressed {
			break
		}
	}

	return applied, pool
}
