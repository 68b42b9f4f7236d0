// Package selector picks the fee-maximizing mutually-valid subset of a
// batch of proposed transactions against a prior UTXO pool.
package selector

import (
	"sort"

	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// Group is a set of proposals whose conflicts and dependencies are
// closed under each other: picks inside one group cannot affect the
// validity of transactions in another group.
type Group struct {
	Members []*tx.Transaction
}

// groupBatch partitions proposals into conflict/dependency-closed groups
// by seeding a worklist ordered by descending input count (ties broken
// by descending transaction hash) and DFS-closing each seed over its
// dependencies, conflicts, and descendants within the batch.
func groupBatch(proposals []*tx.Transaction) []Group {
	byID := make(map[types.Hash]*tx.Transaction, len(proposals))
	for _, p := range proposals {
		byID[p.Hash()] = p
	}

	// spenders maps a UTXO key to every proposal in the batch that
	// claims it as an input — this captures both conflicts (two
	// proposals claiming the same pre-existing UTXO) and intra-batch
	// chaining (a proposal spending another proposal's output).
	spenders := make(map[types.Outpoint][]types.Hash)
	for _, p := range proposals {
		id := p.Hash()
		for _, in := range p.Inputs {
			spenders[in.PrevOut] = append(spenders[in.PrevOut], id)
		}
	}

	worklist := make([]*tx.Transaction, len(proposals))
	copy(worklist, proposals)
	sort.Slice(worklist, func(i, j int) bool {
		a, b := worklist[i], worklist[j]
		if len(a.Inputs) != len(b.Inputs) {
			return len(a.Inputs) > len(b.Inputs) // descending input count
		}
		ha, hb := a.Hash(), b.Hash()
		return hashGreater(ha, hb) // descending id
	})

	visited := make(map[types.Hash]bool, len(proposals))
	var groups []Group

	for _, seed := range worklist {
		seedID := seed.Hash()
		if visited[seedID] {
			continue
		}

		var members []*tx.Transaction
		stack := []types.Hash{seedID}
		visited[seedID] = true

		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			t := byID[id]
			members = append(members, t)

			neighbors := make(map[types.Hash]bool)

			// (a) dependencies: proposals in the batch that own an
			// output this tx spends.
			for _, in := range t.Inputs {
				if dep, ok := byID[in.PrevOut.TxID]; ok {
					neighbors[dep.Hash()] = true
				}
			}
			// (b) conflicts: other proposals claiming the same input.
			for _, in := range t.Inputs {
				for _, other := range spenders[in.PrevOut] {
					neighbors[other] = true
				}
			}
			// (c) descendants: proposals spending this tx's own outputs.
			for i := range t.Outputs {
				op := types.Outpoint{TxID: id, Index: uint32(i)}
				for _, other := range spenders[op] {
					neighbors[other] = true
				}
			}

			for n := range neighbors {
				if !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}

		groups = append(groups, Group{Members: members})
	}

	return groups
}

func hashGreater(a, b types.Hash) bool {
	for i := 0; i < types.HashSize; i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
