package selector

import (
	"github.com/Klingon-tech/scroogecoin-core/internal/utxopool"
	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// searchGroup finds the fee-maximizing subset of a group's members that
// is jointly valid against pool via backtracking. pool is mutated
// in-place during the search and is exactly restored before returning.
func searchGroup(pool *utxopool.Pool, group Group) ([]*tx.Transaction, uint64) {
	conflicts := conflictSets(group.Members)
	return backtrack(pool, group.Members, conflicts, nil, 0)
}

// conflictSets maps each member's hash to whether it shares at least one
// claimed UTXO input with some other member of the group.
func conflictSets(members []*tx.Transaction) map[types.Hash]bool {
	byInput := make(map[types.Outpoint][]types.Hash)
	for _, m := range members {
		id := m.Hash()
		for _, in := range m.Inputs {
			byInput[in.PrevOut] = append(byInput[in.PrevOut], id)
		}
	}
	conflicted := make(map[types.Hash]bool, len(members))
	for _, ids := range byInput {
		if len(ids) > 1 {
			for _, id := range ids {
				conflicted[id] = true
			}
		}
	}
	return conflicted
}

// backtrack pops the front of remaining and explores the take/skip
// branches the max-fee selector requires: take is explored whenever t
// validates against the current pool; skip is explored whenever t
// conflicts with another group member or fails to validate. When both
// branches run, the higher-fee result wins; ties favor the take branch
// because it is explored first.
func backtrack(
	pool *utxopool.Pool,
	remaining []*tx.Transaction,
	conflicted map[types.Hash]bool,
	picked []*tx.Transaction,
	fee uint64,
) ([]*tx.Transaction, uint64) {
	if len(remaining) == 0 {
		return picked, fee
	}

	t := remaining[0]
	rest := remaining[1:]
	id := t.Hash()
	hasConflict := conflicted[id]

	txFee, err := t.ValidateAgainstPool(pool)
	isValid := err == nil

	var bestPicked []*tx.Transaction
	var bestFee uint64
	haveBest := false

	if isValid {
		spent := pool.SnapshotInputs(t)
		pool.Apply(t)
		takePicked, takeFee := backtrack(pool, rest, conflicted, appendTx(picked, t), fee+txFee)
		pool.Undo(t, spent)

		bestPicked, bestFee, haveBest = takePicked, takeFee, true
	}

	if hasConflict || !isValid {
		skipPicked, skipFee := backtrack(pool, rest, conflicted, picked, fee)
		if !haveBest || skipFee > bestFee {
			bestPicked, bestFee = skipPicked, skipFee
		}
	}

	return bestPicked, bestFee
}

// appendTx returns a fresh slice with t appended, never aliasing picked's
// backing array — both the take and skip branches read from picked
// independently and must not observe each other's writes.
func appendTx(picked []*tx.Transaction, t *tx.Transaction) []*tx.Transaction {
	next := make([]*tx.Transaction, len(picked)+1)
	copy(next, picked)
	next[len(picked)] = t
	return next
}
