package selector

import (
	"github.com/Klingon-tech/scroogecoin-core/internal/utxopool"
	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
)

// Select finds, for every group of related proposals, the fee-maximizing
// subset that is jointly valid starting from pool, and returns the union
// of all groups' picks together with the total fee. pool itself is
// never mutated — each group searches against its own deep copy.
func Select(pool *utxopool.Pool, proposals []*tx.Transaction) (picked []*tx.Transaction, totalFee uint64) {
	groups := groupBatch(proposals)

	for _, g := range groups {
		working := pool.Copy()
		groupPicked, groupFee := searchGroup(working, g)
		picked = append(picked, groupPicked...)
		totalFee += groupFee
	}

	return picked, totalFee
}
