package gossip

import (
	"sort"

	"github.com/Klingon-tech/scroogecoin-core/config"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// detectMalicious applies the malicious-followee heuristics for the
// round just received, comparing nextTxCount against
// lastTxCountPerFollowee. A no-op before the second round, since the
// first round has no prior count to compare against.
//
// The heuristics below must run in this exact order: later thresholds
// read followee counts that shrink as earlier checks mark more
// followees malicious, and the malicious set itself only ever grows —
// once marked, a followee is never reconsidered, the same
// never-unmarks posture as the teacher's ban manager.
func (n *Node) detectMalicious(nextTxCount []int) {
	if n.currRound <= 1 {
		return
	}

	for f := range n.followees {
		if !n.isActiveFollowee(f) {
			continue
		}

		// 1. Monotonicity violation: a legitimate followee's reported
		// transaction count never decreases round over round.
		if nextTxCount[f] < n.lastTxCountPerFollowee[f] {
			n.malicious[f] = true
			continue
		}

		// 2. Went silent after giving the network time to converge.
		if n.currRound >= 3 && nextTxCount[f] == 0 {
			n.malicious[f] = true
			continue
		}

		// 3. Under-propagating relative to the expected initial mass.
		if n.currRound > n.numRounds/2 {
			floor := 2 * float64(config.DefaultNumValidTxs) * n.pTxDistribution
			if float64(nextTxCount[f]) < floor {
				n.malicious[f] = true
				continue
			}
		}
	}

	// 4. Peace-believer regression: a followee that has flagged a tx
	// before but skipped it this round is no longer trustworthy.
	//
	// Iterated in hash-sorted order, not map order: heuristics 4 and 5
	// both read and write n.malicious, so which tx is processed first
	// can change the active-followee denominator heuristic 5 uses for a
	// tx processed later. Sorting first makes the result independent of
	// Go's randomized map iteration, the same snapshot-then-sort pattern
	// internal/mempool's List and internal/blocktree's ordered already
	// use for externally observed iteration.
	hashes := make([]types.Hash, 0, len(n.believers))
	for h := range n.believers {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i].Less(hashes[j]) })

	for _, h := range hashes {
		rec := n.believers[h]
		peaceBelievers := 0
		for f := range rec.everFlagged {
			if !n.isActiveFollowee(f) {
				continue
			}
			if rec.flagged[f] {
				peaceBelievers++
			} else {
				n.malicious[f] = true
			}
		}

		// 5. Late-round consensus: once most of the survivors agree on a
		// tx, anyone who has never flagged it is classified malicious.
		if n.currRound > 2*n.numRounds/3 {
			activeCount := n.activeFolloweeCount()
			if activeCount > 0 && float64(peaceBelievers) > 0.95*float64(activeCount) {
				for f := range n.followees {
					if n.isActiveFollowee(f) && !rec.everFlagged[f] {
						n.malicious[f] = true
					}
				}
			}
		}
	}
}

// activeFolloweeCount returns the number of followees not yet
// classified malicious.
func (n *Node) activeFolloweeCount() int {
	count := 0
	for f := range n.followees {
		if n.isActiveFollowee(f) {
			count++
		}
	}
	return count
}
