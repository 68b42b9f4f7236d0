// Package gossip implements a single Byzantine-tolerant consensus node
// for a round-based transaction-gossip simulation: it listens to a fixed
// set of followees, accumulates a pending transaction set, and learns
// over rounds which followees are misbehaving.
//
// Grounded on the teacher's internal/consensus.ValidatorTracker for the
// in-memory per-peer stats map with a getOrCreate helper, and on
// internal/p2p.BanManager's "scores only grow, a ban is never lifted"
// state machine — both adapted from live-node liveness tracking into
// this package's round-driven, harness-controlled bookkeeping. Unlike
// those teacher types, Node carries no mutex: the simulation harness
// drives every node single-threaded within a send-all/receive-all
// barrier per round, so there is no concurrent access to guard against.
package gossip

import (
	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// Candidate is one followee's claim that it has seen a transaction,
// delivered to ReceiveFromFollowees at most once per (tx, sender) pair
// by the harness.
type Candidate struct {
	Tx     *tx.Transaction
	Sender int
}

// believerRecord tracks, for one transaction, which followees have
// flagged it in the current round and which have ever flagged it across
// all rounds. The per-round flags reset each round; everFlagged only
// grows, mirroring the monotonic bookkeeping the teacher's ban scores
// use.
type believerRecord struct {
	round       int
	flagged     map[int]bool // followee index -> flagged this round
	everFlagged map[int]bool // followee index -> has ever flagged
}

// Node is one participant in the gossip simulation.
type Node struct {
	pGraph          float64
	pMalicious      float64
	pTxDistribution float64
	numRounds       int

	followees []bool
	pending   map[types.Hash]*tx.Transaction
	malicious map[int]bool
	believers map[types.Hash]*believerRecord

	lastTxCountPerFollowee []int
	currRound              int
}

// New constructs a node configured with the simulation priors used by
// its malicious-detection heuristics. numFollowees sizes the
// per-followee counters; the actual followee set is supplied later via
// SetFollowees.
func New(numFollowees int, pGraph, pMalicious, pTxDistribution float64, numRounds int) *Node {
	return &Node{
		pGraph:                 pGraph,
		pMalicious:             pMalicious,
		pTxDistribution:        pTxDistribution,
		numRounds:              numRounds,
		pending:                make(map[types.Hash]*tx.Transaction),
		malicious:              make(map[int]bool),
		believers:              make(map[types.Hash]*believerRecord),
		lastTxCountPerFollowee: make([]int, numFollowees),
	}
}

// SetFollowees installs the set of node indices this node listens to.
// Called once, before SetPendingTransaction.
func (n *Node) SetFollowees(isFollowee []bool) {
	n.followees = isFollowee
}

// SetPendingTransaction seeds the node's initial pending set. Called
// once, after SetFollowees.
func (n *Node) SetPendingTransaction(initial []*tx.Transaction) {
	for _, t := range initial {
		n.pending[t.Hash()] = t
	}
}

// SendToFollowers returns the node's current pending set and advances
// the round counter. This node reveals its whole pending set on every
// call — the primary variant from the distilled specification. The
// threshold-filtered alternative (reveal only transactions believed by a
// sufficient fraction of followers) is deliberately not implemented; see
// the project's design notes.
func (n *Node) SendToFollowers() []*tx.Transaction {
	out := make([]*tx.Transaction, 0, len(n.pending))
	for _, t := range n.pending {
		out = append(out, t)
	}
	n.currRound++
	return out
}

// getOrCreateBeliever returns the believer record for hash, creating an
// empty one on first use.
func (n *Node) getOrCreateBeliever(hash types.Hash) *believerRecord {
	rec, ok := n.believers[hash]
	if !ok {
		rec = &believerRecord{
			round:       n.currRound,
			flagged:     make(map[int]bool),
			everFlagged: make(map[int]bool),
		}
		n.believers[hash] = rec
	}
	return rec
}

// isActiveFollowee reports whether index f is a followee not yet
// classified malicious.
func (n *Node) isActiveFollowee(f int) bool {
	return f >= 0 && f < len(n.followees) && n.followees[f] && !n.malicious[f]
}

// Followees returns the indices this node follows, regardless of
// whether they have since been classified malicious.
func (n *Node) Followees() []int {
	var out []int
	for f, isFollowee := range n.followees {
		if isFollowee {
			out = append(out, f)
		}
	}
	return out
}

// PendingCount returns the number of transactions currently in this
// node's pending set.
func (n *Node) PendingCount() int {
	return len(n.pending)
}

// MaliciousCount returns the number of followees this node has
// classified malicious so far.
func (n *Node) MaliciousCount() int {
	return len(n.malicious)
}

// ReceiveFromFollowees absorbs one round's candidate reports: it
// advances every believer record to the current round, admits
// candidates from active (non-malicious) followees into pending, and
// then runs malicious detection before rolling next_tx_count into
// last_tx_count_per_followee for the next round.
func (n *Node) ReceiveFromFollowees(candidates []Candidate) {
	for _, rec := range n.believers {
		if rec.round != n.currRound {
			rec.round = n.currRound
			rec.flagged = make(map[int]bool)
		}
	}

	nextTxCount := make([]int, len(n.lastTxCountPerFollowee))
	for _, c := range candidates {
		if !n.isActiveFollowee(c.Sender) {
			continue
		}
		hash := c.Tx.Hash()
		n.pending[hash] = c.Tx

		rec := n.getOrCreateBeliever(hash)
		rec.flagged[c.Sender] = true
		rec.everFlagged[c.Sender] = true

		nextTxCount[c.Sender]++
	}

	n.detectMalicious(nextTxCount)

	n.lastTxCountPerFollowee = nextTxCount
}
