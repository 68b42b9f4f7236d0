// Package ledger wraps internal/blocktree behind the blockchain facade
// operations: constructing from a genesis block, proposing transactions,
// and installing new blocks all-or-nothing.
//
// Grounded on the teacher's internal/chain.Chain for the facade shape
// (constructor validating and installing genesis, mutex-guarded mutating
// methods, State()-style getters) adapted to a pure in-memory tree with
// no storage.DB, no consensus engine, and no sub-chain/staking handler
// callbacks — none of those concerns are in scope here.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/scroogecoin-core/internal/blocktree"
	"github.com/Klingon-tech/scroogecoin-core/internal/epoch"
	"github.com/Klingon-tech/scroogecoin-core/internal/log"
	"github.com/Klingon-tech/scroogecoin-core/internal/mempool"
	"github.com/Klingon-tech/scroogecoin-core/internal/utxopool"
	"github.com/Klingon-tech/scroogecoin-core/pkg/block"
	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
)

// ErrInvalidGenesis is returned when the supplied genesis block fails
// structural validation. This is a programming-contract violation: the
// caller constructed a malformed genesis and must fix it, not retry.
var ErrInvalidGenesis = errors.New("invalid genesis block")

// Blockchain is the ledger facade: a block tree plus a pending
// transaction pool.
type Blockchain struct {
	mu   sync.Mutex
	tree *blocktree.Tree
	pool *mempool.Pool
}

// New constructs a Blockchain from a genesis block: validates it
// structurally, derives its UTXO pool by running the epoch handler over
// any non-coinbase transactions and then inserting the coinbase's
// outputs, and installs it as the tree's root at height 1. Returns
// ErrInvalidGenesis if the genesis block itself does not validate —
// this is fatal at construction time, the same way the teacher's
// Chain.InitFromGenesis refuses to build on a malformed genesis.
func New(genesis *block.Block, cutOffAge uint64) (*Blockchain, error) {
	if err := genesis.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGenesis, err)
	}

	utxos := utxopool.New()
	coinbase := genesis.Coinbase()
	rest := genesis.Transactions[1:]

	applied, _ := epoch.HandleTxs(utxos, rest)
	if len(applied) != len(rest) {
		return nil, fmt.Errorf("%w: %d of %d genesis transactions rejected",
			ErrInvalidGenesis, len(rest)-len(applied), len(rest))
	}
	utxos.Apply(coinbase)

	tree := blocktree.New(cutOffAge)
	tree.InsertGenesis(genesis, utxos)

	return &Blockchain{
		tree: tree,
		pool: mempool.New(),
	}, nil
}

// GetMaxHeightBlock returns the block at the tree's current head.
func (b *Blockchain) GetMaxHeightBlock() *block.Block {
	b.mu.Lock()
	defer b.mu.Unlock()

	head, ok := b.tree.Head()
	if !ok {
		return nil
	}
	return head.Block
}

// GetMaxHeightUTXOPool returns a copy of the UTXO pool resulting from the
// tree's current head — never a reference to the live pool, so callers
// cannot observe or corrupt ledger-internal state.
func (b *Blockchain) GetMaxHeightUTXOPool() *utxopool.Pool {
	b.mu.Lock()
	defer b.mu.Unlock()

	head, ok := b.tree.Head()
	if !ok {
		return utxopool.New()
	}
	return head.Pool.Copy()
}

// GetTransactionPool returns a copy of the pending transaction pool.
func (b *Blockchain) GetTransactionPool() *mempool.Pool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pool.Copy()
}

// AddTransaction proposes a transaction for inclusion in a future block.
// Append-only: a transaction already pending by digest is a silent no-op.
func (b *Blockchain) AddTransaction(transaction *tx.Transaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pool.Add(transaction)
}

// AddBlock validates blk's transactions against its parent's pool,
// requiring that every non-coinbase transaction be accepted by the
// greedy epoch handler, inserts the coinbase's outputs, and installs the
// block in the tree. Reports false and leaves all state untouched on any
// failure — partial application is forbidden.
func (b *Blockchain) AddBlock(blk *block.Block) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := blk.Validate(); err != nil {
		log.Ledger.Debug().Err(err).Msg("rejected block: structural validation failed")
		return false
	}

	parent, ok := b.tree.Get(blk.Header.PrevHash)
	if !ok {
		log.Ledger.Debug().Str("prev_hash", blk.Header.PrevHash.String()).Msg("rejected block: unknown parent")
		return false
	}

	working := parent.Pool.Copy()
	coinbase := blk.Coinbase()
	rest := blk.Transactions[1:]

	applied, _ := epoch.HandleTxs(working, rest)
	if len(applied) != len(rest) {
		log.Ledger.Debug().
			Int("accepted", len(applied)).
			Int("proposed", len(rest)).
			Msg("rejected block: not every transaction was accepted")
		return false
	}
	working.Apply(coinbase)

	if _, err := b.tree.AddBlock(blk, working); err != nil {
		log.Ledger.Debug().Err(err).Msg("rejected block: tree install failed")
		return false
	}

	b.pool.Remove(blk.Transactions)
	return true
}
