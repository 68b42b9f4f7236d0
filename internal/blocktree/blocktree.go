// Package blocktree holds the set of recently-seen blocks as a branching
// tree keyed by hash, tracks the deepest branch's head, and prunes
// branches that have fallen too far behind to ever become the head
// again.
//
// Grounded on the teacher's internal/chain.BlockStore for the block/height
// indexing shape (hash-keyed lookup, height-ordered listing), adapted
// from a storage.DB-backed key-value store to a pure in-memory map since
// this project carries no persistence layer.
package blocktree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/scroogecoin-core/internal/utxopool"
	"github.com/Klingon-tech/scroogecoin-core/pkg/block"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// Errors returned by AddBlock.
var (
	ErrUnknownParent  = errors.New("parent block not found in tree")
	ErrBelowCutOff    = errors.New("block height is at or below the cut-off bound")
	ErrDuplicateBlock = errors.New("block hash already installed")
)

// BlockInfo is a node in the tree: a block, its height, the UTXO pool
// that results from applying it, and a monotonic insertion stamp used to
// break height ties deterministically (created_at ascending).
type BlockInfo struct {
	Block     *block.Block
	Height    uint64
	Pool      *utxopool.Pool
	CreatedAt uint64
}

// Tree indexes BlockInfos by their own hash, for parent lookup by an
// incoming block's PrevHash, and exposes a height-ordered view (height
// descending, then CreatedAt ascending) whose first element is the
// current head.
type Tree struct {
	cutOffAge uint64
	byHash    map[types.Hash]*BlockInfo
	nextStamp uint64
}

// New creates an empty tree with the given cut-off age: a block is
// rejected once the tree's deepest height is cutOffAge or more above it,
// and a block that falls more than cutOffAge below a new deepest height
// is pruned.
func New(cutOffAge uint64) *Tree {
	return &Tree{
		cutOffAge: cutOffAge,
		byHash:    make(map[types.Hash]*BlockInfo),
	}
}

// Get returns the BlockInfo for hash, if present.
func (t *Tree) Get(hash types.Hash) (*BlockInfo, bool) {
	info, ok := t.byHash[hash]
	return info, ok
}

// Len returns the number of blocks currently retained.
func (t *Tree) Len() int {
	return len(t.byHash)
}

// ordered returns every retained BlockInfo sorted by height descending,
// then CreatedAt ascending — the head is ordered[0] when the tree is
// non-empty.
func (t *Tree) ordered() []*BlockInfo {
	infos := make([]*BlockInfo, 0, len(t.byHash))
	for _, info := range t.byHash {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Height != infos[j].Height {
			return infos[i].Height > infos[j].Height
		}
		return infos[i].CreatedAt < infos[j].CreatedAt
	})
	return infos
}

// Head returns the current head BlockInfo: the entry at the greatest
// height, ties broken by earliest insertion. Returns false if the tree
// is empty.
func (t *Tree) Head() (*BlockInfo, bool) {
	ordered := t.ordered()
	if len(ordered) == 0 {
		return nil, false
	}
	return ordered[0], true
}

// maxHeight returns the current head's height, or 0 if the tree is empty.
func (t *Tree) maxHeight() uint64 {
	head, ok := t.Head()
	if !ok {
		return 0
	}
	return head.Height
}

// InsertGenesis installs blk as the tree's root at height 1, bypassing
// parent lookup and the cut-off check. Callers must ensure the tree is
// empty; the caller (internal/ledger) is responsible for computing pool
// from the epoch handler plus coinbase insertion before calling this.
func (t *Tree) InsertGenesis(blk *block.Block, pool *utxopool.Pool) *BlockInfo {
	info := &BlockInfo{
		Block:     blk,
		Height:    1,
		Pool:      pool,
		CreatedAt: t.nextStamp,
	}
	t.nextStamp++
	t.byHash[blk.Hash()] = info
	return info
}

// AddBlock computes blk's height from its parent, rejects it if it falls
// at or below the cut-off bound, installs it with the supplied
// post-block pool, and prunes any branch that has fallen out of the
// cut-off window. pool must already be the fully-validated post-block
// UTXO pool (internal/ledger derives it via the epoch handler plus
// coinbase insertion before calling AddBlock).
func (t *Tree) AddBlock(blk *block.Block, pool *utxopool.Pool) (*BlockInfo, error) {
	hash := blk.Hash()
	if _, exists := t.byHash[hash]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBlock, hash)
	}

	prevHash := blk.Header.PrevHash
	var height uint64
	if prevHash.IsZero() {
		height = 1
	} else {
		parent, ok := t.byHash[prevHash]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParent, prevHash)
		}
		height = parent.Height + 1
	}

	maxH := t.maxHeight()
	var floor uint64
	if maxH > t.cutOffAge {
		floor = maxH - t.cutOffAge
	}
	if height <= floor {
		return nil, fmt.Errorf("%w: height %d <= floor %d", ErrBelowCutOff, height, floor)
	}

	info := &BlockInfo{
		Block:     blk,
		Height:    height,
		Pool:      pool,
		CreatedAt: t.nextStamp,
	}
	t.nextStamp++
	t.byHash[hash] = info

	if height > maxH {
		t.pruneTail(height)
	}

	return info, nil
}

// pruneTail drops every retained block whose height is at or below
// (newMax - cutOffAge - 1), keeping the layer at (newMax - cutOffAge)
// that is still needed to build at the cut-off bound.
func (t *Tree) pruneTail(newMax uint64) {
	if newMax <= t.cutOffAge {
		return // Nothing is old enough to prune yet.
	}
	keepFloor := newMax - t.cutOffAge - 1

	for hash, info := range t.byHash {
		if info.Height <= keepFloor {
			delete(t.byHash, hash)
		}
	}
}
