// Package config holds protocol constants and the genesis/runtime
// configuration for the ledger and its gossip simulation harness.
package config

import "math"

// Denomination constants. 1 coin = 10^8 base units.
const (
	Decimals = 8
	Coin     = 100_000_000
)

// Protocol limits (consensus-critical — every node must agree on these).
const (
	MaxTxInputs  = 2500 // Max inputs per transaction.
	MaxTxOutputs = 2500 // Max outputs per transaction.
	MaxBlockTxs  = 500  // Max non-coinbase transactions per block.
)

// MaxTokenSum bounds the total value of a genesis allocation (checked by
// Genesis.Validate), set well below the uint64 maximum.
const MaxTokenSum = math.MaxUint64 / 1000

// DefaultCoinbaseValue is the block reward paid to the coinbase output
// of every block, in base units.
const DefaultCoinbaseValue uint64 = 25 * Coin

// DefaultCutOffAge is the default height-bounded pruning window for the
// block tree: a candidate block is rejected once the chain's deepest
// block is this many or more heights above it, and a block more than
// this many heights below a new deepest block is pruned.
const DefaultCutOffAge uint64 = 10

// Gossip simulation defaults, used by the node simulator in cmd/ and
// overridable via flags.
const (
	DefaultNumNodes        = 100
	DefaultNumRounds       = 10
	DefaultPGraph          = 0.1  // Probability any two peers follow each other.
	DefaultPMalicious      = 0.15 // Probability a peer is compromised.
	DefaultPTxDistribution = 0.01 // Probability a peer initially knows any given transaction.
	DefaultNumValidTxs     = 500
)
