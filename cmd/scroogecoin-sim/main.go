// Command scroogecoin-sim is a local exploration harness: it builds a
// genesis block, wires it into a ledger, then drives a randomly connected
// population of gossip nodes through a configurable number of rounds,
// printing how quickly honest nodes converge on the candidate
// transaction set and how many followees each observer has flagged as
// malicious.
//
// It does not open any network sockets or persist anything to disk —
// the peer graph, per-node behavior, and transaction feed all live in
// this process's memory for the run's duration.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/Klingon-tech/scroogecoin-core/config"
	"github.com/Klingon-tech/scroogecoin-core/internal/gossip"
	"github.com/Klingon-tech/scroogecoin-core/internal/ledger"
	"github.com/Klingon-tech/scroogecoin-core/internal/log"
	"github.com/Klingon-tech/scroogecoin-core/internal/selector"
	"github.com/Klingon-tech/scroogecoin-core/pkg/block"
	"github.com/Klingon-tech/scroogecoin-core/pkg/crypto"
	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

const version = "0.1.0"

func main() {
	flags := config.ParseFlags()

	if flags.Help {
		return
	}
	if flags.Version {
		fmt.Println("scroogecoin-sim " + version)
		return
	}

	if err := log.Init(flags.LogLevel, flags.LogJSON, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger := log.WithComponent("sim")

	genesisCfg, err := loadGenesisConfig(flags.GenesisFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load genesis configuration")
	}

	genesisBlk, coinbaseKey, err := buildGenesisBlock(genesisCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build genesis block")
	}

	chain, err := ledger.New(genesisBlk, genesisCfg.CutOffAge)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize ledger from genesis")
	}

	logger.Info().
		Str("chain_id", genesisCfg.ChainID).
		Uint64("cut_off_age", genesisCfg.CutOffAge).
		Str("genesis_hash", genesisBlk.Hash().String()[:16]+"...").
		Msg("Ledger initialized")

	// Demonstration proposals: three mutually exclusive spends of the
	// genesis output, each offering a different fee, proposed to the
	// mempool so the max-fee selector has a real double-spend conflict
	// to resolve before its winning subset is mined into a new block.
	if coinbaseKey != nil {
		proposals := buildConflictingProposals(genesisBlk, coinbaseKey)
		for _, p := range proposals {
			chain.AddTransaction(p)
		}
		logger.Info().
			Int("proposals", len(proposals)).
			Msg("Conflicting spend proposals submitted to the transaction pool")

		mineBlock(chain, genesisCfg.CoinbaseValue)
	}

	rng := rand.New(rand.NewSource(flags.Seed))

	candidates := makeCandidateTxs(rng, flags.NumValidTxs)
	nodes, groundTruth := buildNodeGraph(rng, flags)

	for _, n := range nodes {
		n.SetPendingTransaction(seedInitial(rng, candidates, flags.PTxDistribution))
	}

	logger.Info().
		Int("nodes", flags.NumNodes).
		Int("rounds", flags.NumRounds).
		Int("candidate_txs", len(candidates)).
		Msg("Starting gossip simulation")

	for round := 1; round <= flags.NumRounds; round++ {
		outgoing := make([][]*tx.Transaction, len(nodes))
		for i, n := range nodes {
			sent := n.SendToFollowers()
			if groundTruth[i] {
				sent = misbehave(i, round, sent)
			}
			outgoing[i] = sent
		}

		for i, n := range nodes {
			var inbound []gossip.Candidate
			for _, followee := range n.Followees() {
				for _, t := range outgoing[followee] {
					inbound = append(inbound, gossip.Candidate{Tx: t, Sender: followee})
				}
			}
			n.ReceiveFromFollowees(inbound)
		}

		totalPending, totalFlagged := 0, 0
		for _, n := range nodes {
			totalPending += n.PendingCount()
			totalFlagged += n.MaliciousCount()
		}

		logger.Info().
			Int("round", round).
			Float64("avg_pending", float64(totalPending)/float64(len(nodes))).
			Int("flagged_total", totalFlagged).
			Msg("Round complete")
	}
}

// loadGenesisConfig returns the genesis configuration from path, or the
// built-in development default when path is empty.
func loadGenesisConfig(path string) (*config.Genesis, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadGenesis(path)
}

// buildGenesisBlock turns a genesis configuration into a sealed genesis
// block whose coinbase pays out the configured allocation. When the
// configuration carries no allocation (the built-in dev default), a
// fresh key is generated on the spot and paid the configured coinbase
// value, so the run has at least one spendable UTXO to demonstrate
// against; its private key is returned for that purpose. A file-backed
// genesis with a real allocation pays out to addresses this process has
// no signing keys for, and returns a nil key.
func buildGenesisBlock(gen *config.Genesis) (*block.Block, *crypto.PrivateKey, error) {
	builder := tx.NewBuilder()
	var devKey *crypto.PrivateKey

	if len(gen.Alloc) == 0 {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, nil, fmt.Errorf("generate dev key: %w", err)
		}
		devKey = key
		builder.AddOutput(gen.CoinbaseValue, crypto.AddressFromPubKey(key.PublicKey()))
	} else {
		addrs := make([]string, 0, len(gen.Alloc))
		for addrStr := range gen.Alloc {
			addrs = append(addrs, addrStr)
		}
		sort.Strings(addrs)
		for _, addrStr := range addrs {
			addr, err := types.ParseAddress(addrStr)
			if err != nil {
				return nil, nil, fmt.Errorf("alloc address %q: %w", addrStr, err)
			}
			builder.AddOutput(gen.Alloc[addrStr], addr)
		}
	}

	coinbase := builder.Build()
	txHashes := []types.Hash{coinbase.Hash()}
	header := &block.Header{
		Version:    block.CurrentVersion,
		PrevHash:   types.Hash{},
		MerkleRoot: block.ComputeMerkleRoot(txHashes),
		Height:     1,
	}
	return block.NewBlock(header, []*tx.Transaction{coinbase}), devKey, nil
}

// buildConflictingProposals returns up to three mutually exclusive
// spends of the genesis coinbase's first output, each leaving a
// different fee and paying the rest to its own fixed destination
// address — a double-spend conflict for the
// selector to resolve by picking the most profitable offer.
func buildConflictingProposals(genesis *block.Block, key *crypto.PrivateKey) []*tx.Transaction {
	coinbase := genesis.Transactions[0]
	if len(coinbase.Outputs) == 0 {
		return nil
	}
	value := coinbase.Outputs[0].Value
	op := types.Outpoint{TxID: coinbase.Hash(), Index: 0}

	fees := []uint64{100, 250, 400}
	dests := []types.Address{{0x51}, {0x52}, {0x53}}

	proposals := make([]*tx.Transaction, 0, len(fees))
	for i, fee := range fees {
		if fee >= value {
			continue
		}
		b := tx.NewBuilder().AddInput(op).AddOutput(value-fee, dests[i])
		if err := b.Sign(key); err != nil {
			continue
		}
		proposals = append(proposals, b.Build())
	}
	return proposals
}

// mineBlock runs the max-fee selector over the chain's pending
// transaction pool against its current head's UTXO pool, assembles the
// winning subset into a new block whose coinbase pays coinbaseValue plus
// the selector's total fee to a fresh miner address, and installs it via
// chain.AddBlock. This is the only path in this program that exercises
// internal/selector and internal/ledger.Blockchain.AddBlock together,
// the way a real miner assembling a block from its mempool would.
func mineBlock(chain *ledger.Blockchain, coinbaseValue uint64) {
	proposals := chain.GetTransactionPool().List()
	if len(proposals) == 0 {
		return
	}

	pool := chain.GetMaxHeightUTXOPool()
	picked, totalFee := selector.Select(pool, proposals)
	if len(picked) == 0 {
		log.Selector.Info().
			Int("proposed", len(proposals)).
			Msg("no proposal is jointly valid against the current head; nothing to mine")
		return
	}

	sort.Slice(picked, func(i, j int) bool {
		return picked[i].Hash().Less(picked[j].Hash())
	})

	minerKey, err := crypto.GenerateKey()
	if err != nil {
		log.Selector.Error().Err(err).Msg("failed to generate miner key")
		return
	}
	coinbase := tx.NewBuilder().
		AddOutput(coinbaseValue+totalFee, crypto.AddressFromPubKey(minerKey.PublicKey())).
		Build()

	txs := append([]*tx.Transaction{coinbase}, picked...)
	hashes := make([]types.Hash, len(txs))
	for i, t := range txs {
		hashes[i] = t.Hash()
	}

	parent := chain.GetMaxHeightBlock()
	header := &block.Header{
		Version:    block.CurrentVersion,
		PrevHash:   parent.Hash(),
		MerkleRoot: block.ComputeMerkleRoot(hashes),
		Height:     parent.Header.Height + 1,
	}
	blk := block.NewBlock(header, txs)

	installed := chain.AddBlock(blk)
	log.Selector.Info().
		Int("proposed", len(proposals)).
		Int("picked", len(picked)).
		Uint64("total_fee", totalFee).
		Bool("installed", installed).
		Str("block", blk.Hash().String()[:16]+"...").
		Msg("mined a block from the selector's fee-maximizing subset")
}

// makeCandidateTxs generates n structurally valid, mutually unrelated
// single-output transactions to serve as the gossip layer's opaque
// candidate feed. Their validity against any UTXO pool is irrelevant
// here — the simulation only exercises propagation and detection, not
// block assembly.
func makeCandidateTxs(rng *rand.Rand, n int) []*tx.Transaction {
	txs := make([]*tx.Transaction, 0, n)
	for i := 0; i < n; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			continue
		}
		var seed types.Hash
		rng.Read(seed[:])
		op := types.Outpoint{TxID: seed, Index: 0}
		b := tx.NewBuilder().AddInput(op).AddOutput(uint64(i)+1, crypto.AddressFromPubKey(key.PublicKey()))
		if err := b.Sign(key); err != nil {
			continue
		}
		txs = append(txs, b.Build())
	}
	return txs
}

// seedInitial returns the subset of candidates this node starts out
// knowing about, each included independently with probability p.
func seedInitial(rng *rand.Rand, candidates []*tx.Transaction, p float64) []*tx.Transaction {
	var initial []*tx.Transaction
	for _, t := range candidates {
		if rng.Float64() < p {
			initial = append(initial, t)
		}
	}
	return initial
}

// buildNodeGraph constructs the node population and its random
// followee relation (each ordered pair follows independently with
// probability p_graph), plus a ground-truth malicious flag per node used
// only to drive that node's own broadcast behavior below — detection
// must discover it independently through each observer's own heuristics.
func buildNodeGraph(rng *rand.Rand, flags *config.Flags) ([]*gossip.Node, []bool) {
	nodes := make([]*gossip.Node, flags.NumNodes)
	groundTruth := make([]bool, flags.NumNodes)

	followeeSets := make([][]bool, flags.NumNodes)
	for i := range followeeSets {
		followeeSets[i] = make([]bool, flags.NumNodes)
		for j := range followeeSets[i] {
			if i != j && rng.Float64() < flags.PGraph {
				followeeSets[i][j] = true
			}
		}
	}

	for i := 0; i < flags.NumNodes; i++ {
		n := gossip.New(flags.NumNodes, flags.PGraph, flags.PMalicious, flags.PTxDistribution, flags.NumRounds)
		n.SetFollowees(followeeSets[i])
		nodes[i] = n
		groundTruth[i] = rng.Float64() < flags.PMalicious
	}

	return nodes, groundTruth
}

// misbehave distorts a ground-truth-malicious node's outgoing report
// according to its index, so the population exercises a mix of the
// detector's heuristics rather than a single failure mode: nodes
// index-mod-3==0 go silent, ==1 leave one transaction out of every
// report, and ==2 report normally for the first two rounds and then
// withhold everything they know.
func misbehave(nodeIdx, round int, sent []*tx.Transaction) []*tx.Transaction {
	switch nodeIdx % 3 {
	case 0:
		return nil
	case 1:
		if len(sent) == 0 {
			return nil
		}
		keep := len(sent) - 1
		if keep < 0 {
			keep = 0
		}
		return sent[:keep]
	default:
		if round > 2 {
			return nil
		}
		return sent
	}
}
