package config

import (
	"flag"
	"fmt"
	"os"
)

// Flags holds parsed command-line flags for the gossip simulation harness.
type Flags struct {
	Help    bool
	Version bool

	GenesisFile string

	NumNodes        int
	NumRounds       int
	PGraph          float64
	PMalicious      float64
	PTxDistribution float64
	NumValidTxs     int
	Seed            int64

	LogLevel string
	LogJSON  bool
}

// ParseFlags parses command-line flags for cmd/scroogecoin-sim.
func ParseFlags() *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("scroogecoin-sim", flag.ContinueOnError)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	fs.StringVar(&f.GenesisFile, "genesis", "", "Genesis file path (default: built-in dev genesis)")

	fs.IntVar(&f.NumNodes, "nodes", DefaultNumNodes, "Number of gossip nodes to simulate")
	fs.IntVar(&f.NumRounds, "rounds", DefaultNumRounds, "Number of gossip rounds to run")
	fs.Float64Var(&f.PGraph, "p-graph", DefaultPGraph, "Probability any two peers follow each other")
	fs.Float64Var(&f.PMalicious, "p-malicious", DefaultPMalicious, "Probability a peer is compromised")
	fs.Float64Var(&f.PTxDistribution, "p-tx-dist", DefaultPTxDistribution, "Probability a peer initially knows a given transaction")
	fs.IntVar(&f.NumValidTxs, "num-txs", DefaultNumValidTxs, "Number of candidate transactions in the simulation")
	fs.Int64Var(&f.Seed, "seed", 1, "Random seed for the simulation graph and transaction distribution")

	fs.StringVar(&f.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.Usage = func() {
		printUsage()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if f.Help {
		printUsage()
	}

	return f
}

func printUsage() {
	usage := `scroogecoin-sim - UTXO ledger and gossip-consensus simulator

Usage:
  scroogecoin-sim [options]
  scroogecoin-sim --help

Options:
  --help, -h         Show this help message
  --version          Show version information
  --genesis          Genesis file path (default: built-in dev genesis)
  --nodes            Number of gossip nodes to simulate (default 100)
  --rounds           Number of gossip rounds to run (default 10)
  --p-graph          Probability any two peers follow each other (default 0.1)
  --p-malicious      Probability a peer is compromised (default 0.15)
  --p-tx-dist        Probability a peer initially knows a given transaction (default 0.01)
  --num-txs          Number of candidate transactions to simulate (default 500)
  --seed             Random seed (default 1)
  --log-level        Log level: debug, info, warn, error (default info)
  --log-json         Output logs as JSON
`
	fmt.Print(usage)
}
