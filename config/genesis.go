package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Klingon-tech/scroogecoin-core/pkg/crypto"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// Genesis holds the immutable genesis block configuration: the initial
// coin allocation and the protocol parameters every node must agree on.
type Genesis struct {
	ChainID   string `json:"chain_id"`
	Timestamp uint64 `json:"timestamp"`

	// Alloc maps bech32 addresses to their genesis balance in base units.
	// Each entry becomes one output of the genesis coinbase transaction.
	Alloc map[string]uint64 `json:"alloc"`

	CoinbaseValue uint64 `json:"coinbase_value"`
	CutOffAge     uint64 `json:"cut_off_age"`
}

// Default returns a genesis configuration suitable for local simulation.
func Default() *Genesis {
	return &Genesis{
		ChainID:       "scroogecoin-dev-1",
		Timestamp:     1_790_000_000,
		Alloc:         map[string]uint64{},
		CoinbaseValue: DefaultCoinbaseValue,
		CutOffAge:     DefaultCutOffAge,
	}
}

// LoadGenesis reads and validates a genesis configuration from a JSON file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}
	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	return &g, nil
}

// Save writes the genesis configuration to a JSON file.
func (g *Genesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}
	return nil
}

// Validate checks that the genesis configuration is well-formed.
func (g *Genesis) Validate() error {
	if g.ChainID == "" {
		return fmt.Errorf("chain_id is required")
	}
	if g.CutOffAge == 0 {
		return fmt.Errorf("cut_off_age must be positive")
	}

	var total uint64
	for addrStr, v := range g.Alloc {
		if _, err := types.ParseAddress(addrStr); err != nil {
			return fmt.Errorf("invalid alloc address %q: %w", addrStr, err)
		}
		if total > MaxTokenSum-v {
			return fmt.Errorf("genesis allocations overflow")
		}
		total += v
	}
	return nil
}

// Hash returns a BLAKE3 hash of the genesis configuration, used to detect
// genesis mismatches between nodes.
func (g *Genesis) Hash() (types.Hash, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(data), nil
}
