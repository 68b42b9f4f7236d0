// Package block defines block types, merkle bookkeeping, and structural
// validation.
package block

import "github.com/Klingon-tech/scroogecoin-core/pkg/tx"

// Block represents a block in the chain: a header plus an ordered list of
// transactions, the first of which is the block's coinbase.
type Block struct {
	Header       *Header           `json:"header"`
	Transactions []*tx.Transaction `json:"transactions"`
}

// NewBlock creates a new block with the given header and transactions.
func NewBlock(header *Header, txs []*tx.Transaction) *Block {
	return &Block{
		Header:       header,
		Transactions: txs,
	}
}

// Coinbase returns the block's coinbase transaction (its first transaction).
// Panics if the block has no transactions; callers must Validate first.
func (b *Block) Coinbase() *tx.Transaction {
	return b.Transactions[0]
}
