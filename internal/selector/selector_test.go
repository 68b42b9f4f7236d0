package selector

import (
	"testing"

	"github.com/Klingon-tech/scroogecoin-core/internal/utxopool"
	"github.com/Klingon-tech/scroogecoin-core/pkg/crypto"
	"github.com/Klingon-tech/scroogecoin-core/pkg/tx"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

func TestSelect_NoConflicts_TakesAll(t *testing.T) {
	pool := utxopool.New()
	key, _ := crypto.GenerateKey()
	addr := crypto.AddressFromPubKey(key.PublicKey())

	op1 := types.Outpoint{TxID: types.Hash{0x01}, Index: 0}
	op2 := types.Outpoint{TxID: types.Hash{0x02}, Index: 0}
	pool.Put(op1, 1000, addr)
	pool.Put(op2, 2000, addr)

	b1 := tx.NewBuilder().AddInput(op1).AddOutput(900, types.Address{0x10})
	b1.Sign(key)
	tx1 := b1.Build()

	b2 := tx.NewBuilder().AddInput(op2).AddOutput(1900, types.Address{0x11})
	b2.Sign(key)
	tx2 := b2.Build()

	picked, fee := Select(pool, []*tx.Transaction{tx1, tx2})
	if len(picked) != 2 {
		t.Fatalf("picked = %d, want 2", len(picked))
	}
	if fee != 200 {
		t.Errorf("fee = %d, want 200", fee)
	}
	// pool passed to Select must be untouched.
	if !pool.Contains(op1) || !pool.Contains(op2) {
		t.Error("Select must not mutate the caller's pool")
	}
}

func TestSelect_DoubleSpend_ExactlyOneAccepted(t *testing.T) {
	// Two transactions each spend UTXO (h, 0) valued 10, each producing
	// outputs of 10 — both zero-fee, both valid individually, mutually
	// exclusive.
	pool := utxopool.New()
	key, _ := crypto.GenerateKey()
	addr := crypto.AddressFromPubKey(key.PublicKey())

	op := types.Outpoint{TxID: types.Hash{0x01}, Index: 0}
	pool.Put(op, 10, addr)

	b1 := tx.NewBuilder().AddInput(op).AddOutput(10, types.Address{0x10})
	b1.Sign(key)
	txA := b1.Build()

	b2 := tx.NewBuilder().AddInput(op).AddOutput(10, types.Address{0x11})
	b2.Sign(key)
	txB := b2.Build()

	picked, fee := Select(pool, []*tx.Transaction{txA, txB})
	if len(picked) != 1 {
		t.Fatalf("picked = %d, want 1", len(picked))
	}
	if fee != 0 {
		t.Errorf("fee = %d, want 0", fee)
	}
}

func TestSelect_FeeComparison_PicksHigherFee(t *testing.T) {
	// P1 spends (h,0)=10 producing 9 (fee 1); P2 spends (h,0)=10
	// producing 7 (fee 3); they conflict. Selector must pick P2, fee 3.
	pool := utxopool.New()
	key, _ := crypto.GenerateKey()
	addr := crypto.AddressFromPubKey(key.PublicKey())

	op := types.Outpoint{TxID: types.Hash{0x01}, Index: 0}
	pool.Put(op, 10, addr)

	b1 := tx.NewBuilder().AddInput(op).AddOutput(9, types.Address{0x10})
	b1.Sign(key)
	p1 := b1.Build()

	b2 := tx.NewBuilder().AddInput(op).AddOutput(7, types.Address{0x11})
	b2.Sign(key)
	p2 := b2.Build()

	picked, fee := Select(pool, []*tx.Transaction{p1, p2})
	if len(picked) != 1 {
		t.Fatalf("picked = %d, want 1", len(picked))
	}
	if fee != 3 {
		t.Errorf("fee = %d, want 3 (should pick higher-fee conflicting tx)", fee)
	}
	if picked[0].Hash() != p2.Hash() {
		t.Error("expected P2 (fee 3) to be picked over P1 (fee 1)")
	}
}

func TestSelect_ChainedDependency_BothApplied(t *testing.T) {
	// tx2 spends tx1's output — a single group, must pick both in order.
	pool := utxopool.New()
	key1, _ := crypto.GenerateKey()
	addr1 := crypto.AddressFromPubKey(key1.PublicKey())
	key2, _ := crypto.GenerateKey()
	addr2 := crypto.AddressFromPubKey(key2.PublicKey())

	op := types.Outpoint{TxID: types.Hash{0x01}, Index: 0}
	pool.Put(op, 1000, addr1)

	b1 := tx.NewBuilder().AddInput(op).AddOutput(900, addr2)
	b1.Sign(key1)
	tx1 := b1.Build()

	tx1Out := types.Outpoint{TxID: tx1.Hash(), Index: 0}
	b2 := tx.NewBuilder().AddInput(tx1Out).AddOutput(800, types.Address{0x12})
	b2.Sign(key2)
	tx2 := b2.Build()

	picked, fee := Select(pool, []*tx.Transaction{tx2, tx1})
	if len(picked) != 2 {
		t.Fatalf("picked = %d, want 2", len(picked))
	}
	if fee != 200 {
		t.Errorf("fee = %d, want 200", fee)
	}
}

func TestSelect_EmptyBatch(t *testing.T) {
	pool := utxopool.New()
	picked, fee := Select(pool, nil)
	if len(picked) != 0 || fee != 0 {
		t.Errorf("Select(empty) = (%v, %d), want (nil, 0)", picked, fee)
	}
}

func TestSelect_IndependentGroupsDecomposeSeparately(t *testing.T) {
	// Two unrelated conflicting pairs: each pair forms its own group and
	// the winner of each should be selected independently.
	pool := utxopool.New()
	key, _ := crypto.GenerateKey()
	addr := crypto.AddressFromPubKey(key.PublicKey())

	opA := types.Outpoint{TxID: types.Hash{0x01}, Index: 0}
	opB := types.Outpoint{TxID: types.Hash{0x02}, Index: 0}
	pool.Put(opA, 100, addr)
	pool.Put(opB, 100, addr)

	aLow := tx.NewBuilder().AddInput(opA).AddOutput(95, types.Address{0x10})
	aLow.Sign(key)
	aHigh := tx.NewBuilder().AddInput(opA).AddOutput(90, types.Address{0x11})
	aHigh.Sign(key)

	bLow := tx.NewBuilder().AddInput(opB).AddOutput(98, types.Address{0x12})
	bLow.Sign(key)
	bHigh := tx.NewBuilder().AddInput(opB).AddOutput(80, types.Address{0x13})
	bHigh.Sign(key)

	picked, fee := Select(pool, []*tx.Transaction{
		aLow.Build(), aHigh.Build(), bLow.Build(), bHigh.Build(),
	})
	if len(picked) != 2 {
		t.Fatalf("picked = %d, want 2 (one winner per independent group)", len(picked))
	}
	if fee != 10+20 { // aHigh fee=10, bHigh fee=20
		t.Errorf("fee = %d, want 30", fee)
	}
}

func TestGroupBatch_ConflictingTxsFormOneGroup(t *testing.T) {
	key, _ := crypto.GenerateKey()
	op := types.Outpoint{TxID: types.Hash{0x01}, Index: 0}

	b1 := tx.NewBuilder().AddInput(op).AddOutput(9, types.Address{0x10})
	b1.Sign(key)
	b2 := tx.NewBuilder().AddInput(op).AddOutput(7, types.Address{0x11})
	b2.Sign(key)

	groups := groupBatch([]*tx.Transaction{b1.Build(), b2.Build()})
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if len(groups[0].Members) != 2 {
		t.Errorf("group size = %d, want 2", len(groups[0].Members))
	}
}

func TestGroupBatch_UnrelatedTxsFormSeparateGroups(t *testing.T) {
	key, _ := crypto.GenerateKey()
	op1 := types.Outpoint{TxID: types.Hash{0x01}, Index: 0}
	op2 := types.Outpoint{TxID: types.Hash{0x02}, Index: 0}

	b1 := tx.NewBuilder().AddInput(op1).AddOutput(9, types.Address{0x10})
	b1.Sign(key)
	b2 := tx.NewBuilder().AddInput(op2).AddOutput(7, types.Address{0x11})
	b2.Sign(key)

	groups := groupBatch([]*tx.Transaction{b1.Build(), b2.Build()})
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
}
