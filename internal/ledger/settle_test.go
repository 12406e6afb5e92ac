package ledger

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/money"
)

func TestMinimizeSettlements(t *testing.T) {
	tests := []struct {
		name string
		net  map[string]money.Money
		want []Transfer
	}{
		{
			name: "empty input",
			net:  map[string]money.Money{},
			want: nil,
		},
		{
			name: "all zero balances",
			net:  map[string]money.Money{"a": cents(0), "b": cents(0)},
			want: nil,
		},
		{
			name: "single debtor single creditor",
			net:  map[string]money.Money{"alice": cents(6666), "bob": cents(-6666)},
			want: []Transfer{{From: "bob", To: "alice", Amount: cents(6666)}},
		},
		{
			name: "two debtors one creditor",
			net: map[string]money.Money{
				"alice": cents(6666),
				"bob":   cents(-3333),
				"carol": cents(-3333),
			},
			// Equal debts tie-break on ascending ID: bob pays first.
			want: []Transfer{
				{From: "bob", To: "alice", Amount: cents(3333)},
				{From: "carol", To: "alice", Amount: cents(3333)},
			},
		},
		{
			name: "largest debtor matched with largest creditor",
			net: map[string]money.Money{
				"alice": cents(1000),
				"bob":   cents(5000),
				"carol": cents(-4000),
				"dave":  cents(-2000),
			},
			// After carol clears bob down to 1000, alice and bob tie
			// and alice wins the ascending-ID tie-break.
			want: []Transfer{
				{From: "carol", To: "bob", Amount: cents(4000)},
				{From: "dave", To: "alice", Amount: cents(1000)},
				{From: "dave", To: "bob", Amount: cents(1000)},
			},
		},
		{
			name: "chain collapses to direct transfer",
			// b owes a 100, c owes b 100 -> nets: a +100, c -100.
			net: map[string]money.Money{
				"a": cents(100),
				"b": cents(0),
				"c": cents(-100),
			},
			want: []Transfer{{From: "c", To: "a", Amount: cents(100)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MinimizeSettlements(tt.net)
			if err != nil {
				t.Fatalf("MinimizeSettlements failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transfers %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("transfer[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMinimizeSettlementsUnbalanced(t *testing.T) {
	_, err := MinimizeSettlements(map[string]money.Money{
		"alice": cents(100),
		"bob":   cents(-99),
	})
	if !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("error = %v, want ErrUnbalanced", err)
	}
}

// TestMinimizeSettlementsZeroesBalances checks the core guarantee on
// randomized zero-sum inputs: applying the transfers clears every balance,
// and at most n-1 transfers are produced.
func TestMinimizeSettlementsZeroesBalances(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}

	for trial := 0; trial < 100; trial++ {
		net := make(map[string]money.Money, len(ids))
		var sum money.Money
		for _, id := range ids[:len(ids)-1] {
			v := cents(rng.Int63n(20001) - 10000)
			net[id] = v
			sum = sum.Add(v)
		}
		net[ids[len(ids)-1]] = sum.Neg()

		transfers, err := MinimizeSettlements(net)
		if err != nil {
			t.Fatalf("trial %d: MinimizeSettlements failed: %v", trial, err)
		}

		nonzero := 0
		for _, v := range net {
			if !v.IsZero() {
				nonzero++
			}
		}
		if nonzero > 0 && len(transfers) > nonzero-1 {
			t.Errorf("trial %d: %d transfers for %d nonzero members, want <= %d",
				trial, len(transfers), nonzero, nonzero-1)
		}

		applied := make(map[string]money.Money, len(net))
		for id, v := range net {
			applied[id] = v
		}
		for _, tr := range transfers {
			if !tr.Amount.IsPositive() {
				t.Fatalf("trial %d: non-positive transfer %+v", trial, tr)
			}
			applied[tr.From] = applied[tr.From].Add(tr.Amount)
			applied[tr.To] = applied[tr.To].Sub(tr.Amount)
		}
		for id, v := range applied {
			if !v.IsZero() {
				t.Fatalf("trial %d: balance for %s is %d cents after applying transfers", trial, id, v.Cents())
			}
		}
	}
}

// TestRoundTripScenario walks the full pipeline:
// a 100.00 expense paid by A and split equally among A, B, C.
func TestRoundTripScenario(t *testing.T) {
	shares, err := Allocate(cents(10000), []string{"A", "B", "C"}, models.SplitEqual, nil)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	e := &models.Expense{PaidBy: "A", Amount: cents(10000), Shares: shares}
	b := ComputeBalances([]string{"A", "B", "C"}, ExpenseEntries(e))

	transfers, err := MinimizeSettlements(b.NetAll())
	if err != nil {
		t.Fatalf("MinimizeSettlements failed: %v", err)
	}

	want := []Transfer{
		{From: "B", To: "A", Amount: cents(3333)},
		{From: "C", To: "A", Amount: cents(3333)},
	}
	if len(transfers) != len(want) {
		t.Fatalf("got %d transfers %v, want %d", len(transfers), transfers, len(want))
	}
	for i := range transfers {
		if transfers[i] != want[i] {
			t.Errorf("transfer[%d] = %+v, want %+v", i, transfers[i], want[i])
		}
	}
}
