package ledger

import (
	"container/heap"
	"errors"

	"github.com/splitsync/splitsync/internal/money"
)

// ErrUnbalanced indicates net balances that do not sum to zero. The
// aggregator produces zero-sum output by construction, so this is an
// internal invariant violation, not a user error.
var ErrUnbalanced = errors.New("net balances do not sum to zero")

// Transfer is a suggested settling payment from a debtor to a creditor.
type Transfer struct {
	From   string
	To     string
	Amount money.Money
}

// MinimizeSettlements computes a small set of transfers that zeroes every
// balance. It greedily matches the largest debtor with the largest
// creditor; ties break on ascending member ID so output is reproducible.
// The result has at most n-1 transfers for n nonzero-balance members, and
// applying it brings every balance to exactly zero.
func MinimizeSettlements(net map[string]money.Money) ([]Transfer, error) {
	var sum money.Money
	debtors := &partyHeap{}
	creditors := &partyHeap{}
	for id, balance := range net {
		sum = sum.Add(balance)
		switch {
		case balance.IsNegative():
			debtors.parties = append(debtors.parties, party{id: id, amount: balance.Neg()})
		case balance.IsPositive():
			creditors.parties = append(creditors.parties, party{id: id, amount: balance})
		}
	}
	if !sum.IsZero() {
		return nil, ErrUnbalanced
	}

	heap.Init(debtors)
	heap.Init(creditors)

	var transfers []Transfer
	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := heap.Pop(debtors).(party)
		creditor := heap.Pop(creditors).(party)

		amount := debtor.amount
		if creditor.amount < amount {
			amount = creditor.amount
		}
		transfers = append(transfers, Transfer{
			From:   debtor.id,
			To:     creditor.id,
			Amount: amount,
		})

		if rest := debtor.amount.Sub(amount); rest.IsPositive() {
			heap.Push(debtors, party{id: debtor.id, amount: rest})
		}
		if rest := creditor.amount.Sub(amount); rest.IsPositive() {
			heap.Push(creditors, party{id: creditor.id, amount: rest})
		}
	}
	return transfers, nil
}

// party is one side of an outstanding balance; amount is always positive.
type party struct {
	id     string
	amount money.Money
}

// partyHeap is a max-heap on amount, ties broken by ascending ID.
type partyHeap struct {
	parties []party
}

func (h *partyHeap) Len() int { return len(h.parties) }

func (h *partyHeap) Less(i, j int) bool {
	if h.parties[i].amount != h.parties[j].amount {
		return h.parties[i].amount > h.parties[j].amount
	}
	return h.parties[i].id < h.parties[j].id
}

func (h *partyHeap) Swap(i, j int) {
	h.parties[i], h.parties[j] = h.parties[j], h.parties[i]
}

func (h *partyHeap) Push(x any) {
	h.parties = append(h.parties, x.(party))
}

func (h *partyHeap) Pop() any {
	last := len(h.parties) - 1
	p := h.parties[last]
	h.parties = h.parties[:last]
	return p
}
