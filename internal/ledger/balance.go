package ledger

import (
	"sort"

	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/money"
)

// Entry is a derived, signed debt contribution: From owes To Amount.
// Entries are not persisted; they are produced from split shares and
// settlements and consumed by ComputeBalances.
type Entry struct {
	From   string
	To     string
	Amount money.Money
}

// ExpenseEntries derives debt entries from an expense: every participant
// other than the payer owes the payer their share. The payer's own share
// produces no entry.
func ExpenseEntries(e *models.Expense) []Entry {
	entries := make([]Entry, 0, len(e.Shares))
	for _, share := range e.Shares {
		if share.UserID == e.PaidBy || share.Amount.IsZero() {
			continue
		}
		entries = append(entries, Entry{
			From:   share.UserID,
			To:     e.PaidBy,
			Amount: share.Amount,
		})
	}
	return entries
}

// SettlementEntry derives the debt entry for a recorded payment. Paying
// someone creates a credit in the opposite direction, netting against
// whatever the payer owed.
func SettlementEntry(s *models.Settlement) Entry {
	return Entry{
		From:   s.ToUserID,
		To:     s.FromUserID,
		Amount: s.Amount,
	}
}

// pairKey identifies an unordered member pair. lo < hi lexicographically.
type pairKey struct {
	lo, hi string
}

// Balances holds the netted pairwise debts of a group. Each unordered
// pair is stored once as a signed scalar, so Between(a, b) and
// Between(b, a) are consistent by construction.
type Balances struct {
	// owed[k] is how much k.lo owes k.hi; negative means hi owes lo.
	owed    map[pairKey]money.Money
	members map[string]bool
}

// ComputeBalances folds debt entries into netted pairwise balances.
// members seeds the result so an empty group still reports zero balances
// for everyone. Addition is commutative, so entry order never matters.
func ComputeBalances(members []string, entries []Entry) *Balances {
	b := &Balances{
		owed:    make(map[pairKey]money.Money),
		members: make(map[string]bool, len(members)),
	}
	for _, id := range members {
		b.members[id] = true
	}
	for _, e := range entries {
		b.add(e)
	}
	return b
}

func (b *Balances) add(e Entry) {
	if e.From == e.To {
		return
	}
	b.members[e.From] = true
	b.members[e.To] = true

	key := pairKey{lo: e.From, hi: e.To}
	amount := e.Amount
	if key.lo > key.hi {
		key.lo, key.hi = key.hi, key.lo
		amount = amount.Neg()
	}

	net := b.owed[key].Add(amount)
	if net.IsZero() {
		delete(b.owed, key)
		return
	}
	b.owed[key] = net
}

// Between returns the net amount a owes b. Negative means b owes a.
func (b *Balances) Between(a, bID string) money.Money {
	if a == bID {
		return money.Zero
	}
	key := pairKey{lo: a, hi: bID}
	if key.lo > key.hi {
		return b.owed[pairKey{lo: bID, hi: a}].Neg()
	}
	return b.owed[key]
}

// Net returns the member's single aggregate balance: positive means the
// group owes them, negative means they owe the group.
func (b *Balances) Net(id string) money.Money {
	var net money.Money
	for key, amount := range b.owed {
		switch id {
		case key.lo:
			net = net.Sub(amount)
		case key.hi:
			net = net.Add(amount)
		}
	}
	return net
}

// NetAll returns every member's aggregate balance. The values always sum
// to zero: each pairwise debt contributes equally to both sides.
func (b *Balances) NetAll() map[string]money.Money {
	nets := make(map[string]money.Money, len(b.members))
	for id := range b.members {
		nets[id] = money.Zero
	}
	for key, amount := range b.owed {
		nets[key.lo] = nets[key.lo].Sub(amount)
		nets[key.hi] = nets[key.hi].Add(amount)
	}
	return nets
}

// Members returns all known member IDs in ascending order.
func (b *Balances) Members() []string {
	ids := make([]string, 0, len(b.members))
	for id := range b.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Pairs returns every nonzero pairwise debt as entries with positive
// amounts, ordered deterministically.
func (b *Balances) Pairs() []Entry {
	pairs := make([]Entry, 0, len(b.owed))
	for key, amount := range b.owed {
		e := Entry{From: key.lo, To: key.hi, Amount: amount}
		if amount.IsNegative() {
			e = Entry{From: key.hi, To: key.lo, Amount: amount.Neg()}
		}
		pairs = append(pairs, e)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].From != pairs[j].From {
			return pairs[i].From < pairs[j].From
		}
		return pairs[i].To < pairs[j].To
	})
	return pairs
}
