// Package ledger implements the expense-splitting core: allocating an
// expense into per-participant shares, aggregating shares and settlements
// into net balances, and deriving a minimal set of settling transfers.
//
// All computations are pure and operate on integer cents, so results are
// exact and independent of iteration order.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/money"
)

var (
	// ErrInvalidAmount indicates a non-positive expense amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrEmptyParticipants indicates an empty participant set.
	ErrEmptyParticipants = errors.New("at least one participant required")

	// ErrDuplicateParticipant indicates the same member listed twice.
	ErrDuplicateParticipant = errors.New("duplicate participant")

	// ErrAmountMismatch indicates custom split amounts that do not sum
	// to the expense amount. Silently-wrong splits are rejected, never
	// auto-adjusted.
	ErrAmountMismatch = errors.New("custom split amounts do not sum to expense amount")

	// ErrSplitCoverage indicates custom amounts that do not cover
	// exactly the participant set.
	ErrSplitCoverage = errors.New("custom split amounts must cover exactly the participants")

	// ErrUnknownSplitType indicates a split type other than equal or custom.
	ErrUnknownSplitType = errors.New("unknown split type")
)

// Allocate computes each participant's share of an expense.
//
// For equal splits the amount is divided into integer-cent shares: every
// participant gets floor(cents/n), and the remaining cents go one each to
// the first participants in ascending user-ID order. The order is part of
// the contract; it makes allocation deterministic and guarantees the shares
// sum to the amount exactly.
//
// For custom splits every participant must appear in custom with a
// non-negative amount, and the amounts must sum exactly to the total.
//
// The returned shares carry no ExpenseID; persistence is the caller's
// concern.
func Allocate(amount money.Money, participants []string, splitType models.SplitType, custom map[string]money.Money) ([]models.SplitShare, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if len(participants) == 0 {
		return nil, ErrEmptyParticipants
	}

	// Stable ascending order, also used for remainder distribution.
	sorted := make([]string, len(participants))
	copy(sorted, participants)
	sort.Strings(sorted)

	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, sorted[i])
		}
	}

	switch splitType {
	case models.SplitEqual:
		return allocateEqual(amount, sorted), nil
	case models.SplitCustom:
		return allocateCustom(amount, sorted, custom)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitType, splitType)
	}
}

func allocateEqual(amount money.Money, sorted []string) []models.SplitShare {
	n := int64(len(sorted))
	base := amount.Cents() / n
	remainder := amount.Cents() % n

	shares := make([]models.SplitShare, len(sorted))
	for i, userID := range sorted {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = models.SplitShare{
			UserID: userID,
			Amount: money.FromCents(cents),
		}
	}
	return shares
}

func allocateCustom(amount money.Money, sorted []string, custom map[string]money.Money) ([]models.SplitShare, error) {
	if len(custom) != len(sorted) {
		return nil, ErrSplitCoverage
	}

	var sum money.Money
	shares := make([]models.SplitShare, len(sorted))
	for i, userID := range sorted {
		share, ok := custom[userID]
		if !ok {
			return nil, fmt.Errorf("%w: no amount for %s", ErrSplitCoverage, userID)
		}
		if share.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount for %s", ErrAmountMismatch, userID)
		}
		sum = sum.Add(share)
		shares[i] = models.SplitShare{UserID: userID, Amount: share}
	}

	if sum != amount {
		return nil, fmt.Errorf("%w: shares total %s, expense is %s", ErrAmountMismatch, sum, amount)
	}
	return shares, nil
}
