package models

import "github.com/splitsync/splitsync/internal/money"

// SplitType determines how an expense is divided among participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly, cent remainders going to the
	// first participants in ascending ID order.
	SplitEqual SplitType = "equal"

	// SplitCustom uses caller-provided per-participant amounts that must
	// sum exactly to the expense amount.
	SplitCustom SplitType = "custom"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	return t == SplitEqual || t == SplitCustom
}

// Expense represents an amount paid by one group member on behalf of
// a set of participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Amount is the total expense amount in cents. Always positive.
	Amount money.Money

	// Description is a short human-readable label (e.g., "Groceries").
	Description string

	// PaidBy is the user ID of the member who paid.
	PaidBy string

	// SplitType is how the amount is divided.
	SplitType SplitType

	// Shares are the per-participant portions. Their amounts sum to
	// Amount exactly.
	Shares []SplitShare

	// CreatedBy is the user ID of the member who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// SplitShare is one participant's portion of an expense.
type SplitShare struct {
	// ExpenseID is the owning expense.
	ExpenseID string

	// UserID is the participant this share belongs to.
	UserID string

	// Amount is this participant's portion in cents.
	Amount money.Money
}
