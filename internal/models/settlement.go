package models

import "github.com/splitsync/splitsync/internal/money"

// Settlement represents a recorded payment between two group members,
// reducing the payer's outstanding debt to the payee.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment.
	ToUserID string

	// Amount is the payment amount in cents. Always positive.
	Amount money.Money

	// Note is an optional description.
	Note string

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
