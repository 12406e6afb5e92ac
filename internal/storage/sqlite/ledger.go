package sqlite

import (
	"context"

	"github.com/splitsync/splitsync/internal/storage"
)

// LoadGroupLedger materializes a group's complete ledger state: members,
// expenses with shares, and settlements. Balance computation consumes this
// snapshot and never queries on its own.
func (s *SQLiteStore) LoadGroupLedger(ctx context.Context, groupID string) (*storage.GroupLedger, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &storage.GroupLedger{
		Group:       group,
		Expenses:    expenses,
		Settlements: settlements,
	}, nil
}
