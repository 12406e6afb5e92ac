package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/money"
	"github.com/splitsync/splitsync/internal/storage"
)

// CreateExpense persists an expense and its split shares in one
// transaction. Either everything is written or nothing is.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, amount_cents, description, paid_by, split_type, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Amount.Cents(), expense.Description,
		expense.PaidBy, string(expense.SplitType), expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Shares {
		share := &expense.Shares[i]
		share.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO split_shares (expense_id, user_id, amount_cents) VALUES (?, ?, ?)",
			share.ExpenseID, share.UserID, share.Amount.Cents(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert split share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its split shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		`SELECT id, group_id, amount_cents, description, paid_by, split_type, created_by, created_at
		 FROM expenses WHERE id = ?`, expenseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if expense.Shares, err = s.listShares(ctx, expense.ID); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves a group's expenses with shares, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, amount_cents, description, paid_by, split_type, created_by, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if expense.Shares, err = s.listShares(ctx, expense.ID); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// listShares fetches an expense's shares in ascending user-ID order.
func (s *SQLiteStore) listShares(ctx context.Context, expenseID string) ([]models.SplitShare, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, amount_cents
		 FROM split_shares WHERE expense_id = ? ORDER BY user_id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get split shares: %w", err)
	}
	defer rows.Close()

	var shares []models.SplitShare
	for rows.Next() {
		var share models.SplitShare
		var amountCents int64
		if err := rows.Scan(&share.ExpenseID, &share.UserID, &amountCents); err != nil {
			return nil, fmt.Errorf("failed to scan split share: %w", err)
		}
		share.Amount = money.FromCents(amountCents)
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split shares: %w", err)
	}
	return shares, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var amountCents int64
	var splitType string
	err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&amountCents,
		&expense.Description,
		&expense.PaidBy,
		&splitType,
		&expense.CreatedBy,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.Amount = money.FromCents(amountCents)
	expense.SplitType = models.SplitType(splitType)
	return expense, nil
}
