// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitsync/splitsync/internal/models"
)

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation (duplicate email,
	// group name, or membership).
	ErrConflict = errors.New("already exists")
)

// GroupLedger is the fully materialized state of one group, handed to the
// ledger package for balance computation. The core never issues queries
// itself.
type GroupLedger struct {
	Group       *models.Group
	Expenses    []*models.Expense
	Settlements []*models.Settlement
}

// Store defines the interface for SplitSync storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateUser persists a new user. Returns ErrConflict if the email
	// is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) if
	// no such user exists; login flows treat absence as a normal case.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUser updates name, email, and UPI handle.
	UpdateUser(ctx context.Context, user *models.User) error

	// UpdateUserPassword replaces the stored password hash.
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error

	// DeleteUser removes a user account.
	DeleteUser(ctx context.Context, userID string) error

	// CreateGroup persists a new group with its initial members.
	// The group.ID field will be populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members. Returns ErrNotFound
	// if absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GetGroupByName retrieves a group by its unique name.
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)

	// ListGroupsByUser retrieves every group the user is a member of.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// DeleteGroup removes a group; members, expenses, split shares, and
	// settlements cascade.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember adds a user to a group. Returns ErrConflict if already
	// a member.
	AddMember(ctx context.Context, member *models.Member) error

	// RemoveMember removes a user from a group.
	RemoveMember(ctx context.Context, groupID, userID string) error

	// CreateExpense persists an expense and its split shares in one
	// transaction. The expense.ID field will be populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its shares.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves a group's expenses with shares,
	// newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateSettlement persists a recorded payment.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByGroup retrieves a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// LoadGroupLedger materializes everything balance computation needs
	// for one group in a single consistent snapshot.
	LoadGroupLedger(ctx context.Context, groupID string) (*GroupLedger, error)

	// Close releases any resources held by the store.
	Close() error
}
