package service

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/splitsync/splitsync/internal/httpx"
	"github.com/splitsync/splitsync/internal/ledger"
	"github.com/splitsync/splitsync/internal/middleware"
	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/money"
	"github.com/splitsync/splitsync/internal/storage"
)

// ExpenseService handles expense creation and retrieval. Share amounts
// are computed by the ledger allocator and persisted alongside the
// expense; they are never trusted from the client for equal splits.
type ExpenseService struct {
	store storage.Store
	locks *groupLocks
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store, locks *groupLocks) *ExpenseService {
	return &ExpenseService{store: store, locks: locks}
}

type createExpenseRequest struct {
	GroupID      string                 `json:"group_id"`
	Amount       money.Money            `json:"amount"`
	Description  string                 `json:"description"`
	PaidBy       string                 `json:"paid_by"`
	SplitType    models.SplitType       `json:"split_type"`
	Participants []string               `json:"participants"`
	CustomSplits map[string]money.Money `json:"custom_splits,omitempty"`
}

type shareResponse struct {
	UserID string      `json:"user_id"`
	Amount money.Money `json:"amount"`
}

type expenseResponse struct {
	ID          string           `json:"id"`
	GroupID     string           `json:"group_id"`
	Amount      money.Money      `json:"amount"`
	Description string           `json:"description"`
	PaidBy      string           `json:"paid_by"`
	SplitType   models.SplitType `json:"split_type"`
	Shares      []shareResponse  `json:"shares"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   int64            `json:"created_at"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	shares := make([]shareResponse, len(e.Shares))
	for i, share := range e.Shares {
		shares[i] = shareResponse{UserID: share.UserID, Amount: share.Amount}
	}
	return expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Amount:      e.Amount,
		Description: e.Description,
		PaidBy:      e.PaidBy,
		SplitType:   e.SplitType,
		Shares:      shares,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// Create records an expense: validates membership, allocates shares, and
// persists expense plus shares atomically. Either the full valid result
// is stored or nothing is.
func (s *ExpenseService) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, errAuthRequired)
		return
	}

	var req createExpenseRequest
	if err := httpx.Decode(r, &req); err != nil {
		respondError(w, errBadRequest)
		return
	}
	if req.GroupID == "" || req.Description == "" || req.PaidBy == "" {
		respondError(w, errBadRequest)
		return
	}

	unlock := s.locks.Lock(req.GroupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), req.GroupID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !group.HasMember(userID) {
		respondError(w, ErrNotMember)
		return
	}
	if !group.HasMember(req.PaidBy) {
		respondError(w, ErrNotMember)
		return
	}
	for _, participant := range req.Participants {
		if !group.HasMember(participant) {
			respondError(w, ErrNotMember)
			return
		}
	}

	shares, err := ledger.Allocate(req.Amount, req.Participants, req.SplitType, req.CustomSplits)
	if err != nil {
		slog.Warn("Expense allocation rejected", "group_id", req.GroupID, "error", err)
		respondError(w, err)
		return
	}

	expense := &models.Expense{
		GroupID:     req.GroupID,
		Amount:      req.Amount,
		Description: req.Description,
		PaidBy:      req.PaidBy,
		SplitType:   req.SplitType,
		Shares:      shares,
		CreatedBy:   userID,
	}
	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", req.GroupID, "error", err)
		respondError(w, err)
		return
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount.String(),
		"split_type", expense.SplitType,
	)
	httpx.JSON(w, http.StatusCreated, toExpenseResponse(expense))
}

// Get retrieves one expense with its share breakdown.
func (s *ExpenseService) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	expenseID := mux.Vars(r)["expenseID"]

	expense, err := s.store.GetExpense(r.Context(), expenseID)
	if err != nil {
		respondError(w, err)
		return
	}

	group, err := s.store.GetGroup(r.Context(), expense.GroupID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !group.HasMember(userID) {
		respondError(w, ErrNotMember)
		return
	}
	httpx.JSON(w, http.StatusOK, toExpenseResponse(expense))
}

// ListByGroup retrieves a group's expenses, newest first.
func (s *ExpenseService) ListByGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := mux.Vars(r)["groupID"]

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !group.HasMember(userID) {
		respondError(w, ErrNotMember)
		return
	}

	expenses, err := s.store.ListExpensesByGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, expense := range expenses {
		resp[i] = toExpenseResponse(expense)
	}
	httpx.JSON(w, http.StatusOK, resp)
}
