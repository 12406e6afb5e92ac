package service

import (
	"errors"
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

var errSelfSettlement = errors.New("cannot settle with yourself")

// SettlementService handles recorded payments and the balances view,
// including the suggested-transfer plan that minimizes settling payments.
type SettlementService struct {
	store storage.Store
	locks *groupLocks
}

// NewSettlementService creates a new SettlementService with the given
// storage backend.
func NewSettlementService(store storage.Store, locks *groupLocks) *SettlementService {
	return &SettlementService{store: store, locks: locks}
}

type createSettlementRequest struct {
	ToUserID string      `json:"to_user_id"`
	Amount   money.Money `json:"amount"`
	Note     string      `json:"note,omitempty"`
}

type settlementResponse struct {
	ID         string      `json:"id"`
	GroupID    string      `json:"group_id"`
	FromUserID string      `json:"from_user_id"`
	ToUserID   string      `json:"to_user_id"`
	Amount     money.Money `json:"amount"`
	Note       string      `json:"note,omitempty"`
	CreatedBy  string      `json:"created_by"`
	CreatedAt  int64       `json:"created_at"`
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Note:       s.Note,
		CreatedBy:  s.CreatedBy,
		CreatedAt:  s.CreatedAt,
	}
}

// memberBalance is one member's aggregate position within a group.
type memberBalance struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name"`
	Net    money.Money `json:"net"`
}

type pairwiseDebt struct {
	FromUserID string      `json:"from_user_id"`
	ToUserID   string      `json:"to_user_id"`
	Amount     money.Money `json:"amount"`
}

type suggestedTransfer struct {
	FromUserID string      `json:"from_user_id"`
	ToUserID   string      `json:"to_user_id"`
	Amount     money.Money `json:"amount"`
}

type balancesResponse struct {
	GroupID   string              `json:"group_id"`
	Members   []memberBalance     `json:"members"`
	Pairwise  []pairwiseDebt      `json:"pairwise"`
	Suggested []suggestedTransfer `json:"suggested_settlements"`
}

// Balances returns the group's netted pairwise debts, each member's
// aggregate position, and a minimal transfer plan that would settle
// everyone.
func (s *SettlementService) Balances(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := mux.Vars(r)["groupID"]

	gl, err := s.store.LoadGroupLedger(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !gl.Group.HasMember(userID) {
		respondError(w, ErrNotMember)
		return
	}

	balances := computeGroupBalances(gl)
	nets := balances.NetAll()

	transfers, err := ledger.MinimizeSettlements(nets)
	if err != nil {
		respondError(w, err)
		return
	}

	namesByID := make(map[string]string, len(gl.Group.Members))
	for _, m := range gl.Group.Members {
		namesByID[m.UserID] = m.Name
	}

	resp := balancesResponse{
		GroupID:   groupID,
		Members:   make([]memberBalance, 0, len(nets)),
		Pairwise:  make([]pairwiseDebt, 0),
		Suggested: make([]suggestedTransfer, 0, len(transfers)),
	}
	for _, id := range balances.Members() {
		resp.Members = append(resp.Members, memberBalance{
			UserID: id,
			Name:   namesByID[id],
			Net:    nets[id],
		})
	}
	for _, pair := range balances.Pairs() {
		resp.Pairwise = append(resp.Pairwise, pairwiseDebt{
			FromUserID: pair.From,
			ToUserID:   pair.To,
			Amount:     pair.Amount,
		})
	}
	for _, t := range transfers {
		resp.Suggested = append(resp.Suggested, suggestedTransfer{
			FromUserID: t.From,
			ToUserID:   t.To,
			Amount:     t.Amount,
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Create records a payment from the acting user to another member. The
// amount does not need to match any suggested transfer; overpayment
// simply flips the direction of the remaining debt.
func (s *SettlementService) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, errAuthRequired)
		return
	}
	groupID := mux.Vars(r)["groupID"]

	var req createSettlementRequest
	if err := httpx.Decode(r, &req); err != nil || req.ToUserID == "" {
		respondError(w, errBadRequest)
		return
	}
	if !req.Amount.IsPositive() {
		respondError(w, ledger.ErrInvalidAmount)
		return
	}
	if req.ToUserID == userID {
		respondError(w, errSelfSettlement)
		return
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !group.HasMember(userID) || !group.HasMember(req.ToUserID) {
		respondError(w, ErrNotMember)
		return
	}

	settlement := &models.Settlement{
		GroupID:    groupID,
		FromUserID: userID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		Note:       req.Note,
		CreatedBy:  userID,
	}
	if err := s.store.CreateSettlement(r.Context(), settlement); err != nil {
		slog.Error("CreateSettlement failed", "group_id", groupID, "error", err)
		respondError(w, err)
		return
	}

	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"group_id", groupID,
		"from", settlement.FromUserID,
		"to", settlement.ToUserID,
		"amount", settlement.Amount.String(),
	)
	httpx.JSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

// List retrieves a group's recorded settlements, newest first.
func (s *SettlementService) List(w http.ResponseWriter, r *http.Request) {
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

	settlements, err := s.store.ListSettlementsByGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]settlementResponse, len(settlements))
	for i, settlement := range settlements {
		resp[i] = toSettlementResponse(settlement)
	}
	httpx.JSON(w, http.StatusOK, resp)
}
