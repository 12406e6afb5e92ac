package service

import (
	"log/slog"
	"net/http"

	"github.com/splitsync/splitsync/internal/auth"
	"github.com/splitsync/splitsync/internal/httpx"
	"github.com/splitsync/splitsync/internal/ledger"
	"github.com/splitsync/splitsync/internal/middleware"
	"github.com/splitsync/splitsync/internal/money"
	"github.com/splitsync/splitsync/internal/storage"
)

// UserService handles profile management and the cross-group dashboard
// summary.
type UserService struct {
	store storage.Store
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	UPI   string `json:"upi"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// groupBalanceSummary is one group's net position for the dashboard.
type groupBalanceSummary struct {
	GroupID   string      `json:"group_id"`
	GroupName string      `json:"group_name"`
	Net       money.Money `json:"net"`
}

type dashboardResponse struct {
	// TotalOwedToYou sums positive group nets; TotalYouOwe sums the
	// magnitudes of negative ones.
	TotalOwedToYou money.Money           `json:"total_owed_to_you"`
	TotalYouOwe    money.Money           `json:"total_you_owe"`
	Groups         []groupBalanceSummary `json:"groups"`
}

// GetMe returns the acting user's profile.
func (s *UserService) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, errAuthRequired)
		return
	}

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateMe updates name, email, and UPI handle.
func (s *UserService) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, errAuthRequired)
		return
	}

	var req updateProfileRequest
	if err := httpx.Decode(r, &req); err != nil {
		respondError(w, errBadRequest)
		return
	}

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.UPI != "" {
		user.UPI = req.UPI
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		slog.Error("UpdateMe failed", "user_id", userID, "error", err)
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

// ChangePassword verifies the current password and stores a new hash.
func (s *UserService) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, errAuthRequired)
		return
	}

	var req changePasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		respondError(w, errBadRequest)
		return
	}

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		respondError(w, err)
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(w, auth.ErrWeakPassword)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.store.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Password changed", "user_id", userID)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// DeleteMe removes the acting user's account.
func (s *UserService) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, errAuthRequired)
		return
	}

	if err := s.store.DeleteUser(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	slog.Info("Account deleted", "user_id", userID)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "account deleted"})
}

// Dashboard aggregates the user's net balance across every group for the
// "you owe" / "you are owed" summary.
func (s *UserService) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, errAuthRequired)
		return
	}

	groups, err := s.store.ListGroupsByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dashboardResponse{Groups: []groupBalanceSummary{}}
	for _, group := range groups {
		gl, err := s.store.LoadGroupLedger(r.Context(), group.ID)
		if err != nil {
			respondError(w, err)
			return
		}

		net := computeGroupBalances(gl).Net(userID)
		resp.Groups = append(resp.Groups, groupBalanceSummary{
			GroupID:   group.ID,
			GroupName: group.Name,
			Net:       net,
		})
		if net.IsPositive() {
			resp.TotalOwedToYou = resp.TotalOwedToYou.Add(net)
		} else {
			resp.TotalYouOwe = resp.TotalYouOwe.Add(net.Neg())
		}
	}

	httpx.JSON(w, http.StatusOK, resp)
}

// computeGroupBalances folds a group's expenses and settlements into
// netted pairwise balances.
func computeGroupBalances(gl *storage.GroupLedger) *ledger.Balances {
	var entries []ledger.Entry
	for _, expense := range gl.Expenses {
		entries = append(entries, ledger.ExpenseEntries(expense)...)
	}
	for _, settlement := range gl.Settlements {
		entries = append(entries, ledger.SettlementEntry(settlement))
	}
	return ledger.ComputeBalances(gl.Group.MemberIDs(), entries)
}
