package service

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/splitsync/splitsync/internal/httpx"
	"github.com/splitsync/splitsync/internal/middleware"
	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/storage"
)

// GroupService handles group lifecycle and membership.
type GroupService struct {
	store storage.Store
	locks *groupLocks
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, locks *groupLocks) *GroupService {
	return &GroupService{store: store, locks: locks}
}

type createGroupRequest struct {
	Name string `json:"name"`
	// MemberIDs are additional users to add alongside the creator.
	MemberIDs []string `json:"member_ids"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

type memberResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joined_at"`
}

type groupResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Members   []memberResponse `json:"members"`
	CreatedAt int64            `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	members := make([]memberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = memberResponse{UserID: m.UserID, Name: m.Name, JoinedAt: m.JoinedAt}
	}
	return groupResponse{ID: g.ID, Name: g.Name, Members: members, CreatedAt: g.CreatedAt}
}

// Create creates a new group. The acting user always becomes a member.
func (s *GroupService) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, errAuthRequired)
		return
	}

	var req createGroupRequest
	if err := httpx.Decode(r, &req); err != nil || req.Name == "" {
		respondError(w, errBadRequest)
		return
	}

	group := &models.Group{
		Name:    req.Name,
		Members: []models.Member{{UserID: userID}},
	}
	for _, id := range req.MemberIDs {
		if id != userID {
			group.Members = append(group.Members, models.Member{UserID: id})
		}
	}

	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		slog.Error("CreateGroup failed", "name", req.Name, "error", err)
		respondError(w, err)
		return
	}

	// Re-read to pick up denormalized member names.
	created, err := s.store.GetGroup(r.Context(), group.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name)
	httpx.JSON(w, http.StatusCreated, toGroupResponse(created))
}

// Get retrieves a group by ID. Only members may view a group.
func (s *GroupService) Get(w http.ResponseWriter, r *http.Request) {
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
	httpx.JSON(w, http.StatusOK, toGroupResponse(group))
}

// List returns the acting user's groups, or a single group looked up by
// the name query parameter.
func (s *GroupService) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, errAuthRequired)
		return
	}

	if name := r.URL.Query().Get("name"); name != "" {
		group, err := s.store.GetGroupByName(r.Context(), name)
		if err != nil {
			respondError(w, err)
			return
		}
		if !group.HasMember(userID) {
			respondError(w, ErrNotMember)
			return
		}
		httpx.JSON(w, http.StatusOK, []groupResponse{toGroupResponse(group)})
		return
	}

	groups, err := s.store.ListGroupsByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]groupResponse, len(groups))
	for i, group := range groups {
		resp[i] = toGroupResponse(group)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Delete removes a group and everything it owns. Only members may delete.
func (s *GroupService) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := mux.Vars(r)["groupID"]

	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !group.HasMember(userID) {
		respondError(w, ErrNotMember)
		return
	}

	if err := s.store.DeleteGroup(r.Context(), groupID); err != nil {
		respondError(w, err)
		return
	}
	slog.Info("Group deleted", "group_id", groupID, "user_id", userID)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddMember adds a user to a group. Only existing members may invite.
func (s *GroupService) AddMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := mux.Vars(r)["groupID"]

	var req addMemberRequest
	if err := httpx.Decode(r, &req); err != nil || req.UserID == "" {
		respondError(w, errBadRequest)
		return
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !group.HasMember(userID) {
		respondError(w, ErrNotMember)
		return
	}

	// Reject unknown users up front for a clean 404.
	if _, err := s.store.GetUserByID(r.Context(), req.UserID); err != nil {
		respondError(w, err)
		return
	}

	if err := s.store.AddMember(r.Context(), &models.Member{GroupID: groupID, UserID: req.UserID}); err != nil {
		respondError(w, err)
		return
	}

	updated, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	slog.Info("Member added", "group_id", groupID, "user_id", req.UserID)
	httpx.JSON(w, http.StatusOK, toGroupResponse(updated))
}

// RemoveMember removes a user from a group. Removal is rejected while the
// member has a nonzero net balance; debts must be settled first.
func (s *GroupService) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	vars := mux.Vars(r)
	groupID, targetID := vars["groupID"], vars["userID"]

	unlock := s.locks.Lock(groupID)
	defer unlock()

	gl, err := s.store.LoadGroupLedger(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !gl.Group.HasMember(userID) {
		respondError(w, ErrNotMember)
		return
	}
	if !gl.Group.HasMember(targetID) {
		respondError(w, storage.ErrNotFound)
		return
	}

	if net := computeGroupBalances(gl).Net(targetID); !net.IsZero() {
		slog.Warn("Member removal blocked",
			"group_id", groupID,
			"user_id", targetID,
			"net_balance", net.String(),
		)
		respondError(w, ErrOutstandingBalance)
		return
	}

	if err := s.store.RemoveMember(r.Context(), groupID, targetID); err != nil {
		respondError(w, err)
		return
	}
	slog.Info("Member removed", "group_id", groupID, "user_id", targetID)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
