package service

import (
	"log/slog"
	"net/http"

	"github.com/splitsync/splitsync/internal/auth"
	"github.com/splitsync/splitsync/internal/httpx"
	"github.com/splitsync/splitsync/internal/middleware"
	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/storage"
)

// AuthService handles registration, login, and session introspection.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	UPI       string `json:"upi,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		UPI:       u.UPI,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a new user account and returns a session token.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(r, &req); err != nil {
		respondError(w, errBadRequest)
		return
	}
	if req.Email == "" || req.Name == "" {
		respondError(w, auth.ErrInvalidCredentials)
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		slog.Error("Registration failed", "email", req.Email, "error", err)
		respondError(w, err)
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		respondError(w, err)
		return
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	httpx.JSON(w, http.StatusCreated, sessionResponse{User: toUserResponse(user), Token: token})
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		respondError(w, errBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, auth.ErrInvalidCredentials)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("Login failed", "email", req.Email)
		respondError(w, auth.ErrInvalidCredentials)
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		respondError(w, err)
		return
	}

	slog.Info("User logged in", "user_id", user.ID)
	httpx.JSON(w, http.StatusOK, sessionResponse{User: toUserResponse(user), Token: token})
}

// Logout ends the session. With stateless JWTs this is handled client-side
// by discarding the token; the endpoint exists so clients have a uniform
// flow.
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the currently authenticated user.
func (s *AuthService) Me(w http.ResponseWriter, r *http.Request) {
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
