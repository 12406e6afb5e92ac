package service

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitsync/splitsync/internal/auth"
	"github.com/splitsync/splitsync/internal/httpx"
	"github.com/splitsync/splitsync/internal/middleware"
	"github.com/splitsync/splitsync/internal/storage"
)

// NewRouter wires every service onto a single mux. Auth endpoints are
// public; everything under /api requires a valid session token.
func NewRouter(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager) *mux.Router {
	locks := newGroupLocks()

	authSvc := NewAuthService(authenticator, jwtManager, store)
	userSvc := NewUserService(store)
	groupSvc := NewGroupService(store, locks)
	expenseSvc := NewExpenseService(store, locks)
	settlementSvc := NewSettlementService(store, locks)

	r := mux.NewRouter()
	// OptionalAuth runs before Logging so request logs carry user identity
	// even on public routes; RequireAuth on the API subrouter still gates
	// access.
	r.Use(middleware.Metrics, middleware.OptionalAuth(jwtManager), middleware.Logging)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	public := r.PathPrefix("/api/auth").Subrouter()
	public.HandleFunc("/register", authSvc.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", authSvc.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireAuth(jwtManager))

	api.HandleFunc("/auth/logout", authSvc.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", authSvc.Me).Methods(http.MethodGet)

	api.HandleFunc("/users/me", userSvc.GetMe).Methods(http.MethodGet)
	api.HandleFunc("/users/me", userSvc.UpdateMe).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/users/me", userSvc.DeleteMe).Methods(http.MethodDelete)
	api.HandleFunc("/users/me/password", userSvc.ChangePassword).Methods(http.MethodPut)
	api.HandleFunc("/users/me/dashboard", userSvc.Dashboard).Methods(http.MethodGet)

	api.HandleFunc("/groups", groupSvc.Create).Methods(http.MethodPost)
	api.HandleFunc("/groups", groupSvc.List).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupID}", groupSvc.Get).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupID}", groupSvc.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{groupID}/members", groupSvc.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/groups/{groupID}/members/{userID}", groupSvc.RemoveMember).Methods(http.MethodDelete)

	api.HandleFunc("/expenses", expenseSvc.Create).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{expenseID}", expenseSvc.Get).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupID}/expenses", expenseSvc.ListByGroup).Methods(http.MethodGet)

	api.HandleFunc("/groups/{groupID}/balances", settlementSvc.Balances).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupID}/settlements", settlementSvc.Create).Methods(http.MethodPost)
	api.HandleFunc("/groups/{groupID}/settlements", settlementSvc.List).Methods(http.MethodGet)

	return r
}
