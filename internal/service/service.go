// Package service implements the REST handlers for SplitSync. Each service
// holds the storage backend and exposes http.HandlerFunc methods; routing
// lives in Router.
package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/splitsync/splitsync/internal/auth"
	"github.com/splitsync/splitsync/internal/httpx"
	"github.com/splitsync/splitsync/internal/ledger"
	"github.com/splitsync/splitsync/internal/money"
	"github.com/splitsync/splitsync/internal/storage"
)

var (
	// ErrNotMember indicates the acting user does not belong to the group.
	ErrNotMember = errors.New("you must be a member of this group")

	// ErrOutstandingBalance indicates a member removal blocked by a
	// nonzero net balance.
	ErrOutstandingBalance = errors.New("member has an outstanding balance and cannot be removed")

	errAuthRequired = errors.New("authentication required")
	errBadRequest   = errors.New("invalid request body")
)

// respondError translates domain errors into HTTP status codes:
// validation 400, auth 401, membership 403, missing 404, duplicates and
// blocked removals 409, invariant violations and the rest 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case isValidationError(err):
		httpx.Error(w, http.StatusBadRequest, err)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, errAuthRequired):
		httpx.Error(w, http.StatusUnauthorized, err)
	case errors.Is(err, ErrNotMember):
		httpx.Error(w, http.StatusForbidden, err)
	case errors.Is(err, storage.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, err)
	case errors.Is(err, storage.ErrConflict),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, ErrOutstandingBalance):
		httpx.Error(w, http.StatusConflict, err)
	case errors.Is(err, ledger.ErrUnbalanced):
		// Always a defect upstream, never user-caused.
		slog.Error("Balance invariant violated", "error", err)
		httpx.Error(w, http.StatusInternalServerError, err)
	default:
		httpx.Error(w, http.StatusInternalServerError, err)
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		ledger.ErrInvalidAmount,
		ledger.ErrEmptyParticipants,
		ledger.ErrDuplicateParticipant,
		ledger.ErrAmountMismatch,
		ledger.ErrSplitCoverage,
		ledger.ErrUnknownSplitType,
		auth.ErrWeakPassword,
		money.ErrTooPrecise,
		money.ErrOutOfRange,
		errBadRequest,
		errSelfSettlement,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
