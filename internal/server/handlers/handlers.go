package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/emowed/emowed-server/internal/config"
	"github.com/emowed/emowed-server/internal/dashboard"
	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/invite"
	"github.com/emowed/emowed-server/internal/registry"
	"github.com/emowed/emowed-server/internal/rsvp"
	"github.com/emowed/emowed-server/internal/snapshot"
	"github.com/emowed/emowed-server/internal/wedding"
)

// Server is the interface handlers need from the server wiring.
type Server interface {
	GetDB() *database.DB
	GetConfig() *config.Config
	Registry() *registry.Service
	RSVP() *rsvp.Service
	Snapshots() *snapshot.Service
	Invites() *invite.Service
	Weddings() *wedding.Service
	Dashboard() *dashboard.Service
	// CurrentUser returns the authenticated caller's user ID, or "".
	CurrentUser(r *http.Request) string
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps typed error kinds onto HTTP status codes. Untyped
// errors read as internal failures without leaking details.
func writeError(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	status := http.StatusInternalServerError
	msg := "internal error"

	switch kind {
	case errs.KindValidation:
		status, msg = http.StatusBadRequest, err.Error()
	case errs.KindNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case errs.KindConflict:
		status, msg = http.StatusConflict, err.Error()
	case errs.KindExpired:
		status, msg = http.StatusGone, err.Error()
	case errs.KindNotAuthorized:
		status, msg = http.StatusForbidden, err.Error()
	case errs.KindDependency:
		status, msg = http.StatusBadGateway, "upstream store failure"
	}

	writeJSON(w, status, errorResponse{Error: msg, Kind: kind.String()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, errs.Validation("invalid request body"))
		return false
	}
	return true
}

// requireCaller resolves the authenticated caller or writes a 401.
func requireCaller(s Server, w http.ResponseWriter, r *http.Request) (string, bool) {
	callerID := s.CurrentUser(r)
	if callerID == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required", Kind: "not_authorized"})
		return "", false
	}
	return callerID, true
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}
