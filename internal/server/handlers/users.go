package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/utils"
)

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func userToView(u *database.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     nullableString(u.Phone),
		CreatedAt: u.CreatedAt,
	}
}

// SessionWriter is implemented by the server wiring to bind a user ID to
// the request's session cookie.
type SessionWriter interface {
	SetCurrentUser(w http.ResponseWriter, r *http.Request, userID string) error
	ClearCurrentUser(w http.ResponseWriter, r *http.Request) error
}

// HandleRegister creates a user account and starts a session.
func HandleRegister(s Server, sessions SessionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			FullName string `json:"full_name"`
			Phone    string `json:"phone"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || !strings.Contains(email, "@") {
			writeError(w, errs.Validation("a valid email is required"))
			return
		}
		if len(strings.TrimSpace(req.FullName)) < 3 {
			writeError(w, errs.Validation("full name must be at least 3 characters"))
			return
		}

		phone := ""
		if req.Phone != "" {
			normalized, err := utils.NormalizePhoneNumber(req.Phone)
			if err != nil {
				writeError(w, errs.Validation("invalid phone number %q", req.Phone))
				return
			}
			phone = normalized
		}

		existing, err := s.GetDB().GetUserByEmail(r.Context(), email)
		if err != nil {
			writeError(w, errs.Dependency(err, "checking existing user"))
			return
		}
		if existing != nil {
			writeError(w, errs.Conflict("an account with this email already exists"))
			return
		}

		user, err := s.GetDB().CreateUser(r.Context(), email, strings.TrimSpace(req.FullName), phone)
		if err != nil {
			writeError(w, errs.Dependency(err, "creating user"))
			return
		}

		if err := sessions.SetCurrentUser(w, r, user.ID); err != nil {
			writeError(w, errs.Dependency(err, "saving session"))
			return
		}
		writeJSON(w, http.StatusCreated, userToView(user))
	}
}

// HandleLogin starts a session for an existing account, looked up by
// email.
func HandleLogin(s Server, sessions SessionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		user, err := s.GetDB().GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			writeError(w, errs.Dependency(err, "loading user"))
			return
		}
		if user == nil {
			writeError(w, errs.NotFound("no account for this email"))
			return
		}

		if err := sessions.SetCurrentUser(w, r, user.ID); err != nil {
			writeError(w, errs.Dependency(err, "saving session"))
			return
		}
		writeJSON(w, http.StatusOK, userToView(user))
	}
}

// HandleLogout clears the session.
func HandleLogout(sessions SessionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.ClearCurrentUser(w, r); err != nil {
			writeError(w, errs.Dependency(err, "clearing session"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleCurrentUser returns the authenticated caller's account.
func HandleCurrentUser(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		user, err := s.GetDB().GetUserByID(r.Context(), callerID)
		if err != nil {
			writeError(w, errs.Dependency(err, "loading user"))
			return
		}
		if user == nil {
			writeError(w, errs.NotFound("account no longer exists"))
			return
		}
		writeJSON(w, http.StatusOK, userToView(user))
	}
}
