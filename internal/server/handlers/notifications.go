package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
)

type notificationView struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	ActionURL *string   `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func notificationToView(n *database.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		ActionURL: nullableString(n.ActionURL),
		CreatedAt: n.CreatedAt,
	}
}

// HandleListNotifications returns the caller's notifications, newest
// first.
func HandleListNotifications(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		notifications, err := s.GetDB().ListNotificationsByUser(r.Context(), callerID)
		if err != nil {
			writeError(w, errs.Dependency(err, "listing notifications"))
			return
		}

		views := make([]notificationView, 0, len(notifications))
		for _, n := range notifications {
			views = append(views, notificationToView(n))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// HandleMarkNotificationRead flags one of the caller's notifications as
// read.
func HandleMarkNotificationRead(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		if err := s.GetDB().MarkNotificationRead(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeError(w, errs.Dependency(err, "marking notification read"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
