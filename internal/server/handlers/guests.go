package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/registry"
)

type guestView struct {
	ID                  string     `json:"id"`
	WeddingID           string     `json:"wedding_id"`
	UserID              *string    `json:"user_id,omitempty"`
	Email               *string    `json:"email,omitempty"`
	FullName            string     `json:"full_name"`
	Phone               *string    `json:"phone,omitempty"`
	Side                string     `json:"side"`
	Role                string     `json:"role"`
	InvitedBy           string     `json:"invited_by"`
	CanInviteOthers     bool       `json:"can_invite_others"`
	PlusOneAllowed      bool       `json:"plus_one_allowed"`
	PlusOneName         *string    `json:"plus_one_name,omitempty"`
	IsVIP               bool       `json:"is_vip"`
	Under18             bool       `json:"under_18"`
	Age                 *int       `json:"age,omitempty"`
	DietaryPreferences  []string   `json:"dietary_preferences,omitempty"`
	SpecialRequirements *string    `json:"special_requirements,omitempty"`
	Status              string     `json:"status"`
	InvitationSentAt    *time.Time `json:"invitation_sent_at,omitempty"`
	RespondedAt         *time.Time `json:"responded_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func guestToView(g *database.Guest) guestView {
	v := guestView{
		ID:                  g.ID,
		WeddingID:           g.WeddingID,
		UserID:              nullableString(g.UserID),
		Email:               nullableString(g.Email),
		FullName:            g.FullName,
		Phone:               nullableString(g.Phone),
		Side:                g.Side,
		Role:                g.Role,
		InvitedBy:           g.InvitedBy,
		CanInviteOthers:     g.CanInviteOthers,
		PlusOneAllowed:      g.PlusOneAllowed,
		PlusOneName:         nullableString(g.PlusOneName),
		IsVIP:               g.IsVIP,
		Under18:             g.Under18,
		DietaryPreferences:  g.DietaryPreferences,
		SpecialRequirements: nullableString(g.SpecialRequirements),
		Status:              g.Status,
		InvitationSentAt:    nullableTime(g.InvitationSentAt),
		RespondedAt:         nullableTime(g.RespondedAt),
		CreatedAt:           g.CreatedAt,
	}
	if g.Age.Valid {
		age := int(g.Age.Int64)
		v.Age = &age
	}
	return v
}

// HandleInviteGuest adds a guest to the wedding's registry.
func HandleInviteGuest(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		var req struct {
			FullName            string   `json:"full_name"`
			Email               string   `json:"email"`
			Phone               string   `json:"phone"`
			Side                string   `json:"side"`
			Role                string   `json:"role"`
			CanInviteOthers     bool     `json:"can_invite_others"`
			PlusOneAllowed      bool     `json:"plus_one_allowed"`
			PlusOneName         string   `json:"plus_one_name"`
			IsVIP               bool     `json:"is_vip"`
			Under18             bool     `json:"under_18"`
			Age                 int      `json:"age"`
			DietaryPreferences  []string `json:"dietary_preferences"`
			SpecialRequirements string   `json:"special_requirements"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		guest, err := s.Registry().InviteGuest(r.Context(), callerID, mux.Vars(r)["id"], registry.InviteGuestInput{
			FullName:            req.FullName,
			Email:               req.Email,
			Phone:               req.Phone,
			Side:                req.Side,
			Role:                req.Role,
			CanInviteOthers:     req.CanInviteOthers,
			PlusOneAllowed:      req.PlusOneAllowed,
			PlusOneName:         req.PlusOneName,
			IsVIP:               req.IsVIP,
			Under18:             req.Under18,
			Age:                 req.Age,
			DietaryPreferences:  req.DietaryPreferences,
			SpecialRequirements: req.SpecialRequirements,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, guestToView(guest))
	}
}

// HandleListGuests lists a wedding's guests with optional side, role,
// status and search filters.
func HandleListGuests(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		q := r.URL.Query()
		guests, err := s.Registry().ListGuests(r.Context(), mux.Vars(r)["id"], database.GuestFilter{
			Side:   q.Get("side"),
			Role:   q.Get("role"),
			Status: q.Get("status"),
			Search: q.Get("search"),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		views := make([]guestView, 0, len(guests))
		for _, g := range guests {
			views = append(views, guestToView(g))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// HandleUpdateGuest applies a partial update to a guest.
func HandleUpdateGuest(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		var req struct {
			FullName            *string  `json:"full_name"`
			Email               *string  `json:"email"`
			Phone               *string  `json:"phone"`
			Side                *string  `json:"side"`
			Role                *string  `json:"role"`
			CanInviteOthers     *bool    `json:"can_invite_others"`
			PlusOneAllowed      *bool    `json:"plus_one_allowed"`
			PlusOneName         *string  `json:"plus_one_name"`
			IsVIP               *bool    `json:"is_vip"`
			Under18             *bool    `json:"under_18"`
			Age                 *int     `json:"age"`
			DietaryPreferences  []string `json:"dietary_preferences"`
			SpecialRequirements *string  `json:"special_requirements"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		guest, err := s.Registry().UpdateGuest(r.Context(), mux.Vars(r)["id"], registry.GuestPatch{
			FullName:            req.FullName,
			Email:               req.Email,
			Phone:               req.Phone,
			Side:                req.Side,
			Role:                req.Role,
			CanInviteOthers:     req.CanInviteOthers,
			PlusOneAllowed:      req.PlusOneAllowed,
			PlusOneName:         req.PlusOneName,
			IsVIP:               req.IsVIP,
			Under18:             req.Under18,
			Age:                 req.Age,
			DietaryPreferences:  req.DietaryPreferences,
			SpecialRequirements: req.SpecialRequirements,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, guestToView(guest))
	}
}

// HandleRemoveGuest hard-deletes a guest and its RSVP rows.
func HandleRemoveGuest(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		if err := s.Registry().RemoveGuest(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
