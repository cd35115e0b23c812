package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/rsvp"
)

type rsvpView struct {
	ID                  string     `json:"id"`
	EventID             string     `json:"event_id"`
	GuestID             string     `json:"guest_id"`
	WeddingID           string     `json:"wedding_id"`
	Status              string     `json:"status"`
	AdultsCount         int        `json:"adults_count"`
	TeensCount          int        `json:"teens_count"`
	ChildrenCount       int        `json:"children_count"`
	CalculatedHeadcount float64    `json:"calculated_headcount"`
	DietaryPreferences  []string   `json:"dietary_preferences,omitempty"`
	SpecialRequirements *string    `json:"special_requirements,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	SubmittedAt         *time.Time `json:"submitted_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func rsvpToView(r *database.RSVP) rsvpView {
	return rsvpView{
		ID:                  r.ID,
		EventID:             r.EventID,
		GuestID:             r.GuestID,
		WeddingID:           r.WeddingID,
		Status:              r.Status,
		AdultsCount:         r.AdultsCount,
		TeensCount:          r.TeensCount,
		ChildrenCount:       r.ChildrenCount,
		CalculatedHeadcount: roundedHeadcount(r.CalculatedHeadcount),
		DietaryPreferences:  r.DietaryPreferences,
		SpecialRequirements: nullableString(r.SpecialRequirements),
		Notes:               nullableString(r.RSVPNotes),
		SubmittedAt:         nullableTime(r.SubmittedAt),
		CreatedAt:           r.CreatedAt,
	}
}

// HandleSubmitRSVP records or updates a guest's RSVP for an event.
// Resubmitting is idempotent; the same pair keeps a single row.
func HandleSubmitRSVP(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		var req struct {
			GuestID             string   `json:"guest_id"`
			Status              string   `json:"status"`
			AdultsCount         int      `json:"adults_count"`
			TeensCount          int      `json:"teens_count"`
			ChildrenCount       int      `json:"children_count"`
			DietaryPreferences  []string `json:"dietary_preferences"`
			SpecialRequirements string   `json:"special_requirements"`
			Notes               string   `json:"notes"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.GuestID == "" {
			writeError(w, errs.Validation("guest_id is required"))
			return
		}

		stored, err := s.RSVP().SubmitOrUpdate(r.Context(), mux.Vars(r)["id"], req.GuestID, rsvp.SubmitInput{
			Status:              req.Status,
			AdultsCount:         req.AdultsCount,
			TeensCount:          req.TeensCount,
			ChildrenCount:       req.ChildrenCount,
			DietaryPreferences:  req.DietaryPreferences,
			SpecialRequirements: req.SpecialRequirements,
			Notes:               req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rsvpToView(stored))
	}
}

// HandleGetRSVP fetches the stored RSVP for an (event, guest) pair.
func HandleGetRSVP(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		guestID := r.URL.Query().Get("guest_id")
		if guestID == "" {
			writeError(w, errs.Validation("guest_id is required"))
			return
		}

		stored, err := s.RSVP().Get(r.Context(), mux.Vars(r)["id"], guestID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rsvpToView(stored))
	}
}
