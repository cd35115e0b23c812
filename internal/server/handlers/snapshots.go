package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/emowed/emowed-server/internal/database"
)

type snapshotView struct {
	ID                  string    `json:"id"`
	EventID             string    `json:"event_id"`
	WeddingID           string    `json:"wedding_id"`
	Side                *string   `json:"side,omitempty"`
	TotalInvited        int       `json:"total_invited"`
	TotalAttending      int       `json:"total_attending"`
	TotalDeclined       int       `json:"total_declined"`
	TotalMaybe          int       `json:"total_maybe"`
	TotalPending        int       `json:"total_pending"`
	AdultsCount         int       `json:"adults_count"`
	TeensCount          int       `json:"teens_count"`
	ChildrenCount       int       `json:"children_count"`
	CalculatedHeadcount float64   `json:"calculated_headcount"`
	VegetarianCount     int       `json:"vegetarian_count"`
	VeganCount          int       `json:"vegan_count"`
	HalalCount          int       `json:"halal_count"`
	SnapshotDate        time.Time `json:"snapshot_date"`
}

func snapshotToView(s *database.HeadcountSnapshot) snapshotView {
	return snapshotView{
		ID:                  s.ID,
		EventID:             s.EventID,
		WeddingID:           s.WeddingID,
		Side:                nullableString(s.Side),
		TotalInvited:        s.TotalInvited,
		TotalAttending:      s.TotalAttending,
		TotalDeclined:       s.TotalDeclined,
		TotalMaybe:          s.TotalMaybe,
		TotalPending:        s.TotalPending,
		AdultsCount:         s.AdultsCount,
		TeensCount:          s.TeensCount,
		ChildrenCount:       s.ChildrenCount,
		CalculatedHeadcount: roundedHeadcount(s.CalculatedHeadcount),
		VegetarianCount:     s.VegetarianCount,
		VeganCount:          s.VeganCount,
		HalalCount:          s.HalalCount,
		SnapshotDate:        s.SnapshotDate,
	}
}

// HandleComputeSnapshot appends a fresh snapshot for an event, optionally
// filtered to one side via the side query parameter.
func HandleComputeSnapshot(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		snap, err := s.Snapshots().Compute(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("side"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, snapshotToView(snap))
	}
}

// HandleLatestSnapshot returns the most recent snapshot for an event and
// optional side.
func HandleLatestSnapshot(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		snap, err := s.Snapshots().Latest(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("side"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snapshotToView(snap))
	}
}
