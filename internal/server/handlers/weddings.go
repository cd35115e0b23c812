package handlers

import (
	"net/http"
	"time"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/wedding"
)

type weddingView struct {
	ID          string    `json:"id"`
	CoupleID    string    `json:"couple_id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Venue       string    `json:"venue"`
	City        string    `json:"city"`
	Mode        string    `json:"mode"`
	BudgetLimit *float64  `json:"budget_limit,omitempty"`
	GuestLimit  int       `json:"guest_limit"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func weddingToView(wd *database.Wedding) weddingView {
	v := weddingView{
		ID:         wd.ID,
		CoupleID:   wd.CoupleID,
		Name:       wd.Name,
		Date:       wd.Date,
		Venue:      wd.Venue,
		City:       wd.City,
		Mode:       wd.Mode,
		GuestLimit: wd.GuestLimit,
		Status:     wd.Status,
		CreatedAt:  wd.CreatedAt,
	}
	if wd.BudgetLimit.Valid {
		v.BudgetLimit = &wd.BudgetLimit.Float64
	}
	return v
}

// HandleCreateWedding atomically creates a wedding and its canonical
// event schedule.
func HandleCreateWedding(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		var req struct {
			Name        string  `json:"name"`
			Date        string  `json:"date"`
			Venue       string  `json:"venue"`
			City        string  `json:"city"`
			Mode        string  `json:"mode"`
			BudgetLimit float64 `json:"budget_limit"`
			GuestLimit  int     `json:"guest_limit"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		date, err := parseDate(req.Date)
		if err != nil {
			writeError(w, errs.Validation("invalid date %q", req.Date))
			return
		}

		result, err := s.Weddings().CreateWeddingWithEvents(r.Context(), callerID, wedding.CreateWeddingInput{
			Name:        req.Name,
			Date:        date,
			Venue:       req.Venue,
			City:        req.City,
			Mode:        req.Mode,
			BudgetLimit: req.BudgetLimit,
			GuestLimit:  req.GuestLimit,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"wedding":        weddingToView(result.Wedding),
			"events_created": result.EventsCreated,
		})
	}
}

type dashboardEventView struct {
	Event    eventView     `json:"event"`
	Snapshot *snapshotView `json:"snapshot,omitempty"`
}

// HandleDashboard composes the engaged user's dashboard read model.
func HandleDashboard(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		data, err := s.Dashboard().Get(r.Context(), callerID)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := map[string]interface{}{
			"couple": map[string]interface{}{
				"id":           data.Couple.ID,
				"status":       data.Couple.Status,
				"engaged_date": data.Couple.EngagedDate,
			},
		}
		if data.Partner != nil {
			resp["partner"] = map[string]interface{}{
				"id":        data.Partner.ID,
				"full_name": data.Partner.FullName,
				"email":     data.Partner.Email,
			}
		}
		if data.Wedding != nil {
			resp["wedding"] = weddingToView(data.Wedding)
			resp["days_until_wedding"] = data.DaysUntilWedding
			resp["guest_counts"] = data.GuestCounts

			events := make([]dashboardEventView, 0, len(data.Events))
			for _, e := range data.Events {
				ev := dashboardEventView{Event: eventToView(e.Event)}
				if e.Snapshot != nil {
					sv := snapshotToView(e.Snapshot)
					ev.Snapshot = &sv
				}
				events = append(events, ev)
			}
			resp["events"] = events
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
