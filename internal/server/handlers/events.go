package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/wedding"
)

type eventView struct {
	ID            string     `json:"id"`
	WeddingID     string     `json:"wedding_id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	EventType     string     `json:"event_type"`
	Date          time.Time  `json:"date"`
	StartTime     *string    `json:"start_time,omitempty"`
	EndTime       *string    `json:"end_time,omitempty"`
	Venue         string     `json:"venue"`
	City          string     `json:"city"`
	DressCode     *string    `json:"dress_code,omitempty"`
	RSVPDeadline  *time.Time `json:"rsvp_deadline,omitempty"`
	AutoGenerated bool       `json:"auto_generated"`
	CreatedAt     time.Time  `json:"created_at"`
}

func eventToView(e *database.Event) eventView {
	return eventView{
		ID:            e.ID,
		WeddingID:     e.WeddingID,
		Name:          e.Name,
		Description:   nullableString(e.Description),
		EventType:     e.EventType,
		Date:          e.Date,
		StartTime:     nullableString(e.StartTime),
		EndTime:       nullableString(e.EndTime),
		Venue:         e.Venue,
		City:          e.City,
		DressCode:     nullableString(e.DressCode),
		RSVPDeadline:  nullableTime(e.RSVPDeadline),
		AutoGenerated: e.AutoGenerated,
		CreatedAt:     e.CreatedAt,
	}
}

type eventRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Venue        string `json:"venue"`
	City         string `json:"city"`
	DressCode    string `json:"dress_code"`
	RSVPDeadline string `json:"rsvp_deadline"`
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func (req *eventRequest) toInput() (wedding.EventInput, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return wedding.EventInput{}, errs.Validation("invalid date %q", req.Date)
	}
	deadline, err := parseDate(req.RSVPDeadline)
	if err != nil {
		return wedding.EventInput{}, errs.Validation("invalid rsvp deadline %q", req.RSVPDeadline)
	}
	return wedding.EventInput{
		Name:         req.Name,
		Description:  req.Description,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Venue:        req.Venue,
		City:         req.City,
		DressCode:    req.DressCode,
		RSVPDeadline: deadline,
	}, nil
}

// HandleCreateEvent adds a custom event to a wedding.
func HandleCreateEvent(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := requireCaller(s, w, r)
		if !ok {
			return
		}

		var req eventRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		in, err := req.toInput()
		if err != nil {
			writeError(w, err)
			return
		}

		event, err := s.Weddings().CreateCustomEvent(r.Context(), callerID, mux.Vars(r)["id"], in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, eventToView(event))
	}
}

// HandleListEvents lists a wedding's events in date order.
func HandleListEvents(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		events, err := s.Weddings().ListEvents(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, err)
			return
		}

		views := make([]eventView, 0, len(events))
		for _, e := range events {
			views = append(views, eventToView(e))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// HandleUpdateEvent edits an event. Auto-generated events are editable
// but not deletable.
func HandleUpdateEvent(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		var req eventRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		in, err := req.toInput()
		if err != nil {
			writeError(w, err)
			return
		}

		event, err := s.Weddings().UpdateEvent(r.Context(), mux.Vars(r)["id"], in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, eventToView(event))
	}
}

// HandleDeleteEvent removes a custom event.
func HandleDeleteEvent(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		if err := s.Weddings().DeleteEvent(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
