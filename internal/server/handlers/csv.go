package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/emowed/emowed-server/internal/database"
)

// csvRowData holds formatted data for a single CSV row
type csvRowData struct {
	name         string
	email        string
	phone        string
	side         string
	role         string
	status       string
	plusOne      string
	plusOneName  string
	vip          string
	dietary      string
	requirements string
}

// escapeCSVField escapes a string for CSV format
func escapeCSVField(field string) string {
	// Escape double quotes by doubling them
	escaped := strings.ReplaceAll(field, "\"", "\"\"")
	// Replace newlines with spaces for free-text fields
	escaped = strings.ReplaceAll(escaped, "\n", " ")
	return escaped
}

// formatGuestForCSV converts a guest to CSV row data
func formatGuestForCSV(g *database.Guest) csvRowData {
	row := csvRowData{
		name:         escapeCSVField(g.FullName),
		side:         g.Side,
		role:         g.Role,
		status:       g.Status,
		plusOne:      "No",
		vip:          "No",
		dietary:      "-",
		requirements: "-",
		plusOneName:  "-",
		email:        "-",
		phone:        "-",
	}

	if g.Email.Valid {
		row.email = escapeCSVField(g.Email.String)
	}
	if g.Phone.Valid {
		row.phone = escapeCSVField(g.Phone.String)
	}
	if g.PlusOneAllowed {
		row.plusOne = "Yes"
	}
	if g.PlusOneName.Valid && g.PlusOneName.String != "" {
		row.plusOneName = escapeCSVField(g.PlusOneName.String)
	}
	if g.IsVIP {
		row.vip = "Yes"
	}
	if len(g.DietaryPreferences) > 0 {
		row.dietary = escapeCSVField(strings.Join(g.DietaryPreferences, "; "))
	}
	if g.SpecialRequirements.Valid && g.SpecialRequirements.String != "" {
		row.requirements = escapeCSVField(g.SpecialRequirements.String)
	}

	return row
}

// buildCSVRow creates a CSV line from row data
func buildCSVRow(row csvRowData) string {
	return fmt.Sprintf("\"%s\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\"\n",
		row.name, row.email, row.phone, row.side, row.role, row.status,
		row.plusOne, row.plusOneName, row.vip, row.dietary, row.requirements)
}

// writeCSVHeaders sets HTTP headers and writes CSV header row
func writeCSVHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=guest-list.csv")

	// Write UTF-8 BOM for Excel compatibility
	w.Write([]byte{0xEF, 0xBB, 0xBF})

	w.Write([]byte("Name,Email,Phone,Side,Role,Status,Plus One,Plus One Name,VIP,Dietary,Requirements\n"))
}

// HandleDownloadGuestsCSV exports a wedding's guest list to CSV
func HandleDownloadGuestsCSV(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCaller(s, w, r); !ok {
			return
		}

		guests, err := s.Registry().ListGuests(r.Context(), mux.Vars(r)["id"], database.GuestFilter{})
		if err != nil {
			writeError(w, err)
			return
		}

		writeCSVHeaders(w)

		for _, g := range guests {
			row := formatGuestForCSV(g)
			line := buildCSVRow(row)
			w.Write([]byte(line))
		}
	}
}
