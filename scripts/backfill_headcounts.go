package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/emowed/emowed-server/internal/headcount"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./emowed.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Get all RSVP rows
	rows, err := db.Query("SELECT id, adults_count, teens_count, children_count, calculated_headcount FROM rsvps")
	if err != nil {
		log.Fatalf("Failed to query rsvps: %v", err)
	}
	defer rows.Close()

	type rsvpRow struct {
		id        string
		adults    int
		teens     int
		children  int
		headcount float64
	}

	var rsvps []rsvpRow
	for rows.Next() {
		var r rsvpRow
		if err := rows.Scan(&r.id, &r.adults, &r.teens, &r.children, &r.headcount); err != nil {
			log.Printf("Failed to scan row: %v", err)
			continue
		}
		rsvps = append(rsvps, r)
	}

	fmt.Printf("Found %d rsvps to process\n", len(rsvps))

	// Recompute each weighted headcount
	updated := 0
	failed := 0
	for _, r := range rsvps {
		computed := headcount.Compute(r.adults, r.teens, r.children)

		// Only update if the stored value drifted
		if computed != r.headcount {
			_, err := db.Exec("UPDATE rsvps SET calculated_headcount = ? WHERE id = ?", computed, r.id)
			if err != nil {
				log.Printf("Failed to update headcount for ID %s: %v", r.id, err)
				failed++
				continue
			}
			fmt.Printf("Updated ID %s: %v -> %v\n", r.id, r.headcount, computed)
			updated++
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total: %d\n", len(rsvps))
	fmt.Printf("  Updated: %d\n", updated)
	fmt.Printf("  Failed: %d\n", failed)
	fmt.Printf("  Unchanged: %d\n", len(rsvps)-updated-failed)
}
