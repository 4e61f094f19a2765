package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// openHistoryDB opens the price-event journal and creates its schema. The
// journal is append-only bookkeeping next to the store file: the engine never
// reads it, only the feed renderer does.
func openHistoryDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	createEventsTable := `
	CREATE TABLE IF NOT EXISTS price_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		listing_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		old_price INTEGER DEFAULT 0,
		new_price INTEGER DEFAULT 0,
		price_display TEXT,
		title TEXT,
		link TEXT,
		observed_at TIMESTAMP
	)`
	if _, err := db.Exec(createEventsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create price_events table: %w", err)
	}

	createIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_price_events_listing ON price_events(listing_id)",
		"CREATE INDEX IF NOT EXISTS idx_price_events_observed ON price_events(observed_at)",
	}
	for _, indexSQL := range createIndexes {
		if _, err := db.Exec(indexSQL); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create price_events index: %w", err)
		}
	}

	slog.Debug("History database ready", "path", path)
	return db, nil
}

// recordEvents appends the run's events to the journal. Individual insert
// failures are logged and skipped; the journal must never block a run.
func recordEvents(db *sql.DB, events []Event) {
	for _, ev := range events {
		_, err := db.Exec(`
			INSERT INTO price_events (listing_id, kind, old_price, new_price, price_display, title, link, observed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, string(ev.Kind), ev.OldPrice, ev.NewPrice, ev.PriceDisplay, ev.Title, ev.Link, ev.ObservedAt)
		if err != nil {
			slog.Warn("Failed to journal event", "listing", ev.ID, "kind", ev.Kind, "error", err)
			continue
		}
	}
	if len(events) > 0 {
		slog.Debug("Journaled events", "count", len(events))
	}
}

// recentEvents returns the newest journaled events, newest first
func recentEvents(db *sql.DB, limit int) ([]Event, error) {
	rows, err := db.Query(`
		SELECT listing_id, kind, old_price, new_price, price_display, title, link, observed_at
		FROM price_events ORDER BY observed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var ev Event
		var kind string
		var observedAt time.Time
		if err := rows.Scan(&ev.ID, &kind, &ev.OldPrice, &ev.NewPrice, &ev.PriceDisplay, &ev.Title, &ev.Link, &observedAt); err != nil {
			slog.Warn("Error scanning price_events row", "error", err)
			continue
		}
		ev.Kind = EventKind(kind)
		ev.ObservedAt = observedAt
		events = append(events, ev)
	}
	return events, rows.Err()
}
