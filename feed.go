package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/feeds"
)

const feedEventLimit = 50

// generateEventFeed renders recent price events as an Atom feed, a second
// notification surface for feed readers alongside the chat sink.
func generateEventFeed(events []Event, targetURL string) (string, error) {
	now := time.Now()
	feed := &feeds.Feed{
		Title:       "carwatch price events",
		Description: "New listings and price changes on the monitored search",
		Link:        &feeds.Link{Href: targetURL, Rel: "self", Type: "text/html"},
		Id:          "tag:carwatch,2024:feed",
		Created:     now,
		Updated:     now,
	}

	for _, ev := range events {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       feedItemTitle(ev),
			Link:        &feeds.Link{Href: ev.Link, Rel: "alternate", Type: "text/html"},
			Id:          fmt.Sprintf("tag:carwatch:%s:%d", ev.ID, ev.ObservedAt.Unix()),
			Description: feedItemDescription(ev),
			Created:     ev.ObservedAt,
			Updated:     ev.ObservedAt,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return "", fmt.Errorf("failed to generate feed: %w", err)
	}
	return atom, nil
}

func feedItemTitle(ev Event) string {
	switch ev.Kind {
	case EventPriceDrop:
		return fmt.Sprintf("Price drop: %s (%d → %d)", ev.Title, ev.OldPrice, ev.NewPrice)
	case EventPriceIncrease:
		return fmt.Sprintf("Price increase: %s (%d → %d)", ev.Title, ev.OldPrice, ev.NewPrice)
	default:
		return fmt.Sprintf("New listing: %s (%s)", ev.Title, ev.PriceDisplay)
	}
}

func feedItemDescription(ev Event) string {
	switch ev.Kind {
	case EventPriceDrop, EventPriceIncrease:
		return fmt.Sprintf("%s | old price: %d | new price: %d | detected at %s",
			ev.Title, ev.OldPrice, ev.NewPrice, ev.ObservedAt.Format(time.RFC3339))
	default:
		return fmt.Sprintf("%s | price: %s | detected at %s",
			ev.Title, ev.PriceDisplay, ev.ObservedAt.Format(time.RFC3339))
	}
}

// writeEventFeed renders the journal's newest events into the feed file
func writeEventFeed(db *sql.DB, path, targetURL string) error {
	events, err := recentEvents(db, feedEventLimit)
	if err != nil {
		return err
	}

	atom, err := generateEventFeed(events, targetURL)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create feed directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(atom), 0o644); err != nil {
		return fmt.Errorf("failed to write feed file: %w", err)
	}

	slog.Info("Feed saved", "path", path, "events", len(events))
	return nil
}
