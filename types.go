package main

import "time"

// Listing represents a single ad extracted from the search results page
type Listing struct {
	ID           string
	Price        int    // normalized integer amount, 0 when the price text was unparseable
	PriceDisplay string // raw price text as shown on the page, used for message rendering
	Title        string
	Link         string
	PostedAt     *time.Time // nil when no posting date could be extracted
}

// StoredListing is the persisted per-id state. FirstSeen is empty for entries
// written by the legacy format (bare price, no metadata) until a run touches
// them again.
type StoredListing struct {
	Price     int
	FirstSeen string
}

// StoreState maps listing id to its persisted state
type StoreState map[string]StoredListing

// RunContext carries per-run facts computed before any mutation
type RunContext struct {
	FirstRun   bool
	ObservedAt time.Time
}

// EventKind tags a notification event
type EventKind string

const (
	EventNewListing    EventKind = "new_listing"
	EventPriceDrop     EventKind = "price_drop"
	EventPriceIncrease EventKind = "price_increase"
)

// Event is one notification-worthy observation from a reconciliation run.
// OldPrice and NewPrice are only meaningful for the price change kinds.
type Event struct {
	Kind         EventKind
	ID           string
	Title        string
	PriceDisplay string
	OldPrice     int
	NewPrice     int
	Link         string
	ObservedAt   time.Time
}

// ReconcileResult is the full outcome of one reconciliation pass
type ReconcileResult struct {
	Store   StoreState
	Events  []Event
	Changed bool
}
