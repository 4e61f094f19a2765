package main

import (
	"log/slog"
	"time"
)

// Default thresholds for price change detection, in whole currency units.
const (
	defaultDropThreshold = 50
	defaultRiseThreshold = 50
)

// Policy holds the reconciliation knobs that are configurable per run
type Policy struct {
	DropThreshold   int  // minimum decrease that counts as a price drop
	RiseThreshold   int  // minimum increase that counts as a price rise
	NotifyIncreases bool // whether price increases produce an event at all
	AlertUndated    bool // whether listings without a posting date pass the freshness gate
}

func defaultPolicy() Policy {
	return Policy{
		DropThreshold:   defaultDropThreshold,
		RiseThreshold:   defaultRiseThreshold,
		NotifyIncreases: true,
		AlertUndated:    false,
	}
}

// reconcile compares one scraped batch against the persisted store and
// classifies every listing as new, unchanged or price-changed. It returns the
// updated store (the input map is never mutated), the notification events in
// batch order, and whether the store differs from its input.
//
// The function performs no I/O and is total over any well-typed input, which
// keeps it trivially testable.
func reconcile(listings []Listing, store StoreState, ctx RunContext, policy Policy) ReconcileResult {
	next := make(StoreState, len(store)+len(listings))
	for id, entry := range store {
		next[id] = entry
	}

	var events []Event
	changed := false
	seen := make(map[string]bool, len(listings))

	for _, ad := range listings {
		// Extraction should have filtered these already, but a record
		// without an id can never be reconciled.
		if ad.ID == "" {
			slog.Warn("Skipping listing without id", "title", ad.Title)
			continue
		}
		// A repeated id in one batch is the same real-world listing;
		// first occurrence wins.
		if seen[ad.ID] {
			slog.Debug("Duplicate id in batch", "id", ad.ID)
			continue
		}
		seen[ad.ID] = true

		prev, known := next[ad.ID]
		if !known {
			next[ad.ID] = StoredListing{
				Price:     ad.Price,
				FirstSeen: ctx.ObservedAt.Format(time.RFC3339),
			}
			changed = true

			if ctx.FirstRun {
				// Never alert while backfilling an empty store.
				slog.Debug("First run, recording silently", "id", ad.ID)
				continue
			}

			fresh := policy.AlertUndated
			if ad.PostedAt != nil {
				fresh = isRecent(*ad.PostedAt, ctx.ObservedAt)
			}
			if !fresh {
				slog.Debug("Recording listing without alert, not fresh", "id", ad.ID)
				continue
			}

			slog.Info("New listing found", "id", ad.ID, "price", ad.Price)
			events = append(events, Event{
				Kind:         EventNewListing,
				ID:           ad.ID,
				Title:        ad.Title,
				PriceDisplay: ad.PriceDisplay,
				NewPrice:     ad.Price,
				Link:         ad.Link,
				ObservedAt:   ctx.ObservedAt,
			})
			continue
		}

		// Entries from the legacy store format carry no first_seen; stamp
		// it the first time the entry is touched. The upgrade mutates the
		// store but never produces an event on its own.
		if prev.FirstSeen == "" {
			prev.FirstSeen = ctx.ObservedAt.Format(time.RFC3339)
			next[ad.ID] = prev
			changed = true
			slog.Debug("Upgraded legacy store entry", "id", ad.ID)
		}

		// A zero price on either side is an unparseable observation, not a
		// real price. Leave the stored price alone so extraction jitter
		// cannot erode the reference point.
		if prev.Price <= 0 || ad.Price <= 0 {
			continue
		}

		delta := ad.Price - prev.Price
		switch {
		case delta <= -policy.DropThreshold:
			slog.Info("Price drop", "id", ad.ID, "old", prev.Price, "new", ad.Price)
			events = append(events, Event{
				Kind:         EventPriceDrop,
				ID:           ad.ID,
				Title:        ad.Title,
				PriceDisplay: ad.PriceDisplay,
				OldPrice:     prev.Price,
				NewPrice:     ad.Price,
				Link:         ad.Link,
				ObservedAt:   ctx.ObservedAt,
			})
			prev.Price = ad.Price
			next[ad.ID] = prev
			changed = true
		case delta >= policy.RiseThreshold:
			slog.Info("Price increase", "id", ad.ID, "old", prev.Price, "new", ad.Price)
			if policy.NotifyIncreases {
				events = append(events, Event{
					Kind:         EventPriceIncrease,
					ID:           ad.ID,
					Title:        ad.Title,
					PriceDisplay: ad.PriceDisplay,
					OldPrice:     prev.Price,
					NewPrice:     ad.Price,
					Link:         ad.Link,
					ObservedAt:   ctx.ObservedAt,
				})
			}
			// The stored price tracks the observation even when the
			// event is suppressed by policy.
			prev.Price = ad.Price
			next[ad.ID] = prev
			changed = true
		}
	}

	return ReconcileResult{Store: next, Events: events, Changed: changed}
}

// isRecent reports whether a posting date falls on the reference date or the
// day before it, compared as calendar dates in the reference location.
func isRecent(posted, ref time.Time) bool {
	y, m, d := ref.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, ref.Location()).AddDate(0, 0, -1)
	py, pm, pd := posted.In(ref.Location()).Date()
	postedDay := time.Date(py, pm, pd, 0, 0, 0, 0, ref.Location())
	return !postedDay.Before(cutoff)
}
