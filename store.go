package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// On-disk shape of a store entry. Early versions of the store persisted a
// bare integer price per id; those entries are still readable but every
// write emits the object form.
type storedListingJSON struct {
	Price     int    `json:"price"`
	FirstSeen string `json:"first_seen,omitempty"`
}

// UnmarshalJSON accepts both the legacy bare-integer shape and the current
// object shape, resolving the variant once at read time.
func (s *StoredListing) UnmarshalJSON(data []byte) error {
	var price int
	if err := json.Unmarshal(data, &price); err == nil {
		s.Price = price
		s.FirstSeen = ""
		return nil
	}
	var obj storedListingJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("store entry is neither a price nor an object: %w", err)
	}
	s.Price = obj.Price
	s.FirstSeen = obj.FirstSeen
	return nil
}

// MarshalJSON always writes the structured shape
func (s StoredListing) MarshalJSON() ([]byte, error) {
	return json.Marshal(storedListingJSON{Price: s.Price, FirstSeen: s.FirstSeen})
}

// loadStore reads the persisted listing state. A missing or unreadable file
// is not an error: it loads as an empty store and marks the run as the first
// run, so the baseline gets rebuilt silently instead of aborting.
func loadStore(path string) (StoreState, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Store file unreadable, starting fresh", "path", path, "error", err)
		}
		return StoreState{}, true
	}

	var store StoreState
	if err := json.Unmarshal(data, &store); err != nil {
		slog.Warn("Store file corrupt, starting fresh", "path", path, "error", err)
		return StoreState{}, true
	}
	if store == nil {
		store = StoreState{}
	}

	slog.Debug("Loaded store", "path", path, "entries", len(store))
	return store, false
}

// saveStore writes the store atomically: marshal to a temp file in the same
// directory, then rename over the target.
func saveStore(path string, store StoreState) error {
	data, err := json.MarshalIndent(store, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	slog.Debug("Store saved", "path", path, "entries", len(store))
	return nil
}
