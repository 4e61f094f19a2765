package main

import (
	"testing"
	"time"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"€ 45.900", 45900},
		{"€45,900", 45900},
		{"45900", 45900},
		{"45.900 €", 45900},
		{"", 0},
		{"Unknown Price", 0},
		{"€", 0},
		{"price on request", 0},
		{"0", 0},
		{"  € 1.234,00  ", 123400},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizePrice(tt.input); got != tt.want {
				t.Errorf("normalizePrice(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractPostingDate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  time.Time
		found bool
	}{
		{
			name:  "german label day-first",
			text:  "Tesla Model 3 Long Range\nInserat online seit: 30.08.2024\n€ 45.900",
			want:  time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC),
			found: true,
		},
		{
			name:  "english label month-first",
			text:  "Tesla Model Y\nOnline since 08/14/2024, 60.000 km",
			want:  time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC),
			found: true,
		},
		{
			name:  "mixed case label",
			text:  "INSERAT ONLINE SEIT 13.06.2024",
			want:  time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC),
			found: true,
		},
		{
			name:  "no label",
			text:  "Tesla Model 3, 45.900 €, 30.000 km",
			found: false,
		},
		{
			name:  "label without date",
			text:  "Inserat online seit gestern",
			found: false,
		},
		{
			name:  "empty",
			text:  "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractPostingDate(tt.text)
			if ok != tt.found {
				t.Fatalf("extractPostingDate(%q) found = %v, want %v", tt.text, ok, tt.found)
			}
			if !tt.found {
				return
			}
			gy, gm, gd := got.Date()
			wy, wm, wd := tt.want.Date()
			if gy != wy || gm != wm || gd != wd {
				t.Errorf("extractPostingDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyFreshness(t *testing.T) {
	now := time.Date(2024, 8, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		text   string
		recent bool
		detail string
	}{
		{"posted today", "Inserat online seit: 31.08.2024", true, "2024-08-31"},
		{"posted yesterday", "Online since 08/30/2024", true, "2024-08-30"},
		{"posted last week", "Inserat online seit: 24.08.2024", false, "2024-08-24"},
		{"no date", "no posting info here", false, "no date found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recent, detail := classifyFreshness(tt.text, now)
			if recent != tt.recent {
				t.Errorf("classifyFreshness(%q) recent = %v, want %v", tt.text, recent, tt.recent)
			}
			if detail != tt.detail {
				t.Errorf("classifyFreshness(%q) detail = %q, want %q", tt.text, detail, tt.detail)
			}
		})
	}
}
