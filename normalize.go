package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// postedLabels are the phrases the target site uses to announce a listing's
// posting date, in the two page languages we encounter.
var postedLabels = []string{
	"inserat online seit",
	"online since",
}

var dateTokenRegex = regexp.MustCompile(`\d{1,4}[./-]\d{1,2}[./-]\d{2,4}`)

// normalizePrice strips every non-digit character from a price string and
// parses the remainder as a base-10 integer. It returns 0 for empty or
// unparseable input and never fails: "€ 45.900" becomes 45900.
func normalizePrice(text string) int {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		// Absurdly long digit runs overflow; treat them as unparseable.
		return 0
	}
	return n
}

// extractPostingDate scans a listing's free text for a posting-date label and
// parses the date token that follows it. The page serves ambiguous numeric
// dates, so parsing tries month-first and falls back to day-first.
func extractPostingDate(text string) (time.Time, bool) {
	lower := strings.ToLower(text)
	for _, label := range postedLabels {
		idx := strings.Index(lower, label)
		if idx < 0 {
			continue
		}
		tail := text[idx+len(label):]
		tail = strings.TrimLeft(tail, ": \t\n")
		token := dateTokenRegex.FindString(tail)
		if token == "" {
			continue
		}
		parsed, err := dateparse.ParseAny(token,
			dateparse.PreferMonthFirst(true),
			dateparse.RetryAmbiguousDateWithSwap(true))
		if err != nil {
			continue
		}
		return parsed, true
	}
	return time.Time{}, false
}

// classifyFreshness decides whether a listing's free text advertises a recent
// posting date (today or yesterday relative to now). It always produces a
// classification; the second return value is the normalized date, or the
// reason when no date was found.
func classifyFreshness(text string, now time.Time) (bool, string) {
	posted, ok := extractPostingDate(text)
	if !ok {
		return false, "no date found"
	}
	return isRecent(posted, now), posted.Format("2006-01-02")
}
