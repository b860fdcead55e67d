// Package ephemeral decides whether time-boxed content (a status line, a
// story) is still active, and renders human-readable relative timestamps.
// It is a pure model: nothing here expires stored data, only visibility.
package ephemeral

import (
	"fmt"
	"time"
)

// DefaultTTL is the activity window applied when content has a creation
// time but no explicit expiry. Mirrors story semantics: visible for a day.
const DefaultTTL = 24 * time.Hour

// Content is a piece of time-boxed text. Zero timestamps mean "unset".
type Content struct {
	Text      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsActive reports whether c should still be shown at time now.
//
// Empty text is never active. An explicit expiry wins over the default
// window. Content carrying text but no timestamp basis at all is treated
// as perpetually active: absence of time data must not suppress content,
// only absence of text does.
func (c Content) IsActive(now time.Time) bool {
	if c.Text == "" {
		return false
	}

	expiresAt := c.ExpiresAt
	if expiresAt.IsZero() && !c.CreatedAt.IsZero() {
		expiresAt = c.CreatedAt.Add(DefaultTTL)
	}
	if expiresAt.IsZero() {
		return true
	}
	return expiresAt.After(now)
}

// RelativeTime formats the distance between t and now in coarse buckets:
// "just now", minutes, hours, days, weeks, then a calendar date.
// Boundaries are half-open: exactly at a threshold rounds to the coarser
// unit.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	case d < 4*7*24*time.Hour:
		return plural(int(d.Hours()/(24*7)), "week")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
