package models

import "time"

// SendPermit authorizes a bounded number of privileged sends. Issued
// after a verification token has been validated, consumed atomically by
// each media send, and treated as invalid once exhausted or expired.
type SendPermit struct {
	ID        string
	UserID    string
	UsesLeft  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Valid reports whether the permit can still authorize a send at now.
// The database is the authority; this mirrors the same guard for
// client-side display and tests.
func (p *SendPermit) Valid(now time.Time) bool {
	return p.UsesLeft > 0 && p.ExpiresAt.After(now)
}
