package models

import (
	"time"

	"github.com/9r89uf8/mediagate/internal/media"
)

// Message is a chat message carrying a media attachment. Text-only
// messages never pass through the permit pipeline and are out of scope
// here.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Kind           media.Kind
	ObjectKey      string
	Caption        string
	CreatedAt      time.Time
}

// Status is a short-lived profile status line. Visibility is decided
// lazily through the ephemeral model; rows are never deleted on expiry.
type Status struct {
	UserID    string
	Text      string
	CreatedAt time.Time
	// ExpiresAt is optional; zero means the default TTL applies.
	ExpiresAt time.Time
}
