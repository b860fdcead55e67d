// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/9r89uf8/mediagate/internal/media"
)

// MediaRecord describes a finalized object (or group of objects) in
// storage. Created once per finalize call; mutated later by operator
// edits or the like toggle.
type MediaRecord struct {
	ID string
	// OwnerID is the profile the media belongs to.
	OwnerID string

	// ObjectKeys holds the storage keys backing this record. A single
	// upload has one key; a grouped image upload has several, with the
	// first key as the primary.
	ObjectKeys []string
	Kind       media.Kind
	Surface    media.Surface

	// Surface flags.
	IsGallery    bool
	IsPost       bool
	IsReplyAsset bool

	// Moderation / visibility flags.
	PremiumOnly bool
	CanBeLiked  bool
	Mature      bool
	Published   bool

	Text      string
	Location  string
	LikeCount int64

	CreatedAt time.Time
}

// PrimaryKey returns the primary storage key, or "" for an empty record.
func (m *MediaRecord) PrimaryKey() string {
	if len(m.ObjectKeys) == 0 {
		return ""
	}
	return m.ObjectKeys[0]
}

// MediaUpdate carries operator edits. Nil fields are left untouched.
type MediaUpdate struct {
	Text        *string
	Location    *string
	PremiumOnly *bool
	CanBeLiked  *bool
	Mature      *bool
	Published   *bool
	LikeCount   *int64
}
