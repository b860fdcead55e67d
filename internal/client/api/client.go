// Package api is the client-side transport for the media pipeline. It
// speaks the server's JSON contract over HTTP and translates error
// payloads back into the shared sentinel errors, so the brokers above
// it never inspect status codes.
package api

import (
	"context"
	"io"
	"time"

	"github.com/9r89uf8/mediagate/internal/media"
)

// Permit mirrors the server's send permit. UsesLeft is informational on
// the client; the database copy is the authority.
type Permit struct {
	ID        string    `json:"id"`
	UsesLeft  int       `json:"uses_left"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadTicket is a single-use authorization to PUT one object.
type UploadTicket struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
}

type Media struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	ObjectKeys  []string  `json:"object_keys"`
	Kind        string    `json:"kind"`
	Surface     string    `json:"surface"`
	PremiumOnly bool      `json:"premium_only"`
	CanBeLiked  bool      `json:"can_be_liked"`
	Mature      bool      `json:"mature"`
	Published   bool      `json:"published"`
	Text        string    `json:"text,omitempty"`
	Location    string    `json:"location,omitempty"`
	LikeCount   int64     `json:"like_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Kind           string    `json:"kind"`
	ObjectKey      string    `json:"object_key"`
	Caption        string    `json:"caption,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Status struct {
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FinalizeRequest registers uploaded keys as one media record.
type FinalizeRequest struct {
	Surface     media.Surface `json:"surface"`
	Kind        media.Kind    `json:"kind"`
	ObjectKeys  []string      `json:"object_keys"`
	Text        string        `json:"text,omitempty"`
	Location    string        `json:"location,omitempty"`
	PremiumOnly bool          `json:"premium_only"`
}

type SendMessageRequest struct {
	ConversationID string     `json:"conversation_id"`
	Kind           media.Kind `json:"kind"`
	ObjectKey      string     `json:"object_key"`
	Caption        string     `json:"caption,omitempty"`
	PermitID       string     `json:"permit_id"`
}

// Client is the API surface the client brokers depend on.
type Client interface {
	Ping(ctx context.Context) error

	// ExchangePermit trades a verification token for a send permit.
	ExchangePermit(ctx context.Context, token string, action string) (*Permit, error)

	// IssueTicket requests a presigned PUT for one declared file.
	IssueTicket(ctx context.Context, surface media.Surface, contentType string, size int64) (*UploadTicket, error)

	// UploadPut streams body to the presigned URL. This talks to object
	// storage directly, not to the API server.
	UploadPut(ctx context.Context, uploadURL string, contentType string, body io.Reader) error

	Finalize(ctx context.Context, req FinalizeRequest) (*Media, error)
	UpdateMedia(ctx context.Context, id string, upd MediaUpdate) error
	ToggleLike(ctx context.Context, id string, liked bool) (int64, error)
	SignBatch(ctx context.Context, keys []string) (map[string]string, error)
	SendMediaMessage(ctx context.Context, req SendMessageRequest) (*Message, error)
	SetStatus(ctx context.Context, text string, expiresAt *time.Time) error
	GetStatus(ctx context.Context, userID string) (*Status, error)
}

// MediaUpdate carries operator edits; nil fields stay untouched.
type MediaUpdate struct {
	Text        *string `json:"text,omitempty"`
	Location    *string `json:"location,omitempty"`
	PremiumOnly *bool   `json:"premium_only,omitempty"`
	CanBeLiked  *bool   `json:"can_be_liked,omitempty"`
	Mature      *bool   `json:"mature,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}
