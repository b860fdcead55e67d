package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/dbx"
	"github.com/9r89uf8/mediagate/internal/ephemeral"
	"github.com/9r89uf8/mediagate/internal/logging"
	"github.com/9r89uf8/mediagate/internal/media"
	"github.com/9r89uf8/mediagate/internal/server/models"
	"github.com/9r89uf8/mediagate/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MediaService owns the durable-commit step of the upload pipeline
// (finalize), operator edits, the like toggle, the permit-gated media
// message send, and ephemeral status lines.
type MediaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewMediaService(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *MediaService {
	return &MediaService{
		db:          db,
		repomanager: rm,
		logger:      logger.With("module", "media_service"),
	}
}

// FinalizeInput registers uploaded object keys as one MediaRecord.
// ObjectKeys carries one key for a plain upload and several for a
// grouped image upload (first key primary, input order preserved).
type FinalizeInput struct {
	OwnerID    string
	Surface    media.Surface
	Kind       media.Kind
	ObjectKeys []string
	Text       string
	Location   string
	// PremiumOnly is honored only where the surface allows premium
	// gating; posts and assets ignore it.
	PremiumOnly bool
}

// Finalize creates the MediaRecord for a completed upload, applying the
// surface's default flags. This is the only durable-commit step of the
// pipeline: an upload abandoned before finalize leaves at most an
// orphaned object in storage.
func (s *MediaService) Finalize(ctx context.Context, in FinalizeInput) (*models.MediaRecord, error) {
	if len(in.ObjectKeys) == 0 {
		return nil, fmt.Errorf("%w: no object keys", common.ErrFinalizeFailed)
	}
	if !in.Kind.Valid() {
		return nil, common.ErrUnsupportedFileType
	}
	if in.Kind != media.KindImage && len(in.ObjectKeys) > 1 {
		return nil, fmt.Errorf("%w: only images can be grouped", common.ErrFinalizeFailed)
	}

	policy, err := media.PolicyFor(in.Surface)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFinalizeFailed, err)
	}
	if policy.RequiresText && in.Text == "" {
		return nil, fmt.Errorf("%w: %s surface requires descriptive text", common.ErrFinalizeFailed, in.Surface)
	}

	premiumOnly := in.PremiumOnly
	if in.Surface == media.SurfacePosts || in.Surface == media.SurfaceAssets {
		premiumOnly = false
	}

	record := &models.MediaRecord{
		ID:           uuid.NewString(),
		OwnerID:      in.OwnerID,
		ObjectKeys:   in.ObjectKeys,
		Kind:         in.Kind,
		Surface:      in.Surface,
		IsGallery:    in.Surface == media.SurfaceGallery,
		IsPost:       in.Surface == media.SurfacePosts,
		IsReplyAsset: in.Surface == media.SurfaceAssets,
		PremiumOnly:  premiumOnly,
		CanBeLiked:   policy.CanBeLiked,
		Mature:       policy.MatureAudio && in.Kind == media.KindAudio,
		Published:    true,
		Text:         in.Text,
		Location:     in.Location,
		CreatedAt:    time.Now(),
	}

	mediaRepo := s.repomanager.Media(s.db)
	if err := mediaRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("error finalizing media: %w", err)
	}

	s.logger.Info(ctx, "media finalized", "media_id", record.ID, "surface", in.Surface, "keys", len(in.ObjectKeys))
	return record, nil
}

// Update applies operator edits to an existing record. Last writer wins;
// edits are single-operator in practice.
func (s *MediaService) Update(ctx context.Context, id string, upd models.MediaUpdate) error {
	mediaRepo := s.repomanager.Media(s.db)
	if err := mediaRepo.Update(ctx, id, upd); err != nil {
		return fmt.Errorf("error updating media: %w", err)
	}
	return nil
}

// Get returns a media record by id.
func (s *MediaService) Get(ctx context.Context, id string) (*models.MediaRecord, error) {
	return s.repomanager.Media(s.db).GetByID(ctx, id)
}

// ToggleLike applies delta (+1 like, -1 unlike) and returns the
// authoritative count the client reconciles against.
func (s *MediaService) ToggleLike(ctx context.Context, id string, liked bool) (int64, error) {
	delta := int64(1)
	if !liked {
		delta = -1
	}
	count, err := s.repomanager.Media(s.db).AdjustLikeCount(ctx, id, delta)
	if err != nil {
		return 0, fmt.Errorf("error toggling like: %w", err)
	}
	return count, nil
}

// SendMediaMessageInput is the privileged send. PermitID references a
// permit previously issued by PermitService.Exchange.
type SendMediaMessageInput struct {
	ConversationID string
	SenderID       string
	Kind           media.Kind
	ObjectKey      string
	Caption        string
	PermitID       string
}

// SendMediaMessage consumes one permit use and records the message in a
// single transaction, so the decrement is atomic with the send. An
// exhausted permit is rejected even if not yet expired, and vice versa.
func (s *MediaService) SendMediaMessage(ctx context.Context, in SendMediaMessageInput) (*models.Message, error) {
	if !in.Kind.Valid() {
		return nil, common.ErrUnsupportedFileType
	}
	if in.ObjectKey == "" || in.PermitID == "" {
		return nil, fmt.Errorf("%w: object key and permit id are required", common.ErrPermitExchangeFailed)
	}

	message := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Kind:           in.Kind,
		ObjectKey:      in.ObjectKey,
		Caption:        in.Caption,
		CreatedAt:      time.Now(),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Permits(tx).Consume(ctx, in.PermitID, in.SenderID); err != nil {
			return err
		}
		return s.repomanager.Messages(tx).Create(ctx, message)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "media message sent", "message_id", message.ID, "permit_id", in.PermitID)
	return message, nil
}

// SetStatus replaces the user's ephemeral status line. A zero expiresAt
// leaves expiry to the default activity window at read time.
func (s *MediaService) SetStatus(ctx context.Context, userID string, text string, expiresAt time.Time) error {
	status := &models.Status{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	if err := s.repomanager.Statuses(s.db).Upsert(ctx, status); err != nil {
		return fmt.Errorf("error saving status: %w", err)
	}
	return nil
}

// ActiveStatus returns the user's status only while the ephemeral model
// considers it active. Expired or missing statuses come back as
// ErrNotFound; rows are never deleted on expiry.
func (s *MediaService) ActiveStatus(ctx context.Context, userID string) (*models.Status, error) {
	status, err := s.repomanager.Statuses(s.db).GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	content := ephemeral.Content{
		Text:      status.Text,
		CreatedAt: status.CreatedAt,
		ExpiresAt: status.ExpiresAt,
	}
	if !content.IsActive(time.Now()) {
		return nil, common.ErrNotFound
	}
	return status, nil
}
