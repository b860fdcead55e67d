package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/9r89uf8/mediagate/internal/logging"
	sc "github.com/9r89uf8/mediagate/internal/server/config"
	"github.com/9r89uf8/mediagate/internal/server/models"
	"github.com/9r89uf8/mediagate/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PermitService exchanges verified tokens for send permits. The permit
// row is the single authority on remaining quota; clients only display
// what they are told.
type PermitService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    TokenVerifier
	config      *sc.Config
	logger      logging.Logger
}

func NewPermitService(db *sql.DB, rm repomanager.RepositoryManager, verifier TokenVerifier, config *sc.Config, logger logging.Logger) *PermitService {
	return &PermitService{
		db:          db,
		repomanager: rm,
		verifier:    verifier,
		config:      config,
		logger:      logger.With("module", "permit_service"),
	}
}

// Exchange validates token with the challenge provider and, on success,
// issues a permit with the configured uses budget and TTL. The token is
// single-use on the provider side; a failed exchange requires the caller
// to obtain a fresh token.
func (s *PermitService) Exchange(ctx context.Context, userID string, token string, action string) (*models.SendPermit, error) {
	if err := s.verifier.Verify(ctx, token, action); err != nil {
		return nil, err
	}

	now := time.Now()
	permit := &models.SendPermit{
		ID:        uuid.NewString(),
		UserID:    userID,
		UsesLeft:  s.config.PermitUses,
		ExpiresAt: now.Add(s.config.PermitTTL),
		CreatedAt: now,
	}

	permitRepo := s.repomanager.Permits(s.db)
	if err := permitRepo.Create(ctx, permit); err != nil {
		return nil, fmt.Errorf("error creating permit: %w", err)
	}

	s.logger.Info(ctx, "permit issued", "permit_id", permit.ID, "user_id", userID, "uses", permit.UsesLeft)
	return permit, nil
}
