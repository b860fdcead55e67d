package permits

import (
	"context"

	"github.com/9r89uf8/mediagate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, permit *models.SendPermit) error
	GetByID(ctx context.Context, id string) (*models.SendPermit, error)
	// Consume decrements uses_left iff the permit belongs to userID, has
	// uses left, and has not expired. Returns ErrPermitExhausted or
	// ErrPermitExpired on rejection.
	Consume(ctx context.Context, id string, userID string) error
}
