package statuses

import (
	"context"

	"github.com/9r89uf8/mediagate/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, status *models.Status) error
	GetByUserID(ctx context.Context, userID string) (*models.Status, error)
}
