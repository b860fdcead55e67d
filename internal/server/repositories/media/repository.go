package media

import (
	"context"

	"github.com/9r89uf8/mediagate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, record *models.MediaRecord) error
	GetByID(ctx context.Context, id string) (*models.MediaRecord, error)
	GetByPrimaryKey(ctx context.Context, key string) (*models.MediaRecord, error)
	Update(ctx context.Context, id string, upd models.MediaUpdate) error
	AdjustLikeCount(ctx context.Context, id string, delta int64) (int64, error)
}
