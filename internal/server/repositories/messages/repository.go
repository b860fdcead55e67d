package messages

import (
	"context"

	"github.com/9r89uf8/mediagate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]*models.Message, error)
}
