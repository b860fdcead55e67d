package messages

import (
	"context"
	"fmt"

	"github.com/9r89uf8/mediagate/internal/dbx"
	"github.com/9r89uf8/mediagate/internal/server/models"
)

// PostgresRepository implements message storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a media message. Runs inside the same transaction as
// the permit decrement.
func (r *PostgresRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, kind, object_key, caption, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	res, err := r.db.ExecContext(ctx, query,
		message.ID, message.ConversationID, message.SenderID,
		message.Kind, message.ObjectKey, message.Caption, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// ListByConversation returns the newest messages for a conversation.
func (r *PostgresRepository) ListByConversation(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, kind, object_key, caption, created_at
		FROM messages WHERE conversation_id=$1
		ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		var item models.Message
		if err := rows.Scan(&item.ID, &item.ConversationID, &item.SenderID,
			&item.Kind, &item.ObjectKey, &item.Caption, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
