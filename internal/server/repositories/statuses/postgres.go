package statuses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/dbx"
	"github.com/9r89uf8/mediagate/internal/server/models"
)

// PostgresRepository implements status storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert replaces the user's status line. Expired rows are overwritten,
// never deleted; visibility is decided at read time.
func (r *PostgresRepository) Upsert(ctx context.Context, status *models.Status) error {
	query := `
		INSERT INTO statuses (user_id, text, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			text = EXCLUDED.text,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`

	expiresAt := sql.NullTime{Time: status.ExpiresAt, Valid: !status.ExpiresAt.IsZero()}
	_, err := r.db.ExecContext(ctx, query, status.UserID, status.Text, status.CreatedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByUserID returns the stored status row regardless of expiry.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Status, error) {
	query := `SELECT user_id, text, created_at, expires_at FROM statuses WHERE user_id=$1`

	result := &models.Status{}
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&result.UserID, &result.Text, &result.CreatedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select status: %w", err)
	}
	if expiresAt.Valid {
		result.ExpiresAt = expiresAt.Time
	}
	return result, nil
}
