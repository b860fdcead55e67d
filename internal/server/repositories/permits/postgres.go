package permits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/dbx"
	"github.com/9r89uf8/mediagate/internal/server/models"
)

// PostgresRepository implements permit storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a freshly issued permit.
func (r *PostgresRepository) Create(ctx context.Context, permit *models.SendPermit) error {
	query := `
		INSERT INTO permits (id, user_id, uses_left, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	res, err := r.db.ExecContext(ctx, query,
		permit.ID, permit.UserID, permit.UsesLeft, permit.ExpiresAt, permit.CreatedAt)
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

// GetByID returns a permit row.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.SendPermit, error) {
	query := `SELECT id, user_id, uses_left, expires_at, created_at FROM permits WHERE id=$1`

	result := &models.SendPermit{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&result.ID, &result.UserID, &result.UsesLeft, &result.ExpiresAt, &result.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select permit: %w", err)
	}
	return result, nil
}

// Consume performs the authoritative decrement. The guard and the write
// are one statement so two concurrent sends can never both spend the
// last use. When nothing was decremented, the row is re-read to tell
// exhausted from expired from missing.
func (r *PostgresRepository) Consume(ctx context.Context, id string, userID string) error {
	query := `
		UPDATE permits SET uses_left = uses_left - 1
		WHERE id=$1 AND user_id=$2 AND uses_left > 0 AND expires_at > now()`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to consume permit: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 1 {
		return nil
	}

	permit, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if permit.UserID != userID {
		return common.ErrUnauthorized
	}
	if permit.UsesLeft <= 0 {
		return common.ErrPermitExhausted
	}
	return common.ErrPermitExpired
}
