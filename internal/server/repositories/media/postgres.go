package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/dbx"
	"github.com/9r89uf8/mediagate/internal/server/models"
)

// PostgresRepository implements media storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const mediaColumns = `id, owner_id, object_keys, kind, surface,
		is_gallery, is_post, is_reply_asset,
		premium_only, can_be_liked, mature, published,
		text, location, like_count, created_at`

// Create inserts a finalized media record. Re-finalizing the same primary
// key replaces the row's metadata without duplicating it (upsert), so an
// accidental double finalize cannot corrupt state. On conflict the
// existing row keeps its id; record.ID is overwritten with the stored
// id so the caller never holds an id that matches no row.
func (r *PostgresRepository) Create(ctx context.Context, record *models.MediaRecord) error {
	keys, err := json.Marshal(record.ObjectKeys)
	if err != nil {
		return fmt.Errorf("marshal object keys: %w", err)
	}

	query := `
		INSERT INTO media (id, owner_id, object_keys, primary_key, kind, surface,
			is_gallery, is_post, is_reply_asset,
			premium_only, can_be_liked, mature, published,
			text, location, like_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (primary_key)
		DO UPDATE SET
			object_keys = EXCLUDED.object_keys,
			text = EXCLUDED.text,
			location = EXCLUDED.location,
			premium_only = EXCLUDED.premium_only,
			can_be_liked = EXCLUDED.can_be_liked,
			mature = EXCLUDED.mature,
			published = EXCLUDED.published
		RETURNING id;
	`
	err = r.db.QueryRowContext(ctx, query,
		record.ID, record.OwnerID, keys, record.PrimaryKey(), record.Kind, record.Surface,
		record.IsGallery, record.IsPost, record.IsReplyAsset,
		record.PremiumOnly, record.CanBeLiked, record.Mature, record.Published,
		record.Text, record.Location, record.LikeCount, record.CreatedAt).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.MediaRecord, error) {
	var (
		item models.MediaRecord
		keys []byte
	)
	err := row.Scan(&item.ID, &item.OwnerID, &keys, &item.Kind, &item.Surface,
		&item.IsGallery, &item.IsPost, &item.IsReplyAsset,
		&item.PremiumOnly, &item.CanBeLiked, &item.Mature, &item.Published,
		&item.Text, &item.Location, &item.LikeCount, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select media: %w", err)
	}
	if err := json.Unmarshal(keys, &item.ObjectKeys); err != nil {
		return nil, fmt.Errorf("unmarshal object keys: %w", err)
	}
	return &item, nil
}

// GetByID returns a media record by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.MediaRecord, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id=$1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByPrimaryKey returns the record whose primary storage key is key.
func (r *PostgresRepository) GetByPrimaryKey(ctx context.Context, key string) (*models.MediaRecord, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE primary_key=$1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, key))
}

// Update applies operator edits. Only non-nil fields are written;
// last writer wins.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.MediaUpdate) error {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if upd.Text != nil {
		add("text", *upd.Text)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.PremiumOnly != nil {
		add("premium_only", *upd.PremiumOnly)
	}
	if upd.CanBeLiked != nil {
		add("can_be_liked", *upd.CanBeLiked)
	}
	if upd.Mature != nil {
		add("mature", *upd.Mature)
	}
	if upd.Published != nil {
		add("published", *upd.Published)
	}
	if upd.LikeCount != nil {
		add("like_count", *upd.LikeCount)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE media SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update media: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

// AdjustLikeCount atomically applies delta to like_count, clamped at zero,
// and returns the new value.
func (r *PostgresRepository) AdjustLikeCount(ctx context.Context, id string, delta int64) (int64, error) {
	query := `
		UPDATE media SET like_count = GREATEST(like_count + $2, 0)
		WHERE id=$1 AND can_be_liked
		RETURNING like_count`

	var count int64
	err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, common.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust like count: %w", err)
	}
	return count, nil
}
