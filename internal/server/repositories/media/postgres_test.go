package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/9r89uf8/mediagate/internal/common"
	md "github.com/9r89uf8/mediagate/internal/media"
	"github.com/9r89uf8/mediagate/internal/server/models"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate_InsertsGroupedKeys(t *testing.T) {
	repo, mock := newRepo(t)

	record := &models.MediaRecord{
		ID:         "m1",
		OwnerID:    "profile-1",
		ObjectKeys: []string{"k1", "k2", "k3"},
		Kind:       md.KindImage,
		Surface:    md.SurfaceGallery,
		IsGallery:  true,
		CanBeLiked: true,
		Published:  true,
		CreatedAt:  time.Now(),
	}
	keys, _ := json.Marshal(record.ObjectKeys)

	mock.ExpectQuery("INSERT INTO media").
		WithArgs("m1", "profile-1", keys, "k1", "image", "gallery",
			true, false, false,
			false, true, false, true,
			"", "", int64(0), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m1"))

	require.NoError(t, repo.Create(context.Background(), record))
	require.Equal(t, "m1", record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ConflictKeepsExistingID(t *testing.T) {
	repo, mock := newRepo(t)

	record := &models.MediaRecord{
		ID:         "m2",
		OwnerID:    "profile-1",
		ObjectKeys: []string{"k1"},
		Kind:       md.KindImage,
		Surface:    md.SurfaceGallery,
		CreatedAt:  time.Now(),
	}

	// Re-finalize of an already stored primary key: the upsert keeps the
	// original row and hands its id back.
	mock.ExpectQuery("INSERT INTO media").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m1"))

	require.NoError(t, repo.Create(context.Background(), record))
	require.Equal(t, "m1", record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_RoundTrip(t *testing.T) {
	repo, mock := newRepo(t)

	keys, _ := json.Marshal([]string{"k1", "k2"})
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "object_keys", "kind", "surface",
		"is_gallery", "is_post", "is_reply_asset",
		"premium_only", "can_be_liked", "mature", "published",
		"text", "location", "like_count", "created_at",
	}).AddRow("m1", "profile-1", keys, "image", "gallery",
		true, false, false, false, true, false, true,
		"caption", "paris", int64(5), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM media WHERE id=").
		WithArgs("m1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, []string{"k1", "k2"}, got.ObjectKeys)
	require.Equal(t, "k1", got.PrimaryKey())
	require.Equal(t, md.KindImage, got.Kind)
	require.Equal(t, int64(5), got.LikeCount)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM media WHERE id=").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdate_OnlySetFields(t *testing.T) {
	repo, mock := newRepo(t)

	text := "new caption"
	published := false
	mock.ExpectExec(`UPDATE media SET text=\$1, published=\$2 WHERE id=\$3`).
		WithArgs(text, published, "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "m1", models.MediaUpdate{
		Text: &text, Published: &published,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NoFieldsIsNoop(t *testing.T) {
	repo, mock := newRepo(t)
	require.NoError(t, repo.Update(context.Background(), "m1", models.MediaUpdate{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	text := "x"
	mock.ExpectExec(`UPDATE media SET`).
		WithArgs(text, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "missing", models.MediaUpdate{Text: &text})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestAdjustLikeCount(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("UPDATE media SET like_count").
		WithArgs("m1", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"like_count"}).AddRow(int64(6)))

	count, err := repo.AdjustLikeCount(context.Background(), "m1", 1)
	require.NoError(t, err)
	require.Equal(t, int64(6), count)
}

func TestAdjustLikeCount_NotLikeable(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("UPDATE media SET like_count").
		WithArgs("m1", int64(1)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.AdjustLikeCount(context.Background(), "m1", 1)
	require.ErrorIs(t, err, common.ErrNotFound)
}
