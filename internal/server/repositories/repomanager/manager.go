package repomanager

import (
	"context"
	"database/sql"

	"github.com/9r89uf8/mediagate/internal/dbx"
	"github.com/9r89uf8/mediagate/internal/server/repositories/media"
	"github.com/9r89uf8/mediagate/internal/server/repositories/messages"
	"github.com/9r89uf8/mediagate/internal/server/repositories/permits"
	"github.com/9r89uf8/mediagate/internal/server/repositories/statuses"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Media(db dbx.DBTX) media.Repository
	Permits(db dbx.DBTX) permits.Repository
	Messages(db dbx.DBTX) messages.Repository
	Statuses(db dbx.DBTX) statuses.Repository
}
