package repomanager

import (
	"context"
	"database/sql"

	"github.com/kavyaresto/kavyaserve/internal/dbx"
	"github.com/kavyaresto/kavyaserve/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX (a pool or an open
// transaction) and applies the schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
