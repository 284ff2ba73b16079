// Package repomanager wires concrete repositories to a database handle so
// services can run any repository against either *sql.DB or an open
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/modtoolkit/internal/dbx"
	"github.com/dmitrijs2005/modtoolkit/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/modtoolkit/internal/server/repositories/tools"
	"github.com/dmitrijs2005/modtoolkit/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Tools(db dbx.DBTX) tools.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
