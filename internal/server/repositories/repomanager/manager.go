package repomanager

import (
	"context"
	"database/sql"

	"github.com/cocoinbox/cocoinbox/internal/dbx"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/files"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/mailboxes"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/notes"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services can compose them inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Notes(db dbx.DBTX) notes.Repository
	Files(db dbx.DBTX) files.Repository
	Mailboxes(db dbx.DBTX) mailboxes.Repository
}
