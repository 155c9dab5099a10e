// Package crud implements the record operations behind the menus. Stores
// never print; they return typed records, an Outcome for writes and an error
// only for real faults.
package crud

import (
	"context"

	"github.com/gerhard-ee/sqlcrud/internal/database"
)

// Executor runs statements against the database. *database.Session
// implements it; crudtest.Memory is the in-memory stand-in.
type Executor interface {
	ExecuteCommand(ctx context.Context, statement string, args ...interface{}) (int64, error)
	ExecuteQuery(ctx context.Context, statement string, args ...interface{}) (*database.ResultSet, error)
	ExecuteCall(ctx context.Context, procedure string, params []string, args ...interface{}) (*database.ResultSet, error)
	QueryProcedure(ctx context.Context, procedure string, params []string, args ...interface{}) (*database.ResultSet, error)
}

var _ Executor = (*database.Session)(nil)
