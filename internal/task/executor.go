package task

import (
	"context"
	"log/slog"

	"github.com/CodexForgeBR/sqlverify/internal/mockdb"
)

// OpenExecutor opens the database candidates are executed against for
// clustering. The database is opened read-only. An empty path returns a
// nil DB and no error; candidates then rely on results from the task file.
func OpenExecutor(ctx context.Context, path string, log *slog.Logger) (*mockdb.DB, error) {
	if path == "" {
		return nil, nil
	}
	return mockdb.Open(ctx, mockdb.DriverSQLite, path, true, log)
}
