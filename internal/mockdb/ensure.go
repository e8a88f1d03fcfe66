package mockdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// EnsureTableForInsert creates the target table of an insert when it does
// not exist yet. Columns come from the insert's column list when present,
// otherwise col1..colN from the number of values. Every column is TEXT.
// It reports whether a table was created.
func EnsureTableForInsert(ctx context.Context, db *DB, st Statement) (bool, error) {
	if st.Kind != KindInsert || st.Table == "" {
		return false, nil
	}
	exists, err := db.TableExists(ctx, st.Table)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	cols := st.Columns
	if len(cols) == 0 {
		n := max(1, st.ValueCount)
		cols = make([]string, n)
		for i := range cols {
			cols[i] = fmt.Sprintf("col%d", i+1)
		}
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = QuoteIdent(c) + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", QuoteIdent(st.Table), strings.Join(defs, ", "))
	if err := db.Exec(ctx, ddl); err != nil {
		return false, errors.Wrapf(err, "create missing table %s", st.Table)
	}
	db.log.Debug("created missing table for insert", "table", st.Table, "columns", len(cols))
	return true, nil
}
