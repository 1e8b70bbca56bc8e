package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteIntrospector reads column metadata from a SQLite database through
// the pragma_table_info table-valued function, which accepts the table name
// as a bound parameter.
type SQLiteIntrospector struct {
	db *sql.DB
}

// NewSQLiteIntrospector wraps an open database handle. The handle is not
// closed by the introspector.
func NewSQLiteIntrospector(db *sql.DB) *SQLiteIntrospector {
	return &SQLiteIntrospector{db: db}
}

// Columns implements Introspector.
func (s *SQLiteIntrospector) Columns(ctx context.Context, table string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, type FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]string)
	for rows.Next() {
		var name, nativeType string
		if err := rows.Scan(&name, &nativeType); err != nil {
			return nil, fmt.Errorf("introspect %s: %w", table, err)
		}
		cols[name] = nativeType
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	// pragma_table_info returns zero rows, not an error, for unknown
	// tables.
	if len(cols) == 0 {
		return nil, fmt.Errorf("introspect %s: table not found", table)
	}
	return cols, nil
}
