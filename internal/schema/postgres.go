package schema

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// PostgresIntrospector reads column metadata from information_schema. It is
// the production schema source; tsvector, serial, and money columns only
// exist here.
//
// pgx.Conn is not safe for concurrent use, so calls are serialized with a
// mutex. Introspection happens once per table per process, so contention is
// irrelevant.
type PostgresIntrospector struct {
	mu   sync.Mutex
	conn *pgx.Conn
}

// NewPostgresIntrospector wraps an open connection. The connection is not
// closed by the introspector.
func NewPostgresIntrospector(conn *pgx.Conn) *PostgresIntrospector {
	return &PostgresIntrospector{conn: conn}
}

// Columns implements Introspector. USER-DEFINED types (tsvector, enums)
// report their udt_name so categorization sees the real type.
func (p *PostgresIntrospector) Columns(ctx context.Context, table string) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.conn.Query(ctx, `
		SELECT column_name,
		       CASE WHEN data_type = 'USER-DEFINED' THEN udt_name ELSE data_type END
		  FROM information_schema.columns
		 WHERE table_schema = current_schema()
		   AND table_name = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}

	cols := make(map[string]string)
	var name, nativeType pgtype.Text
	_, err = pgx.ForEachRow(rows, []any{&name, &nativeType}, func() error {
		cols[name.String] = nativeType.String
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("introspect %s: table not found", table)
	}
	return cols, nil
}
