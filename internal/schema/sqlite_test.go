package schema

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteIntrospector_Columns(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`
		CREATE TABLE items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			price NUMERIC,
			is_favorite BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`)
	require.NoError(t, err)

	intro := NewSQLiteIntrospector(db)
	cols, err := intro.Columns(context.Background(), "items")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"id":          "TEXT",
		"name":        "TEXT",
		"quantity":    "INTEGER",
		"price":       "NUMERIC",
		"is_favorite": "BOOLEAN",
		"created_at":  "TIMESTAMP",
	}, cols)
}

func TestSQLiteIntrospector_UnknownTable(t *testing.T) {
	db := openTestDB(t)

	intro := NewSQLiteIntrospector(db)
	_, err := intro.Columns(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestSQLiteIntrospector_ResolvesThroughResolver(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`CREATE TABLE boxes (id TEXT, label TEXT, packed_at TIMESTAMP)`)
	require.NoError(t, err)

	r := NewResolver(NewSQLiteIntrospector(db))
	cols := r.Resolve(context.Background(), "boxes")

	assert.Equal(t, map[string]Type{
		"id":        TypeText,
		"label":     TypeText,
		"packed_at": TypeTimestamp,
	}, cols)
}
