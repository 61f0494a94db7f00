// Package storetest opens a throwaway database for the gorm store tests.
package storetest

import (
	"path/filepath"
	"testing"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/require"
)

// OpenSQLite migrated sqlite database under t.TempDir, the test is skipped
// when the sqlite dialect cannot be opened
func OpenSQLite(t *testing.T) *db.DB {
	t.Helper()

	file := filepath.Join(t.TempDir(), "safeprice.db")
	database, err := db.Open(db.Config{
		Dialect:  "sqlite3",
		Host:     file,
		Database: file,
	})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	require.Nil(t, db.Migrate(database))
	return database
}
