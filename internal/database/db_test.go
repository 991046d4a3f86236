package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T, name string) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: ProfileStandard,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBuildConnectionString(t *testing.T) {
	tests := []struct {
		profile  DatabaseProfile
		contains string
	}{
		{ProfileLedger, "synchronous(FULL)"},
		{ProfileCache, "synchronous(OFF)"},
		{ProfileStandard, "synchronous(NORMAL)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			connStr := buildConnectionString("/tmp/x.db", tt.profile)
			assert.Contains(t, connStr, "journal_mode(WAL)")
			assert.Contains(t, connStr, tt.contains)
		})
	}
}

func TestMigrate_CreatesRecordTables(t *testing.T) {
	db := newDB(t, "records")
	require.NoError(t, db.Migrate())

	for _, table := range []string{"workers", "job_types", "jobs", "time_entries"} {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// Re-running is a no-op
	require.NoError(t, db.Migrate())
}

func TestMigrate_UnknownNameSkipped(t *testing.T) {
	db := newDB(t, "scratch")
	require.NoError(t, db.Migrate())

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestSchema(t *testing.T) {
	schema, ok := Schema("records")
	assert.True(t, ok)
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS time_entries")

	_, ok = Schema("missing")
	assert.False(t, ok)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := newDB(t, "records")
	require.NoError(t, db.Migrate())

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, execErr := tx.Exec(
			"INSERT INTO workers (tenant_id, id, name, hourly_rate, updated_at) VALUES ('t', 'w1', 'Alice', 40, 1)",
		)
		require.NoError(t, execErr)
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM workers").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction_NilConnection(t *testing.T) {
	err := WithTransaction(nil, func(tx *sql.Tx) error { return nil })
	assert.Error(t, err)
}

func TestHealthCheckAndStats(t *testing.T) {
	db := newDB(t, "records")
	require.NoError(t, db.Migrate())

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, db.WALCheckpoint(""))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
}
