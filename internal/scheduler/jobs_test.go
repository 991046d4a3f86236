package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/labourdash/internal/database"
	"github.com/aristath/labourdash/internal/reliability"
	testingpkg "github.com/aristath/labourdash/internal/testing"
)

type fakeWarmer struct {
	tenant string
	err    error
}

func (f *fakeWarmer) WarmCache(ctx context.Context, tenantID string) error {
	f.tenant = tenantID
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	return f.err
}

type fakePurger struct{ calls int }

func (f *fakePurger) Purge() int {
	f.calls++
	return 2
}

type fakeBackups struct {
	calls int
	err   error
}

func (f *fakeBackups) CreateBackup(ctx context.Context) (*reliability.BackupInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &reliability.BackupInfo{Filename: "b.tar.gz"}, nil
}

func TestWarmCacheJob(t *testing.T) {
	warmer := &fakeWarmer{}
	job := NewWarmCacheJob(warmer, "acme", zerolog.Nop())

	assert.Equal(t, "warm_trends_cache", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, "acme", warmer.tenant)

	warmer.err = errors.New("locked")
	assert.ErrorContains(t, job.Run(), "locked")
}

func TestPurgeCacheJob(t *testing.T) {
	purger := &fakePurger{}
	job := NewPurgeCacheJob(purger, zerolog.Nop())

	assert.Equal(t, "purge_trends_cache", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 1, purger.calls)
}

func TestBackupJob(t *testing.T) {
	backups := &fakeBackups{}
	job := NewBackupJob(backups, zerolog.Nop())

	assert.Equal(t, "backup", job.Name())
	require.NoError(t, job.Run())

	backups.err = errors.New("disk full")
	assert.Error(t, job.Run())
	assert.Equal(t, 2, backups.calls)
}

func TestCheckWALCheckpointsJob_Name(t *testing.T) {
	job := NewCheckWALCheckpointsJob(nil, zerolog.Nop())
	assert.Equal(t, "check_wal_checkpoints", job.Name())
}

func TestCheckWALCheckpointsJob_Run_NoDatabases(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	job := NewCheckWALCheckpointsJob(map[string]*database.DB{"records": nil}, log)

	err := job.Run()
	assert.NoError(t, err) // Should handle nil databases gracefully
}

func TestCheckWALCheckpointsJob_Run(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "records")
	defer cleanup()

	job := NewCheckWALCheckpointsJob(map[string]*database.DB{"records": db}, zerolog.Nop())
	assert.NoError(t, job.Run())
}
