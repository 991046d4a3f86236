// Package reliability provides database backups and maintenance jobs.
package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/database"
)

const (
	archivePrefix    = "labourdash-backup-"
	archiveSuffix    = ".tar.gz"
	archiveTimestamp = "2006-01-02-150405"
	metadataFile     = "backup-metadata.json"
	// minBackupsToKeep survive rotation regardless of the retention count.
	minBackupsToKeep = 3
)

// ObjectStore receives backup archives off-site.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader) error
}

// BackupMetadata describes the contents of one archive
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes a single database inside an archive
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo describes a backup archive on disk
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	Uploaded  bool      `json:"uploaded"`
}

// BackupService creates verified archives of the SQLite databases
type BackupService struct {
	databases map[string]*database.DB
	backupDir string
	retain    int
	store     ObjectStore // optional
	now       func() time.Time
	log       zerolog.Logger

	mu   sync.Mutex
	last *BackupInfo
}

// NewBackupService creates a new backup service. store may be nil.
func NewBackupService(
	databases map[string]*database.DB,
	backupDir string,
	retain int,
	store ObjectStore,
	log zerolog.Logger,
) *BackupService {
	return &BackupService{
		databases: databases,
		backupDir: backupDir,
		retain:    retain,
		store:     store,
		now:       time.Now,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// SetClock replaces the clock that names archives. Intended for tests.
func (s *BackupService) SetClock(now func() time.Time) {
	s.now = now
}

// DatabaseNames returns the backed-up database names in a stable order
func (s *BackupService) DatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase writes a consistent copy of one database to destPath and verifies it.
func (s *BackupService) BackupDatabase(name, destPath string) error {
	db, ok := s.databases[name]
	if !ok || db == nil {
		return fmt.Errorf("unknown database %s", name)
	}

	// VACUUM INTO refuses to overwrite
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale backup %s: %w", destPath, err)
	}

	if _, err := db.Conn().Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("failed to vacuum %s into backup: %w", name, err)
	}

	return verifyIntegrity(destPath)
}

// CreateBackup archives every database, uploads the archive when an object
// store is configured, and rotates old local archives.
func (s *BackupService) CreateBackup(ctx context.Context) (*BackupInfo, error) {
	s.log.Info().Msg("Starting backup")
	startTime := time.Now()
	timestamp := s.now().UTC()

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	stagingDir, err := os.MkdirTemp(s.backupDir, "staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	names := s.DatabaseNames()
	metadata := BackupMetadata{
		Timestamp: timestamp,
		Databases: make([]DatabaseMetadata, 0, len(names)),
	}
	files := make([]string, 0, len(names)+1)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		filename := name + ".db"
		dbPath := filepath.Join(stagingDir, filename)
		if err := s.BackupDatabase(name, dbPath); err != nil {
			return nil, fmt.Errorf("failed to backup %s: %w", name, err)
		}

		info, err := os.Stat(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s backup: %w", name, err)
		}
		checksum, err := fileChecksum(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate checksum for %s: %w", name, err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      name,
			Filename:  filename,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		files = append(files, filename)
	}

	if err := writeMetadata(filepath.Join(stagingDir, metadataFile), metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	files = append(files, metadataFile)

	archiveName := archivePrefix + timestamp.Format(archiveTimestamp) + archiveSuffix
	archivePath := filepath.Join(s.backupDir, archiveName)
	if err := createArchive(archivePath, stagingDir, files); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	archiveInfo, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	backup := &BackupInfo{
		Filename:  archiveName,
		Path:      archivePath,
		Timestamp: timestamp,
		SizeBytes: archiveInfo.Size(),
	}

	if s.store != nil {
		if err := s.upload(ctx, archivePath, archiveName); err != nil {
			return nil, err
		}
		backup.Uploaded = true
	}

	if err := s.RotateOldBackups(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to rotate old backups")
	}

	s.mu.Lock()
	s.last = backup
	s.mu.Unlock()

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archiveName).
		Int64("size_bytes", backup.SizeBytes).
		Bool("uploaded", backup.Uploaded).
		Msg("Backup completed successfully")

	return backup, nil
}

// LastBackup returns the most recent backup created by this process, or nil.
func (s *BackupService) LastBackup() *BackupInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	info := *s.last
	return &info
}

// ListBackups lists the local archives, newest first
func (s *BackupService) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), archiveSuffix)
		timestamp, err := time.Parse(archiveTimestamp, stamp)
		if err != nil {
			s.log.Warn().Str("filename", name).Msg("Failed to parse timestamp from filename")
			continue
		}

		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}

		backups = append(backups, BackupInfo{
			Filename:  name,
			Path:      filepath.Join(s.backupDir, name),
			Timestamp: timestamp,
			SizeBytes: size,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// RotateOldBackups deletes local archives beyond the retention count.
// At least minBackupsToKeep archives are always kept.
func (s *BackupService) RotateOldBackups() error {
	backups, err := s.ListBackups()
	if err != nil {
		return err
	}

	keep := s.retain
	if keep < minBackupsToKeep {
		keep = minBackupsToKeep
	}
	if len(backups) <= keep {
		return nil
	}

	deleted := 0
	for _, backup := range backups[keep:] {
		if err := os.Remove(backup.Path); err != nil {
			s.log.Error().Err(err).Str("filename", backup.Filename).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("Backup rotation completed")
	return nil
}

func (s *BackupService) upload(ctx context.Context, archivePath, key string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	if err := s.store.Upload(ctx, key, file); err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}
	return nil
}

// verifyIntegrity opens a database file and runs PRAGMA integrity_check
func verifyIntegrity(path string) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup %s: %w", path, err)
	}
	defer conn.Close()

	var result string
	if err := conn.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check backup integrity: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup integrity check failed: %s", result)
	}
	return nil
}

// fileChecksum calculates the SHA256 checksum of a file
func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

// createArchive writes a tar.gz of the named files in sourceDir
func createArchive(archivePath, sourceDir string, filenames []string) (err error) {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if closeErr := archiveFile.Close(); err == nil {
			err = closeErr
		}
	}()

	gzipWriter := gzip.NewWriter(archiveFile)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, filename := range filenames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, filename), filename); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", filename, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	return gzipWriter.Close()
}

func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
