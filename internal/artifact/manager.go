package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hearthward/exposure-core/internal/infrastructure/config"
)

const (
	dirPermissions  = 0750
	filePermissions = 0600

	// backupSubdir keeps our backups apart from other tools sharing the
	// backups directory.
	backupSubdir = "exposure-core"

	// backupTimestampLayout is filesystem-safe and sorts chronologically.
	backupTimestampLayout = "20060102_150405"
)

// Manager owns the managed artifact file on disk: backups before each
// rewrite, atomic writes, and access to the optional foreign
// configuration file used for first-run import.
type Manager struct {
	managedPath string
	backupsDir  string
	foreignPath string
	backups     bool
}

// NewManager creates a Manager from artifact configuration.
func NewManager(cfg config.ArtifactConfig) *Manager {
	return &Manager{
		managedPath: cfg.ManagedFile,
		backupsDir:  cfg.BackupsDir,
		foreignPath: cfg.ForeignFile,
		backups:     cfg.Backups,
	}
}

// ManagedPath returns the path of the managed artifact.
func (m *Manager) ManagedPath() string {
	return m.managedPath
}

// Write replaces the managed artifact. The previous version (if any)
// is backed up first when backups are enabled, then the new content is
// written to a temp file and renamed into place so readers never see a
// partial file.
func (m *Manager) Write(data []byte) error {
	if m.backups {
		if err := m.backupManaged(); err != nil {
			return err
		}
	}

	dir := filepath.Dir(m.managedPath)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".exposure-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()          //nolint:errcheck // Best effort cleanup
		os.Remove(tmpPath)   //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("writing temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("closing temp artifact: %w", err)
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("setting artifact permissions: %w", err)
	}

	if err := os.Rename(tmpPath, m.managedPath); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("replacing artifact: %w", err)
	}
	return nil
}

// Read returns the current managed artifact content.
// Returns ErrArtifactMissing when no artifact has been written yet.
func (m *Manager) Read() ([]byte, error) {
	data, err := os.ReadFile(m.managedPath)
	if os.IsNotExist(err) {
		return nil, ErrArtifactMissing
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	return data, nil
}

// backupManaged copies the current artifact into the backup directory
// with a timestamped name. A missing artifact is not an error.
func (m *Manager) backupManaged() error {
	data, err := os.ReadFile(m.managedPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading artifact for backup: %w", err)
	}
	return m.writeBackup(filepath.Base(m.managedPath), data)
}

// ForeignExists reports whether a foreign configuration file is
// configured and present.
func (m *Manager) ForeignExists() bool {
	if m.foreignPath == "" {
		return false
	}
	_, err := os.Stat(m.foreignPath)
	return err == nil
}

// ReadForeign returns the foreign configuration file content.
func (m *Manager) ReadForeign() ([]byte, error) {
	if m.foreignPath == "" {
		return nil, ErrNoForeignConfig
	}
	data, err := os.ReadFile(m.foreignPath)
	if os.IsNotExist(err) {
		return nil, ErrNoForeignConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading foreign config: %w", err)
	}
	return data, nil
}

// BackupForeign copies the foreign configuration into the backup
// directory before an import consumes it.
func (m *Manager) BackupForeign() error {
	data, err := m.ReadForeign()
	if err != nil {
		return err
	}
	return m.writeBackup(filepath.Base(m.foreignPath), data)
}

func (m *Manager) writeBackup(baseName string, data []byte) error {
	dir := filepath.Join(m.backupsDir, backupSubdir)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	stamp := time.Now().UTC().Format(backupTimestampLayout)
	path := filepath.Join(dir, fmt.Sprintf("%s.%s.bak", baseName, stamp))
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}
