package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hearthward/exposure-core/internal/infrastructure/config"
)

func newTestManager(t *testing.T, backups bool) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m := NewManager(config.ArtifactConfig{
		ManagedFile: filepath.Join(dir, "assistant_entities.yaml"),
		BackupsDir:  filepath.Join(dir, "backups"),
		ForeignFile: filepath.Join(dir, "foreign.yaml"),
		Backups:     backups,
	})
	return m, dir
}

func TestManager_WriteAndRead(t *testing.T) {
	m, _ := newTestManager(t, false)

	content := []byte("light.kitchen:\n    expose: true\n")
	if err := m.Write(content); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("Read() = %q, want %q", got, content)
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(m.ManagedPath()))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(m.ManagedPath()) && e.Name() != "backups" && e.Name() != "foreign.yaml" {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestManager_ReadMissing(t *testing.T) {
	m, _ := newTestManager(t, false)

	_, err := m.Read()
	if !errors.Is(err, ErrArtifactMissing) {
		t.Errorf("Read() = %v, want ErrArtifactMissing", err)
	}
}

func TestManager_BackupBeforeOverwrite(t *testing.T) {
	m, dir := newTestManager(t, true)

	if err := m.Write([]byte("version: one\n")); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if err := m.Write([]byte("version: two\n")); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	backupDir := filepath.Join(dir, "backups", "exposure-core")
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatalf("backup directory missing: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(entries))
	}

	backup, err := os.ReadFile(filepath.Join(backupDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(backup) != "version: one\n" {
		t.Errorf("backup content = %q, want the previous version", backup)
	}
}

func TestManager_NoBackupWhenDisabled(t *testing.T) {
	m, dir := newTestManager(t, false)

	if err := m.Write([]byte("one\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := m.Write([]byte("two\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "backups")); !os.IsNotExist(err) {
		t.Error("backups should not be created when disabled")
	}
}

func TestManager_Foreign(t *testing.T) {
	m, dir := newTestManager(t, true)

	if m.ForeignExists() {
		t.Error("ForeignExists() = true before file created")
	}
	if _, err := m.ReadForeign(); !errors.Is(err, ErrNoForeignConfig) {
		t.Errorf("ReadForeign() = %v, want ErrNoForeignConfig", err)
	}

	foreignPath := filepath.Join(dir, "foreign.yaml")
	if err := os.WriteFile(foreignPath, []byte("exposed_domains: [light]\n"), 0600); err != nil {
		t.Fatalf("writing foreign file: %v", err)
	}

	if !m.ForeignExists() {
		t.Error("ForeignExists() = false after file created")
	}
	if err := m.BackupForeign(); err != nil {
		t.Fatalf("BackupForeign() error = %v", err)
	}

	backupDir := filepath.Join(dir, "backups", "exposure-core")
	entries, err := os.ReadDir(backupDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 foreign backup, got %v (err %v)", entries, err)
	}
}

func TestManager_NoForeignConfigured(t *testing.T) {
	m := NewManager(config.ArtifactConfig{
		ManagedFile: filepath.Join(t.TempDir(), "managed.yaml"),
	})

	if m.ForeignExists() {
		t.Error("ForeignExists() = true with no path configured")
	}
	if err := m.BackupForeign(); !errors.Is(err, ErrNoForeignConfig) {
		t.Errorf("BackupForeign() = %v, want ErrNoForeignConfig", err)
	}
}
