package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManager_CreateAndCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build-project")
	mgr := NewManager(dir, false)

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Fatalf("scratch directory does not exist: %s", dir)
	}

	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("scratch directory still exists after cleanup: %s", dir)
	}
}

func TestManager_ReusesExistingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build-project")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}

	marker := filepath.Join(dir, "CMakeCache.txt")
	if err := os.WriteFile(marker, []byte("cache"), 0o600); err != nil {
		t.Fatal(err)
	}

	mgr := NewManager(dir, true)
	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// An existing directory is reused, not recreated.
	if _, err := os.Stat(marker); os.IsNotExist(err) {
		t.Error("existing scratch contents were removed by Create()")
	}
}

func TestManager_KeepMode(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build-project")
	mgr := NewManager(dir, true)

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("keep-mode scratch directory was removed by Cleanup()")
	}
}

func TestManager_EmptyDir(t *testing.T) {
	mgr := NewManager("", false)
	if err := mgr.Create(); err == nil {
		t.Error("Create() should fail with empty directory")
	}
	if err := mgr.Cleanup(); err != nil {
		t.Errorf("Cleanup() on empty manager should be a no-op, got: %v", err)
	}
}
