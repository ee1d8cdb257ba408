package calibration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestNewProfile(t *testing.T) {
	t.Parallel()
	profile := NewProfile()

	if profile == nil {
		t.Fatal("NewProfile returned nil")
	}

	if profile.NumCPU != runtime.NumCPU() {
		t.Errorf("NumCPU = %d, want %d", profile.NumCPU, runtime.NumCPU())
	}

	if profile.GOARCH != runtime.GOARCH {
		t.Errorf("GOARCH = %s, want %s", profile.GOARCH, runtime.GOARCH)
	}

	if profile.GOOS != runtime.GOOS {
		t.Errorf("GOOS = %s, want %s", profile.GOOS, runtime.GOOS)
	}

	if profile.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %s, want %s", profile.GoVersion, runtime.Version())
	}

	if profile.ProfileVersion != CurrentProfileVersion {
		t.Errorf("ProfileVersion = %d, want %d", profile.ProfileVersion, CurrentProfileVersion)
	}

	expectedWordSize := 32 << (^uint(0) >> 63)
	if profile.WordSize != expectedWordSize {
		t.Errorf("WordSize = %d, want %d", profile.WordSize, expectedWordSize)
	}

	if profile.CalibratedAt.IsZero() {
		t.Error("CalibratedAt is zero")
	}
}

func TestProfileSaveLoad(t *testing.T) {
	t.Parallel()
	// Create a temporary directory for the test
	tmpDir, err := os.MkdirTemp("", "factcalc_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	profilePath := filepath.Join(tmpDir, "test_profile.json")

	// Create and save a profile
	original := NewProfile()
	original.OptimalWorkers = 6
	original.Backend = "big"
	original.CalibrationN = 100000
	original.CalibrationTime = "1m30s"

	if err := original.SaveProfile(profilePath); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(profilePath); os.IsNotExist(err) {
		t.Fatal("Profile file was not created")
	}

	// Load the profile
	loaded, err := loadProfile(profilePath)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}

	// Verify loaded values
	if loaded.OptimalWorkers != original.OptimalWorkers {
		t.Errorf("OptimalWorkers = %d, want %d", loaded.OptimalWorkers, original.OptimalWorkers)
	}

	if loaded.Backend != original.Backend {
		t.Errorf("Backend = %q, want %q", loaded.Backend, original.Backend)
	}

	if loaded.CalibrationN != original.CalibrationN {
		t.Errorf("CalibrationN = %d, want %d", loaded.CalibrationN, original.CalibrationN)
	}

	if loaded.NumCPU != original.NumCPU {
		t.Errorf("NumCPU = %d, want %d", loaded.NumCPU, original.NumCPU)
	}
}

func TestProfileIsValid(t *testing.T) {
	t.Parallel()
	// Valid profile for current hardware
	valid := NewProfile()
	if !valid.IsValid() {
		t.Error("Expected newly created profile to be valid")
	}

	// Invalid: wrong CPU count
	wrongCPU := NewProfile()
	wrongCPU.NumCPU = 999
	if wrongCPU.IsValid() {
		t.Error("Expected profile with wrong CPU count to be invalid")
	}

	// Invalid: wrong architecture
	wrongArch := NewProfile()
	wrongArch.GOARCH = "invalid_arch"
	if wrongArch.IsValid() {
		t.Error("Expected profile with wrong GOARCH to be invalid")
	}

	// Invalid: wrong word size
	wrongWordSize := NewProfile()
	wrongWordSize.WordSize = 16
	if wrongWordSize.IsValid() {
		t.Error("Expected profile with wrong word size to be invalid")
	}

	// Invalid: wrong version
	wrongVersion := NewProfile()
	wrongVersion.ProfileVersion = 999
	if wrongVersion.IsValid() {
		t.Error("Expected profile with wrong version to be invalid")
	}

	// Nil profile
	var nilProfile *CalibrationProfile
	if nilProfile.IsValid() {
		t.Error("Expected nil profile to be invalid")
	}
}

func TestProfileIsStale(t *testing.T) {
	t.Parallel()
	profile := NewProfile()

	// Fresh profile should not be stale
	if profile.IsStale(time.Hour) {
		t.Error("Expected fresh profile to not be stale")
	}

	// Old profile should be stale
	profile.CalibratedAt = time.Now().Add(-2 * time.Hour)
	if !profile.IsStale(time.Hour) {
		t.Error("Expected old profile to be stale")
	}

	// Nil profile should be stale
	var nilProfile *CalibrationProfile
	if !nilProfile.IsStale(time.Hour) {
		t.Error("Expected nil profile to be stale")
	}
}

func TestProfileString(t *testing.T) {
	t.Parallel()
	profile := NewProfile()
	profile.OptimalWorkers = 8
	profile.Backend = "big"
	profile.CalibrationN = 100000

	str := profile.String()
	if str == "" {
		t.Error("String() returned empty string")
	}

	if !strings.Contains(str, "8 workers") || !strings.Contains(str, "n=100000") {
		t.Errorf("String() is missing key information: %s", str)
	}
}

func TestLoadNonExistentProfile(t *testing.T) {
	t.Parallel()
	_, err := loadProfile("/nonexistent/path/to/profile.json")
	if err == nil {
		t.Error("Expected error loading nonexistent profile")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()
	tmpDir, err := os.MkdirTemp("", "factcalc_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create file with invalid JSON
	invalidPath := filepath.Join(tmpDir, "invalid.json")
	if err := os.WriteFile(invalidPath, []byte("not valid json"), 0644); err != nil {
		t.Fatalf("Failed to write invalid file: %v", err)
	}

	_, err = loadProfile(invalidPath)
	if err == nil {
		t.Error("Expected error loading invalid JSON")
	}
}

func TestGetDefaultProfilePath(t *testing.T) {
	t.Parallel()
	path := GetDefaultProfilePath()
	if path == "" {
		t.Error("GetDefaultProfilePath returned empty string")
	}

	// Should end with the default filename
	if filepath.Base(path) != DefaultProfileFileName {
		t.Errorf("Path %s doesn't end with %s", path, DefaultProfileFileName)
	}
}

func TestLoadCachedWorkers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	fresh := NewProfile()
	fresh.OptimalWorkers = 4
	fresh.Backend = "big"
	freshPath := filepath.Join(dir, "fresh.json")
	if err := fresh.SaveProfile(freshPath); err != nil {
		t.Fatal(err)
	}
	if w, ok := LoadCachedWorkers(freshPath, "big", time.Hour); !ok || w != 4 {
		t.Errorf("LoadCachedWorkers(fresh) = (%d, %v), want (4, true)", w, ok)
	}

	old := NewProfile()
	old.OptimalWorkers = 4
	old.Backend = "big"
	old.CalibratedAt = time.Now().Add(-48 * time.Hour)
	oldPath := filepath.Join(dir, "old.json")
	if err := old.SaveProfile(oldPath); err != nil {
		t.Fatal(err)
	}
	if _, ok := LoadCachedWorkers(oldPath, "big", time.Hour); ok {
		t.Error("Expected a stale profile to be ignored")
	}

	empty := NewProfile()
	empty.Backend = "big"
	emptyPath := filepath.Join(dir, "nested", "empty.json")
	if err := empty.SaveProfile(emptyPath); err != nil {
		t.Fatal(err)
	}
	if _, ok := LoadCachedWorkers(emptyPath, "big", time.Hour); ok {
		t.Error("Expected a profile without a worker count to be ignored")
	}

	if _, ok := LoadCachedWorkers(filepath.Join(dir, "missing.json"), "big", time.Hour); ok {
		t.Error("Expected a missing profile to be ignored")
	}

	if _, ok := LoadCachedWorkers(freshPath, "gmp", time.Hour); ok {
		t.Error("Expected a profile measured with another backend to be ignored")
	}
}

func TestSaveProfileReplacesAtomically(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")

	first := NewProfile()
	first.OptimalWorkers = 2
	first.Backend = "big"
	if err := first.SaveProfile(path); err != nil {
		t.Fatal(err)
	}
	second := NewProfile()
	second.OptimalWorkers = 6
	second.Backend = "big"
	if err := second.SaveProfile(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := loadProfile(path)
	if err != nil {
		t.Fatalf("loadProfile: %v", err)
	}
	if loaded.OptimalWorkers != 6 {
		t.Errorf("OptimalWorkers = %d, want 6", loaded.OptimalWorkers)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "profile.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory holds %v, want only profile.json", names)
	}
}

func TestSaveProfileUnwritableDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewProfile().SaveProfile(filepath.Join(blocker, "profile.json")); err == nil {
		t.Error("Expected an error when the parent is not a directory")
	}
}
