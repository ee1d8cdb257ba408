package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// CurrentProfileVersion is bumped whenever the profile layout changes.
	CurrentProfileVersion = 1
	// DefaultProfileFileName is the file name used under the home directory.
	DefaultProfileFileName = ".factcalc_calibration.json"
	// DefaultProfileMaxAge is how long a saved profile is trusted.
	DefaultProfileMaxAge = 30 * 24 * time.Hour
)

// CalibrationProfile stores the outcome of a calibration run together with
// the hardware it was measured on, so a later run can reuse it.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	NumCPU         int       `json:"num_cpu"`
	GOARCH         string    `json:"goarch"`
	GOOS           string    `json:"goos"`
	GoVersion      string    `json:"go_version"`
	WordSize       int       `json:"word_size"`
	CPUModel       string    `json:"cpu_model,omitempty"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	OptimalWorkers  int    `json:"optimal_workers"`
	Backend         string `json:"backend"`
	CalibrationN    int64  `json:"calibration_n"`
	CalibrationTime string `json:"calibration_time"`
}

// NewProfile returns a profile stamped with the current hardware and time.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CalibratedAt:   time.Now(),
	}
}

// IsValid reports whether the profile was measured on hardware matching the
// current process. A nil profile is invalid.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63)
}

// IsStale reports whether the profile is older than maxAge. A nil profile is
// always stale.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// String summarizes the profile on one line.
func (p *CalibrationProfile) String() string {
	return fmt.Sprintf("calibration profile: %d workers (%s backend) at n=%d on %d CPUs %s/%s, measured %s",
		p.OptimalWorkers, p.Backend, p.CalibrationN, p.NumCPU, p.GOOS, p.GOARCH,
		p.CalibratedAt.Format(time.RFC3339))
}

// SaveProfile writes the profile as indented JSON, creating parent
// directories as needed. The file is replaced atomically through a temporary
// file in the same directory, so readers never see a partial profile.
func (p *CalibrationProfile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding calibration profile: %w", err)
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating profile directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing calibration profile: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing calibration profile: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing calibration profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing calibration profile: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing calibration profile: %w", err)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding calibration profile %s: %w", path, err)
	}
	return &p, nil
}

// LoadCachedWorkers returns the calibrated worker count stored at path when
// the profile matches this machine and backend and is younger than maxAge.
func LoadCachedWorkers(path, backend string, maxAge time.Duration) (int, bool) {
	p, err := loadProfile(path)
	if err != nil || !p.IsValid() || p.IsStale(maxAge) || p.OptimalWorkers < 1 {
		return 0, false
	}
	if p.Backend != backend {
		return 0, false
	}
	return p.OptimalWorkers, true
}

// GetDefaultProfilePath returns the profile location in the user's home
// directory, or the working directory when no home is set.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}
