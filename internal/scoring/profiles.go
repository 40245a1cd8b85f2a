package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/voxlab/speechmeter/internal/errors"
)

// DefaultProfile is the profile name served when no file overrides it.
const DefaultProfile = "default"

// ProfileStore loads named scoring calibrations from a data directory.
// A profile is a JSON or YAML file holding a Config; recalibrating the
// engine means editing a profile, never touching scoring code.
type ProfileStore struct {
	dataDir string
}

// NewProfileStore creates a profile store rooted at dataDir.
func NewProfileStore(dataDir string) *ProfileStore {
	return &ProfileStore{dataDir: dataDir}
}

// Load returns the validated calibration for a profile. An unknown name
// with no file on disk falls back to the built-in default; a file that
// exists but fails to parse or validate is a configuration error.
func (s *ProfileStore) Load(name string) (Config, error) {
	if name == "" {
		name = DefaultProfile
	}
	path, ok := s.findProfileFile(name)
	if !ok {
		if name == DefaultProfile {
			return DefaultConfig(), nil
		}
		return Config{}, apperrors.NewConfigurationError(
			fmt.Sprintf("scoring profile %q not found in %s", name, s.dataDir), nil)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, apperrors.NewConfigurationError(
			fmt.Sprintf("failed to read scoring profile %q", name), err)
	}

	cfg := DefaultConfig()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &cfg)
	default:
		err = json.Unmarshal(raw, &cfg)
	}
	if err != nil {
		return Config{}, apperrors.NewConfigurationError(
			fmt.Sprintf("failed to decode scoring profile %q", name), err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes a calibration as a JSON profile, validating it first so a
// broken calibration can never be persisted.
func (s *ProfileStore) Save(name string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	path := filepath.Join(s.dataDir, name+".json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create profile file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return nil
}

// List returns the available profile names, always including the built-in
// default, sorted for stable output.
func (s *ProfileStore) List() ([]string, error) {
	names := map[string]bool{DefaultProfile: true}

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{DefaultProfile}, nil
		}
		return nil, fmt.Errorf("failed to read profile directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		switch ext {
		case ".json", ".yaml", ".yml":
			names[strings.TrimSuffix(e.Name(), ext)] = true
		}
	}

	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (s *ProfileStore) findProfileFile(name string) (string, bool) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(s.dataDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
