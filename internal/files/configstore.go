package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultVersion is reported whenever no usable version is stored.
const DefaultVersion = "0.0.0"

// DefaultExecutable is reported when the document does not name one.
const DefaultExecutable = "client.exe"

// JSON keys of the local config document.
const (
	keyGamePath   = "game_path"
	keyExecutable = "executable_name"
	keyVersion    = "version"
)

// LocalConfig is the per-install state persisted next to the launcher.
type LocalConfig struct {
	GameDirectory    string `json:"game_path" yaml:"game_path"`
	ExecutableName   string `json:"executable_name" yaml:"executable_name"`
	InstalledVersion string `json:"version" yaml:"version"`
}

// Fields selects which keys Save writes. Nil fields are left untouched.
type Fields struct {
	GameDirectory    *string
	ExecutableName   *string
	InstalledVersion *string
}

// ConfigStore abstracts the local config document with merge-on-write semantics.
type ConfigStore interface {
	Load() LocalConfig
	Save(f Fields) error
	Backup() (string, error) // returns backup path of the document
	Path() string
}

type store struct{ path string }

// New returns a filesystem-backed store for the document at path.
func New(path string) ConfigStore { return &store{path: path} }

func (s *store) Path() string { return s.path }

// readRaw returns the document as a generic map so unknown keys survive a
// rewrite. Missing or unparsable documents read as empty.
func (s *store) readRaw() (map[string]any, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]any{}, err
	}
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return map[string]any{}, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// Load never fails: a missing file, missing keys, or a parse error all
// yield the defaults for the affected fields.
func (s *store) Load() LocalConfig {
	raw, _ := s.readRaw()
	return LocalConfig{
		GameDirectory:    stringKey(raw, keyGamePath, ""),
		ExecutableName:   stringKey(raw, keyExecutable, DefaultExecutable),
		InstalledVersion: stringKey(raw, keyVersion, DefaultVersion),
	}
}

func (s *store) Save(f Fields) error {
	raw, err := s.readRaw()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		// Corrupt document: keep a copy, then start over.
		if _, berr := s.Backup(); berr != nil {
			return fmt.Errorf("back up %s: %w", filepath.Base(s.path), berr)
		}
		raw = map[string]any{}
	}
	if f.GameDirectory != nil {
		raw[keyGamePath] = *f.GameDirectory
	}
	if f.ExecutableName != nil {
		raw[keyExecutable] = *f.ExecutableName
	}
	if f.InstalledVersion != nil {
		raw[keyVersion] = *f.InstalledVersion
	}
	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(s.path), err)
	}
	return writeFileAtomic(s.path, append(data, '\n'), 0o644)
}

// Backup copies the document to a timestamped .bak file next to it.
func (s *store) Backup() (string, error) {
	ts := time.Now().Format("20060102-150405")
	dst := s.path + "." + ts + ".bak"
	b, err := os.ReadFile(s.path)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path, so a failed write never leaves a truncated document behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func stringKey(raw map[string]any, key, d string) string {
	if v, ok := raw[key].(string); ok && v != "" {
		return v
	}
	return d
}

// String returns a pointer to s, for building Fields literals.
func String(s string) *string { return &s }
