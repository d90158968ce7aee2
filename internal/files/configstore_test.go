package files

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigStore_LoadDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content *string // nil = no file
	}{
		{"missing file", nil},
		{"empty file", String("")},
		{"corrupt json", String("{not json")},
		{"json null", String("null")},
		{"missing keys", String(`{"other": 1}`)},
		{"wrong types", String(`{"version": 3, "game_path": false}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "launcher_config.json")
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			got := New(path).Load()
			want := LocalConfig{GameDirectory: "", ExecutableName: DefaultExecutable, InstalledVersion: DefaultVersion}
			if got != want {
				t.Errorf("Load() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestConfigStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher_config.json")
	s := New(path)

	if err := s.Save(Fields{InstalledVersion: String("2.0.0")}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := s.Load().InstalledVersion; got != "2.0.0" {
		t.Errorf("InstalledVersion = %q, want 2.0.0", got)
	}
}

func TestConfigStore_SavePreservesKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher_config.json")
	s := New(path)

	if err := s.Save(Fields{GameDirectory: String("/games/client"), ExecutableName: String("client.exe")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(Fields{InstalledVersion: String("1.1.0")}); err != nil {
		t.Fatal(err)
	}

	got := s.Load()
	want := LocalConfig{GameDirectory: "/games/client", ExecutableName: "client.exe", InstalledVersion: "1.1.0"}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestConfigStore_SavePreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher_config.json")
	if err := os.WriteFile(path, []byte(`{"theme":"dark","version":"1.0.0"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := New(path).Save(Fields{InstalledVersion: String("1.2.0")}); err != nil {
		t.Fatal(err)
	}

	b, _ := os.ReadFile(path)
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("saved document is not JSON: %v\n%s", err, b)
	}
	if raw["theme"] != "dark" {
		t.Errorf("theme = %v, want dark", raw["theme"])
	}
	if raw["version"] != "1.2.0" {
		t.Errorf("version = %v, want 1.2.0", raw["version"])
	}
}

func TestConfigStore_SaveOverCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher_config.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(path)
	if err := s.Save(Fields{InstalledVersion: String("3.0.0")}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := s.Load().InstalledVersion; got != "3.0.0" {
		t.Errorf("InstalledVersion = %q, want 3.0.0", got)
	}

	baks, err := filepath.Glob(path + ".*.bak")
	if err != nil || len(baks) != 1 {
		t.Fatalf("backups = %v, %v; want one", baks, err)
	}
	if b, _ := os.ReadFile(baks[0]); string(b) != "garbage" {
		t.Errorf("backup content = %q, want the corrupt original", b)
	}
}

func TestConfigStore_SaveValidDocumentMakesNoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher_config.json")
	s := New(path)
	for _, v := range []string{"1.0.0", "1.0.1"} {
		if err := s.Save(Fields{InstalledVersion: String(v)}); err != nil {
			t.Fatal(err)
		}
	}
	if baks, _ := filepath.Glob(path + ".*.bak"); len(baks) != 0 {
		t.Errorf("unexpected backups %v", baks)
	}
}

func TestConfigStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "launcher_config.json"))
	for _, v := range []string{"1.0.0", "1.0.1", "1.0.2"} {
		if err := s.Save(Fields{InstalledVersion: String(v)}); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestConfigStore_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory where the document should be makes the rename fail.
	path := filepath.Join(dir, "launcher_config.json")
	if err := os.MkdirAll(filepath.Join(path, "occupied"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := New(path).Save(Fields{InstalledVersion: String("1.0.0")}); err == nil {
		t.Error("Save() expected error when path is a non-empty directory")
	}
}

func TestConfigStore_Backup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher_config.json")
	s := New(path)
	if _, err := s.Backup(); err == nil {
		t.Error("Backup() of missing document should fail")
	}
	if err := s.Save(Fields{InstalledVersion: String("1.0.0")}); err != nil {
		t.Fatal(err)
	}
	dst, err := s.Backup()
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if !strings.HasPrefix(dst, path+".") || !strings.HasSuffix(dst, ".bak") {
		t.Errorf("Backup() path = %q", dst)
	}
	orig, _ := os.ReadFile(path)
	bak, _ := os.ReadFile(dst)
	if string(orig) != string(bak) {
		t.Error("backup content differs from original")
	}
}
