package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xynnet/client-launcher/internal/update"
	"gopkg.in/yaml.v3"
)

func TestComputeStatus_Fresh(t *testing.T) {
	env := newTestDeps(t, "text")
	install := t.TempDir()
	env.launcher.local.GameDirectory = install
	env.launcher.local.InstalledVersion = "1.0.0"
	env.checker.latest = "1.1.0"
	env.probe.running = true
	exe := filepath.Join(install, "bin", "client.exe")
	env.d.Find = func(root, name string) (string, error) { return exe, nil }

	res := computeStatus(context.Background(), env.d, false)
	if !res.ServerReachable || !res.UpdateAvailable || res.LatestVersion != "1.1.0" {
		t.Errorf("version fields = %+v", res)
	}
	if res.FromCache {
		t.Error("first status must not come from cache")
	}
	if res.ExecutablePath != exe || !res.ClientRunning {
		t.Errorf("install fields = %+v", res)
	}
	if _, err := update.LoadCache(env.d.Cfg.WorkDir); err != nil {
		t.Errorf("check not cached: %v", err)
	}
}

func TestComputeStatus_UsesCache(t *testing.T) {
	env := newTestDeps(t, "text")
	env.launcher.local.InstalledVersion = "1.0.0"
	if err := update.SaveCache(env.d.Cfg.WorkDir, &update.CacheEntry{
		CheckedAt:       time.Now(),
		LocalVersion:    "1.0.0",
		LatestVersion:   "1.2.0",
		UpdateAvailable: true,
	}); err != nil {
		t.Fatal(err)
	}

	res := computeStatus(context.Background(), env.d, false)
	if !res.FromCache || res.LatestVersion != "1.2.0" || env.checker.calls != 0 {
		t.Errorf("res = %+v, calls = %d", res, env.checker.calls)
	}

	res = computeStatus(context.Background(), env.d, true)
	if res.FromCache || env.checker.calls != 1 {
		t.Errorf("refresh ignored: %+v", res)
	}
}

func TestComputeStatus_StaleCacheIgnored(t *testing.T) {
	tests := []struct {
		name  string
		entry update.CacheEntry
	}{
		{"expired", update.CacheEntry{CheckedAt: time.Now().Add(-time.Hour), LocalVersion: "1.0.0", LatestVersion: "9.9.9"}},
		{"other local version", update.CacheEntry{CheckedAt: time.Now(), LocalVersion: "0.9.0", LatestVersion: "9.9.9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestDeps(t, "text")
			env.launcher.local.InstalledVersion = "1.0.0"
			entry := tt.entry
			if err := update.SaveCache(env.d.Cfg.WorkDir, &entry); err != nil {
				t.Fatal(err)
			}
			res := computeStatus(context.Background(), env.d, false)
			if res.FromCache || res.LatestVersion != "1.0.0" {
				t.Errorf("res = %+v", res)
			}
		})
	}
}

func TestComputeStatus_Unreachable(t *testing.T) {
	env := newTestDeps(t, "text")
	env.checker.err = fmt.Errorf("%w: no route", update.ErrNotAvailable)

	res := computeStatus(context.Background(), env.d, true)
	if res.ServerReachable || res.UpdateAvailable || res.Error == "" {
		t.Errorf("res = %+v", res)
	}
}

func TestComputeStatus_OrderingWarningAndMarker(t *testing.T) {
	env := newTestDeps(t, "text")
	install := t.TempDir()
	env.launcher.local.GameDirectory = install
	env.launcher.local.InstalledVersion = "9.0.0"
	env.checker.latest = "10.0.0"
	done := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b, _ := json.Marshal(update.Marker{Entries: 3, CompletedAt: done})
	if err := os.WriteFile(update.MarkerPath(install), b, 0o644); err != nil {
		t.Fatal(err)
	}

	res := computeStatus(context.Background(), env.d, true)
	if res.UpdateAvailable {
		t.Error("byte-wise ordering must not report 10.0.0 as newer than 9.0.0")
	}
	if res.OrderingWarning == "" {
		t.Error("expected ordering warning")
	}
	if res.LastUpdate == nil || !res.LastUpdate.Equal(done) {
		t.Errorf("last update = %v", res.LastUpdate)
	}
}

func TestHandleStatus_Text(t *testing.T) {
	env := newTestDeps(t, "text")
	env.launcher.local.InstalledVersion = "1.0.0"
	env.checker.latest = "1.1.0"

	if err := handleStatus(context.Background(), env.d, true); err != nil {
		t.Fatalf("handleStatus: %v", err)
	}
	out := env.out.String()
	for _, want := range []string{"CLIENT STATUS", "not selected", "Installed: 1.0.0", "Latest: 1.1.0", "Update required"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHandleStatus_YAML(t *testing.T) {
	env := newTestDeps(t, "yaml")
	env.launcher.local.InstalledVersion = "1.1.0"
	env.checker.latest = "1.1.0"

	if err := handleStatus(context.Background(), env.d, true); err != nil {
		t.Fatalf("handleStatus: %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(env.out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", env.out.String(), err)
	}
	if got["installed_version"] != "1.1.0" || got["update_available"] != false || got["server_reachable"] != true {
		t.Errorf("status = %v", got)
	}
}
