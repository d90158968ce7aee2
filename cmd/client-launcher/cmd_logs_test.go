package main

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/xynnet/client-launcher/internal/exitcodes"
	ui "github.com/xynnet/client-launcher/internal/ui"
)

func TestHandleLogs(t *testing.T) {
	env := newTestDeps(t, "text")
	lines := []string{
		`{"level":"info","run_id":"r1","message":"version checked"}`,
		`{"level":"info","run_id":"r1","message":"client started"}`,
	}
	if err := os.WriteFile(env.d.Cfg.LogPath(), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := handleLogs(context.Background(), env.d, ui.LogViewOptions{Lines: 1, Raw: true}); err != nil {
		t.Fatalf("handleLogs: %v", err)
	}
	out := env.out.String()
	if strings.Contains(out, "version checked") || !strings.Contains(out, "client started") {
		t.Errorf("output = %q", out)
	}
}

func TestHandleLogs_Missing(t *testing.T) {
	env := newTestDeps(t, "text")
	err := handleLogs(context.Background(), env.d, ui.LogViewOptions{})
	if got := exitcodes.CodeForError(err); got != exitcodes.NotFound {
		t.Fatalf("code = %d (%v)", got, err)
	}
}
