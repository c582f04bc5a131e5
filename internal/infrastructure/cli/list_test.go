package cli

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/doorman-bot/doorman/internal/infrastructure/wiring"
)

func TestPrintRoster_EmptyAndPopulated(t *testing.T) {
	workspace, err := wiring.NewWorkspace(t.TempDir(), slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printRoster(&buf, workspace)
	if !strings.Contains(buf.String(), "No members") {
		t.Fatalf("empty roster message expected, got %q", buf.String())
	}

	if _, err := workspace.Grants.Extend(42, "alice", 3); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	printRoster(&buf, workspace)
	out := buf.String()
	if !strings.Contains(out, "@alice") {
		t.Errorf("member missing from listing: %q", out)
	}
	if !strings.Contains(out, "Active (1)") {
		t.Errorf("active section missing: %q", out)
	}
}

func TestResolveDataDir_FlagWins(t *testing.T) {
	dataDir = "/tmp/explicit"
	defer func() { dataDir = "" }()

	if got := resolveDataDir(); got != "/tmp/explicit" {
		t.Fatalf("flag must win, got %q", got)
	}
}

func TestResolveDataDir_FallsBackToDefault(t *testing.T) {
	dataDir = ""
	configPath = "/nonexistent/config.yaml"

	if got := resolveDataDir(); got != "data" {
		t.Fatalf("expected stock data dir, got %q", got)
	}
}
