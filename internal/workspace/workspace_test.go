package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sofalize/sofalize/internal/config"
	"github.com/sofalize/sofalize/internal/util"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	input := t.TempDir()
	output := filepath.Join(t.TempDir(), "out")
	sofa := filepath.Join(t.TempDir(), "hrtf.sofa")
	if err := os.WriteFile(sofa, []byte("dataset"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig(input, output)
	cfg.SOFAFile = sofa
	cfg.Extensions = []string{"mkv"}
	return cfg
}

func TestSetupCreatesWorkspace(t *testing.T) {
	cfg := testConfig(t)

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer ws.Preserve()

	if !util.DirectoryExists(ws.Dir) {
		t.Error("expected scratch directory to exist")
	}
	if ws.Dir != filepath.Join(cfg.OutputDir, "temp") {
		t.Errorf("unexpected scratch dir: %s", ws.Dir)
	}
	if !util.FileExists(filepath.Join(ws.Dir, "hrtf.sofa")) {
		t.Error("expected SOFA copy inside the workspace")
	}
	if ws.SOFAName != "hrtf.sofa" {
		t.Errorf("SOFAName = %q, want hrtf.sofa", ws.SOFAName)
	}
	if !util.FileExists(filepath.Join(ws.Dir, LogFileName)) {
		t.Error("expected run log inside the workspace")
	}
}

func TestSetupDestroysLeftoverScratch(t *testing.T) {
	cfg := testConfig(t)

	stale := filepath.Join(cfg.OutputDir, "temp")
	if err := os.MkdirAll(stale, 0755); err != nil {
		t.Fatal(err)
	}
	staleFile := filepath.Join(stale, "leftover.flac")
	if err := os.WriteFile(staleFile, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer ws.Preserve()

	if util.FileExists(staleFile) {
		t.Error("expected leftover intermediates to be destroyed")
	}
}

func TestSetupRejectsConcurrentRun(t *testing.T) {
	cfg := testConfig(t)

	first, err := Setup(cfg)
	if err != nil {
		t.Fatalf("first Setup failed: %v", err)
	}
	defer first.Preserve()

	if _, err := Setup(cfg); err == nil {
		t.Error("expected second Setup on the same output directory to fail")
	}
}

func TestTeardownKeepTemp(t *testing.T) {
	cfg := testConfig(t)
	cfg.KeepTemp = true

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Teardown(cfg); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if !util.DirectoryExists(ws.Dir) {
		t.Error("keep-temp teardown must preserve the scratch tree")
	}
}

func TestTeardownRemoveMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.CleanupMode = config.CleanupRemove

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Teardown(cfg); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if util.DirectoryExists(ws.Dir) {
		t.Error("remove teardown must delete the scratch tree")
	}
}

func TestTeardownKeepMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.CleanupMode = config.CleanupKeep

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Teardown(cfg); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if !util.DirectoryExists(ws.Dir) {
		t.Error("keep teardown must preserve the scratch tree")
	}
}

func TestTeardownPromptNonInteractiveKeeps(t *testing.T) {
	cfg := testConfig(t)

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ws.interactive = func() bool { return false }

	if err := ws.Teardown(cfg); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if !util.DirectoryExists(ws.Dir) {
		t.Error("non-interactive prompt teardown must preserve the scratch tree")
	}
}

func TestTeardownPromptConfirmed(t *testing.T) {
	cfg := testConfig(t)

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ws.interactive = func() bool { return true }
	ws.promptIn = strings.NewReader("y\n")
	var out strings.Builder
	ws.promptOut = &out

	if err := ws.Teardown(cfg); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if util.DirectoryExists(ws.Dir) {
		t.Error("confirmed prompt teardown must delete the scratch tree")
	}
	if !strings.Contains(out.String(), "Remove temporary files") {
		t.Errorf("expected a confirmation prompt, got %q", out.String())
	}
}

func TestTeardownPromptDeclined(t *testing.T) {
	cfg := testConfig(t)

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ws.interactive = func() bool { return true }
	ws.promptIn = strings.NewReader("n\n")
	ws.promptOut = &strings.Builder{}

	if err := ws.Teardown(cfg); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if !util.DirectoryExists(ws.Dir) {
		t.Error("declined prompt teardown must preserve the scratch tree")
	}
}

func TestTeardownDryRunKeeps(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true
	cfg.CleanupMode = config.CleanupRemove

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Teardown(cfg); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if !util.DirectoryExists(ws.Dir) {
		t.Error("dry-run teardown must never delete anything")
	}
}

func TestPreserveKeepsTreeAndReleasesLock(t *testing.T) {
	cfg := testConfig(t)

	ws, err := Setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ws.Preserve()

	if !util.DirectoryExists(ws.Dir) {
		t.Error("Preserve must keep the scratch tree")
	}

	// Lock must be free for a subsequent run.
	next, err := Setup(cfg)
	if err != nil {
		t.Fatalf("expected lock to be released, got %v", err)
	}
	next.Preserve()
}
