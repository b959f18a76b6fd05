// Package workspace owns the scratch directory lifecycle for a batch run.
package workspace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"github.com/sofalize/sofalize/internal/config"
	"github.com/sofalize/sofalize/internal/errors"
	"github.com/sofalize/sofalize/internal/logging"
	"github.com/sofalize/sofalize/internal/util"
)

// LogFileName is the run log inside the scratch directory.
const LogFileName = "processing.log"

// lockFileName guards the output directory against concurrent runs. It sits
// outside the scratch directory so it survives the destroy-and-recreate on
// setup.
const lockFileName = ".sofalize.lock"

// Workspace is the scratch directory tree under the output location. It
// holds a copy of the HRTF dataset, the run log, and per-job intermediates.
type Workspace struct {
	// Dir is the scratch directory path.
	Dir string

	// SOFAName is the basename of the dataset copy inside Dir.
	SOFAName string

	// Log is the file-backed run logger, open for the workspace lifetime.
	Log *logging.Logger

	lock     *flock.Flock
	lockPath string

	// Prompt plumbing, overridable in tests.
	promptIn    io.Reader
	promptOut   io.Writer
	interactive func() bool
}

// Setup creates the output directory (idempotently) and a fresh scratch
// subdirectory, destroying any leftover from a prior run. The HRTF dataset
// is copied in once, since the engine resolves filter dataset paths relative
// to its working context.
func Setup(cfg *config.Config) (*Workspace, error) {
	if err := util.EnsureDirectory(cfg.OutputDir); err != nil {
		return nil, errors.NewIOError("failed to create output directory", err)
	}

	lockPath := filepath.Join(cfg.OutputDir, lockFileName)
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.NewWorkspaceError("failed to lock workspace", err)
	}
	if !locked {
		return nil, errors.NewWorkspaceError(
			fmt.Sprintf("another sofalize run owns %s", cfg.OutputDir), nil)
	}

	dir := filepath.Join(cfg.OutputDir, config.WorkspaceDirName)
	hadLeftover := util.DirectoryExists(dir)
	if hadLeftover {
		if err := os.RemoveAll(dir); err != nil {
			_ = lock.Unlock()
			return nil, errors.NewIOError("failed to remove existing temp folder", err)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		_ = lock.Unlock()
		return nil, errors.NewIOError("failed to create temp folder", err)
	}

	log, err := logging.Open(filepath.Join(dir, LogFileName), cfg.Verbose)
	if err != nil {
		_ = lock.Unlock()
		return nil, errors.NewIOError("failed to open run log", err)
	}

	log.Info("Workspace: %s", dir)
	if hadLeftover {
		log.Warn("Removed existing temp folder from a prior run")
	}

	sofaName := filepath.Base(cfg.SOFAFile)
	if err := util.CopyFile(cfg.SOFAFile, filepath.Join(dir, sofaName)); err != nil {
		_ = log.Close()
		_ = lock.Unlock()
		return nil, errors.NewIOError("failed to copy SOFA file into workspace", err)
	}
	log.Info("Copied SOFA file to: %s", filepath.Join(dir, sofaName))

	return &Workspace{
		Dir:       dir,
		SOFAName:  sofaName,
		Log:       log,
		lock:      lock,
		lockPath:  lockPath,
		promptIn:  os.Stdin,
		promptOut: os.Stdout,
		interactive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}, nil
}

// Teardown finishes the run. The scratch tree is preserved for keep-temp and
// dry-run, deleted for cleanup mode remove, and otherwise removed only after
// an explicit confirmation on an interactive terminal.
func (w *Workspace) Teardown(cfg *config.Config) error {
	defer w.release()

	switch {
	case cfg.KeepTemp:
		w.Log.Info("Keeping temporary files in: %s", w.Dir)
		return w.Log.Close()
	case cfg.DryRun:
		w.Log.Info("[DRY RUN] Would remove temporary files")
		return w.Log.Close()
	}

	switch cfg.CleanupMode {
	case config.CleanupKeep:
		w.Log.Info("Temporary files kept in: %s", w.Dir)
		return w.Log.Close()
	case config.CleanupRemove:
		_ = w.Log.Close()
		return os.RemoveAll(w.Dir)
	default: // config.CleanupPrompt
		if !w.interactive() {
			w.Log.Info("Non-interactive session, temporary files kept in: %s", w.Dir)
			return w.Log.Close()
		}
		if !w.confirmRemoval() {
			w.Log.Info("Temporary files kept in: %s", w.Dir)
			return w.Log.Close()
		}
		_ = w.Log.Close()
		return os.RemoveAll(w.Dir)
	}
}

// Preserve closes the workspace without touching the scratch tree. Used on
// interrupt so no in-flight work is silently destroyed.
func (w *Workspace) Preserve() {
	w.Log.Warn("Run interrupted, temporary files are in: %s", w.Dir)
	_ = w.Log.Close()
	w.release()
}

func (w *Workspace) release() {
	if w.lock != nil {
		_ = w.lock.Unlock()
		_ = os.Remove(w.lockPath)
		w.lock = nil
	}
}

func (w *Workspace) confirmRemoval() bool {
	_, _ = fmt.Fprintf(w.promptOut, "\nRemove temporary files in %s? [y/N]: ", w.Dir)
	reader := bufio.NewReader(w.promptIn)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
