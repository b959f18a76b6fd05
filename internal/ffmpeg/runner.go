// Package ffmpeg orchestrates external engine invocations for sofalize.
//
// The engine is always spawned as a subprocess; this package never does any
// signal processing itself. Stdout and stderr are merged into one stream and
// scanned line by line for loudness statistics.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sofalize/sofalize/internal/errors"
	"github.com/sofalize/sofalize/internal/logging"
)

const (
	// BinaryName is the external engine executable.
	BinaryName = "ffmpeg"

	// ProbeBinaryName is the companion metadata query executable.
	ProbeBinaryName = "ffprobe"

	// TailLines is how many trailing output lines are retained for
	// diagnostics when an invocation fails.
	TailLines = 10
)

// Invocation describes one engine call.
type Invocation struct {
	// Args is the full argument list, excluding the binary name.
	Args []string

	// Description is a human-readable label for logging.
	Description string

	// Dir is the working directory for the subprocess. Empty means
	// inherit. The spatialize stage sets this to the workspace so the
	// engine resolves the dataset file by basename.
	Dir string
}

// StageResult is the outcome of one engine invocation.
type StageResult struct {
	// MaxVolume is the measured peak loudness in dB, when the output
	// carried one.
	MaxVolume *float64

	// ExitCode is the subprocess exit status.
	ExitCode int
}

// Runner launches engine invocations. Implementations block until the
// subprocess exits.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (StageResult, error)
}

// ExecRunner spawns real engine subprocesses.
type ExecRunner struct {
	// Binary overrides the engine executable. Empty means BinaryName.
	Binary string

	// Parser extracts loudness values from output lines. Nil means the
	// volumedetect parser for the current engine format.
	Parser OutputParser

	// Log receives the invocation line and the engine's full output.
	Log *logging.Logger
}

// NewExecRunner creates a runner for the standard engine binary.
func NewExecRunner(log *logging.Logger) *ExecRunner {
	return &ExecRunner{Parser: NewVolumeDetectParser(), Log: log}
}

// Run spawns the engine, streams its merged output line by line, and blocks
// until it exits. On non-zero exit the last TailLines lines are logged and
// returned inside the error.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (StageResult, error) {
	binary := r.Binary
	if binary == "" {
		binary = BinaryName
	}
	parser := r.Parser
	if parser == nil {
		parser = NewVolumeDetectParser()
	}

	if inv.Description != "" {
		r.Log.Info("Running: %s", inv.Description)
	}
	r.Log.Debug("Command: %s %s", binary, strings.Join(inv.Args, " "))

	cmd := exec.CommandContext(ctx, binary, inv.Args...)
	cmd.Dir = inv.Dir

	pr, pw, err := os.Pipe()
	if err != nil {
		return StageResult{}, errors.NewIOError("failed to create output pipe", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return StageResult{}, errors.WrapExecError(binary, err, nil)
	}
	// The child holds its own copy of the write end.
	_ = pw.Close()

	var maxVolume *float64
	tail := make([]string, 0, TailLines)
	logWriter := r.Log.Writer()

	scanOutput(pr, func(line string) {
		_, _ = fmt.Fprintln(logWriter, line)
		if v, ok := parser.Parse(line); ok {
			vol := v
			maxVolume = &vol
		}
		if len(tail) == TailLines {
			copy(tail, tail[1:])
			tail = tail[:TailLines-1]
		}
		tail = append(tail, line)
	})
	_ = pr.Close()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return StageResult{}, errors.NewCancelledError()
		}
		r.Log.Error("Command failed: %s", inv.Description)
		r.Log.Error("Last %d lines of output:", len(tail))
		for _, line := range tail {
			r.Log.Error("  %s", line)
		}
		return StageResult{ExitCode: cmd.ProcessState.ExitCode()},
			errors.WrapExecError(binary, err, append([]string(nil), tail...))
	}

	return StageResult{MaxVolume: maxVolume, ExitCode: 0}, nil
}

// scanOutput splits the merged stream on \n and \r. The engine rewrites its
// statistics line in place with bare carriage returns, so a plain line
// scanner would buffer them until exit.
func scanOutput(r io.Reader, fn func(line string)) {
	reader := bufio.NewReader(r)
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			fn(buf.String())
			buf.Reset()
		}
	}

	for {
		b, err := reader.ReadByte()
		if err != nil {
			flush()
			return
		}
		if b == '\n' || b == '\r' {
			flush()
			continue
		}
		buf.WriteByte(b)
	}
}

// DryRunner logs would-be invocations without spawning anything.
type DryRunner struct {
	Log *logging.Logger

	// Invocations records every call, for the dry-run summary.
	Invocations []Invocation
}

// Run logs the invocation and reports success without side effects.
func (r *DryRunner) Run(_ context.Context, inv Invocation) (StageResult, error) {
	if inv.Description != "" {
		r.Log.Info("Running: %s", inv.Description)
	}
	r.Log.Info("[DRY RUN] Would execute: %s %s", BinaryName, strings.Join(inv.Args, " "))
	r.Invocations = append(r.Invocations, inv)
	return StageResult{ExitCode: 0}, nil
}

// CheckAvailable verifies the engine and its probe companion are on PATH.
// A missing probe binary only degrades advisory logging, so it is reported
// separately.
func CheckAvailable() (probeOK bool, err error) {
	if _, err := exec.LookPath(BinaryName); err != nil {
		return false, errors.NewToolStartError(BinaryName, err)
	}
	_, probeErr := exec.LookPath(ProbeBinaryName)
	return probeErr == nil, nil
}
