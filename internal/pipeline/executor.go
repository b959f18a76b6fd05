package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sofalize/sofalize/internal/config"
	"github.com/sofalize/sofalize/internal/errors"
	"github.com/sofalize/sofalize/internal/ffmpeg"
	"github.com/sofalize/sofalize/internal/ffprobe"
	"github.com/sofalize/sofalize/internal/logging"
	"github.com/sofalize/sofalize/internal/reporter"
	"github.com/sofalize/sofalize/internal/workspace"
)

// InspectFunc queries metadata for the selected audio stream of a file.
// It is best-effort; ok is false when nothing useful could be read.
type InspectFunc func(path string, streamIndex int) (ffprobe.StreamInfo, bool)

// Executor runs the full transformation pipeline for a single file:
// extract, spatialize, measure, normalize, remux, and disposition fix.
type Executor struct {
	cfg     *config.Config
	ws      *workspace.Workspace
	runner  ffmpeg.Runner
	inspect InspectFunc
	log     *logging.Logger
	rep     reporter.Reporter
}

// NewExecutor builds an executor over a prepared workspace. The inspect
// function may be nil to skip stream preflight reporting.
func NewExecutor(cfg *config.Config, ws *workspace.Workspace, runner ffmpeg.Runner, inspect InspectFunc, rep reporter.Reporter) *Executor {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	return &Executor{
		cfg:     cfg,
		ws:      ws,
		runner:  runner,
		inspect: inspect,
		log:     ws.Log,
		rep:     rep,
	}
}

// Process runs one job to completion. Stage failures are contained here:
// the returned outcome reports them, and only cancellation propagates an
// error meant to stop the batch. A panic inside a stage is converted into
// a failed outcome so one broken file cannot take down the run.
func (e *Executor) Process(ctx context.Context, job Job) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Unexpected error while processing %s: %v", filepath.Base(job.Source), r)
			out = Outcome{
				Kind:   OutcomeFailed,
				Reason: fmt.Sprintf("unexpected error: %v", r),
			}
		}
	}()

	filename := filepath.Base(job.Source)
	e.log.Info("Processing: %s", filename)

	if e.outputExists(job) {
		e.log.Info("Output already exists, skipping: %s", filepath.Base(job.Output))
		return Outcome{Kind: OutcomeSkipped, Reason: "output already exists"}
	}

	e.preflight(job)

	if err := e.runStages(ctx, job); err != nil {
		if errors.IsCancelled(err) {
			return Outcome{Kind: OutcomeFailed, Reason: "cancelled", Err: err}
		}
		// Intermediates stay in the workspace so a failed stage can be
		// diagnosed from its inputs; the sweep runs only after success.
		e.reportFailure(job, err)
		return Outcome{Kind: OutcomeFailed, Reason: err.Error(), Err: err}
	}

	if e.cfg.DryRun {
		return Outcome{Kind: OutcomeSimulated, Reason: "dry run"}
	}

	e.cleanupIntermediates(job)
	e.log.Info("Completed: %s", filepath.Base(job.Output))
	return Outcome{Kind: OutcomeProcessed}
}

// outputExists reports whether the final artifact for this job is already
// present. Dry runs honor it too, so reruns stay idempotent either way.
func (e *Executor) outputExists(job Job) bool {
	_, err := os.Stat(job.Output)
	return err == nil
}

// preflight logs and reports the selected stream's metadata when available.
// Failures here never block processing; the engine gives the real verdict.
func (e *Executor) preflight(job Job) {
	if e.inspect == nil {
		return
	}
	info, ok := e.inspect(job.Source, e.cfg.StreamIndex)
	if !ok {
		e.log.Debug("No stream metadata available for %s", filepath.Base(job.Source))
		return
	}
	lines := info.Summary()
	for _, line := range lines {
		e.log.Info("  %s", line)
	}
	e.rep.StreamInfo(e.cfg.StreamIndex, lines)
}

// runStages walks the six pipeline stages in order, stopping at the first
// failure. All intermediate artifacts live in the workspace and are named
// after the job's base so they can be swept in one pass afterwards.
func (e *Executor) runStages(ctx context.Context, job Job) error {
	extracted := filepath.Join(e.ws.Dir, job.Base+".mkv")
	spatialized := filepath.Join(e.ws.Dir, job.Base+"_sofa.flac")
	normalized := filepath.Join(e.ws.Dir, job.Base+"_gain.flac")
	remuxed := filepath.Join(e.ws.Dir, job.Base+"_almost_done."+job.Ext)

	if err := e.extract(ctx, job, extracted); err != nil {
		return err
	}
	if err := e.spatialize(ctx, extracted, spatialized); err != nil {
		return err
	}

	mixed := spatialized
	if e.cfg.SkipNormalize {
		e.log.Info("Skipping volume normalization")
	} else {
		peak, err := e.measureVolume(ctx, spatialized)
		if err != nil {
			return err
		}
		if err := e.normalize(ctx, spatialized, normalized, peak); err != nil {
			return err
		}
		mixed = normalized
	}

	if err := e.remux(ctx, job, mixed, remuxed); err != nil {
		return err
	}
	return e.fixDisposition(ctx, remuxed, job.Output)
}

// extract copies the selected audio stream into a standalone Matroska file.
func (e *Executor) extract(ctx context.Context, job Job, dest string) error {
	e.rep.Stage(fmt.Sprintf("Extracting audio track %d", e.cfg.StreamIndex))
	_, err := e.runner.Run(ctx, ffmpeg.Invocation{
		Description: "extract audio track",
		Args: []string{
			"-v", e.cfg.Verbosity,
			"-i", job.Source,
			"-map", fmt.Sprintf("0:%d", e.cfg.StreamIndex),
			"-c:a", "copy",
			dest,
		},
	})
	return err
}

// spatialize applies the HRTF convolution filter. The invocation runs with
// the workspace as its working directory because the filter resolves the
// dataset path relative to it; input and output stay absolute.
func (e *Executor) spatialize(ctx context.Context, src, dest string) error {
	e.rep.Stage("Applying spatial audio filter")
	_, err := e.runner.Run(ctx, ffmpeg.Invocation{
		Description: "apply spatial audio filter",
		Dir:         e.ws.Dir,
		Args: []string{
			"-v", e.cfg.Verbosity,
			"-i", src,
			"-af", "sofalizer=sofa=" + e.ws.SOFAName,
			dest,
		},
	})
	return err
}

// measureVolume runs the loudness-detection pass and returns the measured
// peak in dB, or nil when the scraper saw no reading.
func (e *Executor) measureVolume(ctx context.Context, src string) (*float64, error) {
	e.rep.Stage("Measuring audio volume")
	res, err := e.runner.Run(ctx, ffmpeg.Invocation{
		Description: "measure audio volume",
		Args: []string{
			"-v", config.MeasureVerbosity,
			"-i", src,
			"-af", "volumedetect",
			"-f", "null",
			os.DevNull,
		},
	})
	if err != nil {
		return nil, err
	}
	return res.MaxVolume, nil
}

// normalize re-encodes the spatialized audio with a gain that brings the
// measured peak to 0 dBFS.
func (e *Executor) normalize(ctx context.Context, src, dest string, peak *float64) error {
	gain, measured := gainForPeak(peak)
	if !measured {
		// In a dry run there was no subprocess output to scrape, so the
		// missing reading is expected and not worth a warning.
		if !e.cfg.DryRun {
			e.log.Warn("No volume reading detected, applying neutral gain")
			e.rep.Warning("No volume reading detected, applying neutral gain")
		}
	} else {
		e.log.Info("Max volume: %.1f dB, applying gain: %s", *peak, gain)
	}
	e.rep.Stage("Normalizing volume (" + gain + ")")
	_, err := e.runner.Run(ctx, ffmpeg.Invocation{
		Description: "normalize volume",
		Args: []string{
			"-v", e.cfg.Verbosity,
			"-i", src,
			"-af", "volume=" + gain,
			"-c:a", "flac",
			dest,
		},
	})
	return err
}

// remux replaces the original audio with the processed track while copying
// every original stream through untouched.
func (e *Executor) remux(ctx context.Context, job Job, audio, dest string) error {
	e.rep.Stage("Muxing processed audio with original streams")
	_, err := e.runner.Run(ctx, ffmpeg.Invocation{
		Description: "remux processed audio",
		Args: []string{
			"-v", e.cfg.Verbosity,
			"-i", job.Source,
			"-i", audio,
			"-map", "1:a",
			"-map", "0",
			"-c", "copy",
			"-max_interleave_delta", "0",
			"-y", dest,
		},
	})
	return err
}

// fixDisposition clears every audio default flag and marks the processed
// track (now first) as the default, writing the final artifact.
func (e *Executor) fixDisposition(ctx context.Context, src, dest string) error {
	e.rep.Stage("Setting processed audio as default track")
	_, err := e.runner.Run(ctx, ffmpeg.Invocation{
		Description: "set default audio track",
		Args: []string{
			"-v", e.cfg.Verbosity,
			"-i", src,
			"-map", "0",
			"-c", "copy",
			"-disposition:a", "0",
			"-disposition:a:0", "default",
			"-y", dest,
		},
	})
	return err
}

// cleanupIntermediates sweeps this job's workspace artifacts. The dataset
// copy and run log never match the job-base glob, so they survive for the
// rest of the batch.
func (e *Executor) cleanupIntermediates(job Job) {
	if e.cfg.KeepTemp || e.cfg.DryRun {
		return
	}
	matches, err := filepath.Glob(filepath.Join(e.ws.Dir, job.Base+"*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			e.log.Debug("Could not remove intermediate %s: %v", filepath.Base(m), err)
		}
	}
}

// gainForPeak converts a measured peak into the gain filter value that
// raises it to 0 dBFS. A nil peak yields a neutral gain.
func gainForPeak(peak *float64) (gain string, measured bool) {
	if peak == nil {
		return "0.0dB", false
	}
	g := -*peak
	if g == 0 {
		g = 0 // normalize -0.0
	}
	return fmt.Sprintf("%.1fdB", g), true
}

// reportFailure logs a stage error and hands it to the reporter with the
// captured diagnostic tail, when there is one.
func (e *Executor) reportFailure(job Job, err error) {
	filename := filepath.Base(job.Source)
	e.log.Error("Failed to process %s: %v", filename, err)
	report := reporter.ErrorReport{
		Title:   "Processing failed",
		Message: err.Error(),
		Context: filename,
	}
	if tool, ok := errors.AsTool(err); ok {
		report.Suggestion = tool.TailOutput()
	}
	e.rep.Error(report)
}
