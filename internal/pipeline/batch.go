package pipeline

import (
	"context"
	"path/filepath"

	"github.com/sofalize/sofalize/internal/config"
	"github.com/sofalize/sofalize/internal/discovery"
	"github.com/sofalize/sofalize/internal/errors"
	"github.com/sofalize/sofalize/internal/logging"
	"github.com/sofalize/sofalize/internal/reporter"
)

// Stats counts job outcomes for one batch run.
type Stats struct {
	Processed int
	Failed    int
	Skipped   int
	Simulated int
}

// Total returns the number of jobs that reached an outcome.
func (s Stats) Total() int {
	return s.Processed + s.Failed + s.Skipped + s.Simulated
}

// Coordinator discovers candidate files and runs them through the executor
// one at a time, isolating failures so the batch always finishes unless it
// is cancelled.
type Coordinator struct {
	cfg  *config.Config
	exec *Executor
	log  *logging.Logger
	rep  reporter.Reporter
}

// NewCoordinator builds a coordinator around a prepared executor.
func NewCoordinator(cfg *config.Config, exec *Executor, log *logging.Logger, rep reporter.Reporter) *Coordinator {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	return &Coordinator{cfg: cfg, exec: exec, log: log, rep: rep}
}

// Run discovers and processes the batch. An empty input directory is a
// warning, not an error. The only error Run returns is cancellation, which
// aborts between files or mid-stage; everything else lands in the stats.
func (c *Coordinator) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	files, err := discovery.FindCandidates(c.cfg.InputDir, c.cfg.Extensions)
	if err != nil {
		return stats, errors.NewIOError("cannot scan input directory", err)
	}
	if len(files) == 0 {
		c.log.Warn("No matching files found in %s", c.cfg.InputDir)
		c.rep.Warning("No matching files found in " + c.cfg.InputDir)
		return stats, nil
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	c.log.Info("Found %d file(s) to process", len(files))
	c.rep.BatchStarted(reporter.BatchInfo{
		TotalFiles: len(files),
		FileList:   names,
		OutputDir:  c.cfg.OutputDir,
		DryRun:     c.cfg.DryRun,
	})

	results := make([]reporter.FileResult, 0, len(files))
	for i, f := range files {
		if ctx.Err() != nil {
			c.log.Warn("Cancelled after %d of %d file(s)", i, len(files))
			return stats, errors.NewCancelledError()
		}

		c.rep.FileStarted(reporter.FileContext{
			CurrentFile: i + 1,
			TotalFiles:  len(files),
			Filename:    names[i],
		})

		job := NewJob(f, c.cfg.OutputDir)
		out := c.exec.Process(ctx, job)
		if out.Err != nil && errors.IsCancelled(out.Err) {
			c.log.Warn("Cancelled while processing %s", names[i])
			return stats, errors.NewCancelledError()
		}

		switch out.Kind {
		case OutcomeProcessed:
			stats.Processed++
		case OutcomeFailed:
			stats.Failed++
		case OutcomeSkipped:
			stats.Skipped++
		case OutcomeSimulated:
			stats.Simulated++
		}

		result := reporter.FileResult{
			Filename: names[i],
			Outcome:  out.Kind.String(),
			Detail:   out.Reason,
			Output:   job.Output,
		}
		results = append(results, result)
		c.rep.FileComplete(result)
	}

	c.log.Info("Batch complete: %d processed, %d failed, %d skipped, %d simulated",
		stats.Processed, stats.Failed, stats.Skipped, stats.Simulated)
	c.rep.BatchComplete(reporter.Summary{
		Processed: stats.Processed,
		Failed:    stats.Failed,
		Skipped:   stats.Skipped,
		Simulated: stats.Simulated,
		Results:   results,
	})
	return stats, nil
}
