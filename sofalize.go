// Package sofalize provides a Go library for batch HRTF spatialization of
// video audio tracks with FFmpeg.
//
// Sofalize walks a directory of video files, runs the selected audio stream
// of each through FFmpeg's sofalizer filter, normalizes the result to peak
// loudness, and remuxes it back as the default track of a new file next to
// the original streams.
//
// Basic usage:
//
//	proc, err := sofalize.New("videos/", "videos/processed/",
//	    sofalize.WithExtensions("mkv", "mp4"),
//	    sofalize.WithStreamIndex(1),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stats, err := proc.Run(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Processed %d file(s), %d failed\n", stats.Processed, stats.Failed)
package sofalize

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sofalize/sofalize/internal/config"
	"github.com/sofalize/sofalize/internal/errors"
	"github.com/sofalize/sofalize/internal/ffmpeg"
	"github.com/sofalize/sofalize/internal/ffprobe"
	"github.com/sofalize/sofalize/internal/pipeline"
	"github.com/sofalize/sofalize/internal/reporter"
	"github.com/sofalize/sofalize/internal/util"
	"github.com/sofalize/sofalize/internal/workspace"
)

// Version is the sofalize release version.
const Version = "2.0.0"

// Stats counts job outcomes for one batch run.
type Stats = pipeline.Stats

// Reporter receives progress events during a run. Pass nil to Run for a
// silent run; see the reporter package for the terminal implementation.
type Reporter = reporter.Reporter

// CleanupMode controls what happens to the scratch directory after a run.
type CleanupMode = config.CleanupMode

const (
	CleanupPrompt = config.CleanupPrompt
	CleanupKeep   = config.CleanupKeep
	CleanupRemove = config.CleanupRemove
)

// ParseCleanupMode converts a cleanup mode string to a CleanupMode value.
// Valid values are "prompt", "keep", and "remove" (case-insensitive).
func ParseCleanupMode(s string) (CleanupMode, error) {
	return config.ParseCleanupMode(s)
}

// IsCancelled reports whether an error from Run was caused by context
// cancellation rather than a hard failure.
func IsCancelled(err error) bool {
	return errors.IsCancelled(err)
}

// Processor is the main entry point for batch spatialization.
type Processor struct {
	config *config.Config
}

// Option configures the processor.
type Option func(*config.Config)

// New creates a Processor for the given input and output directories.
// Both paths are resolved to absolute form so subprocess working-directory
// changes cannot reinterpret them.
func New(inputDir, outputDir string, opts ...Option) (*Processor, error) {
	absIn, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, errors.NewPathError("cannot resolve input directory: " + inputDir)
	}
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, errors.NewPathError("cannot resolve output directory: " + outputDir)
	}

	cfg := config.NewConfig(absIn, absOut)
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.ConfigFile != "" {
		fileCfg, err := config.LoadFile(cfg.ConfigFile, true)
		if err != nil {
			return nil, err
		}
		if err := fileCfg.Apply(cfg); err != nil {
			return nil, err
		}
	}

	// The dataset ships next to the binary, so a relative path resolves
	// there rather than against the current directory.
	if !filepath.IsAbs(cfg.SOFAFile) {
		cfg.SOFAFile = filepath.Join(util.ExecutableDir(), cfg.SOFAFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Processor{config: cfg}, nil
}

// WithExtensions sets the file extensions to match in the input directory.
func WithExtensions(exts ...string) Option {
	return func(c *config.Config) {
		c.Extensions = exts
	}
}

// WithStreamIndex selects which input stream carries the audio to process.
func WithStreamIndex(index int) Option {
	return func(c *config.Config) {
		c.StreamIndex = index
	}
}

// WithSOFAFile sets the HRTF dataset file applied by the spatial filter.
// A relative path resolves next to the executable.
func WithSOFAFile(path string) Option {
	return func(c *config.Config) {
		c.SOFAFile = path
	}
}

// WithConfigFile loads a TOML configuration file whose values fill in any
// setting not given explicitly through another option.
func WithConfigFile(path string) Option {
	return func(c *config.Config) {
		c.ConfigFile = path
	}
}

// WithVerbosity sets the FFmpeg log verbosity for processing stages.
func WithVerbosity(v string) Option {
	return func(c *config.Config) {
		c.Verbosity = v
	}
}

// WithKeepTemp preserves the scratch directory after the run.
func WithKeepTemp() Option {
	return func(c *config.Config) {
		c.KeepTemp = true
	}
}

// WithDryRun walks every stage and logs the would-be FFmpeg commands
// without launching any subprocess or writing any output.
func WithDryRun() Option {
	return func(c *config.Config) {
		c.DryRun = true
	}
}

// WithSkipNormalize bypasses the loudness measurement and gain stages.
func WithSkipNormalize() Option {
	return func(c *config.Config) {
		c.SkipNormalize = true
	}
}

// WithVerbose enables debug-level entries in the run log.
func WithVerbose() Option {
	return func(c *config.Config) {
		c.Verbose = true
	}
}

// WithCleanupMode sets the scratch directory policy for the end of the run.
func WithCleanupMode(mode CleanupMode) Option {
	return func(c *config.Config) {
		c.CleanupMode = mode
	}
}

// Run processes every matching file in the input directory. Individual file
// failures are contained and counted; Run itself fails only when the
// workspace cannot be set up or the context is cancelled. On cancellation
// the scratch directory is preserved so in-flight work can be inspected.
func (p *Processor) Run(ctx context.Context, rep Reporter) (Stats, error) {
	var stats Stats

	if rep == nil {
		rep = reporter.NullReporter{}
	}

	ws, err := workspace.Setup(p.config)
	if err != nil {
		return stats, err
	}

	ws.Log.Info("Input directory: %s", p.config.InputDir)
	ws.Log.Info("Output directory: %s", p.config.OutputDir)
	ws.Log.Info("Extensions: %s", strings.Join(p.config.Extensions, ", "))
	ws.Log.Info("Audio stream index: %d", p.config.StreamIndex)
	ws.Log.Info("SOFA file: %s", p.config.SOFAFile)
	if p.config.SkipNormalize {
		ws.Log.Warn("Volume normalization DISABLED - output will likely be too quiet")
		rep.Warning("Volume normalization DISABLED - output will likely be too quiet")
	}

	var runner ffmpeg.Runner
	if p.config.DryRun {
		runner = &ffmpeg.DryRunner{Log: ws.Log}
	} else {
		runner = ffmpeg.NewExecRunner(ws.Log)
	}

	exec := pipeline.NewExecutor(p.config, ws, runner, ffprobe.Inspect, rep)
	coord := pipeline.NewCoordinator(p.config, exec, ws.Log, rep)

	stats, err = coord.Run(ctx)
	if err != nil {
		if errors.IsCancelled(err) {
			ws.Preserve()
			return stats, err
		}
		_ = ws.Teardown(p.config)
		return stats, err
	}

	if err := ws.Teardown(p.config); err != nil {
		return stats, errors.NewIOError("failed to clean up workspace", err)
	}
	return stats, nil
}
