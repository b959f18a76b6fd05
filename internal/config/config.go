// Package config provides configuration types and validation for sofalize.
package config

import (
	"fmt"
	"strings"

	"github.com/sofalize/sofalize/internal/util"
)

// Default constants
const (
	// DefaultSOFAFile is the bundled reference HRTF dataset.
	DefaultSOFAFile = "irc_1003.sofa"

	// DefaultVerbosity is the engine verbosity used for processing stages.
	DefaultVerbosity = "repeat+24"

	// MeasureVerbosity is the fixed verbosity for the loudness-detection
	// stage. The volume statistics are emitted on the diagnostic stream, so
	// this must stay noisy enough for the scraper to see them.
	MeasureVerbosity = "repeat+32"

	// OutputSuffix is inserted before the extension of every output file.
	OutputSuffix = "(sofa)"

	// WorkspaceDirName is the scratch subdirectory under the output folder.
	WorkspaceDirName = "temp"
)

// Verbosities is the set of accepted engine verbosity levels.
var Verbosities = []string{
	"quiet", "panic", "fatal", "error", "warning",
	"info", "verbose", "debug", "repeat+24", "repeat+32",
}

// CleanupMode controls what happens to the scratch workspace at the end of
// a run.
type CleanupMode string

const (
	// CleanupPrompt asks for confirmation on an interactive terminal and
	// keeps the workspace otherwise.
	CleanupPrompt CleanupMode = "prompt"
	// CleanupKeep always preserves the workspace.
	CleanupKeep CleanupMode = "keep"
	// CleanupRemove deletes the workspace without asking.
	CleanupRemove CleanupMode = "remove"
)

// ParseCleanupMode parses a string into a CleanupMode.
func ParseCleanupMode(s string) (CleanupMode, error) {
	switch strings.ToLower(s) {
	case "prompt":
		return CleanupPrompt, nil
	case "keep":
		return CleanupKeep, nil
	case "remove":
		return CleanupRemove, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: prompt, keep, remove", ErrInvalidCleanupMode, s)
	}
}

// String returns the string representation of the cleanup mode.
func (m CleanupMode) String() string {
	return string(m)
}

// Config holds all configuration for a batch run. It is validated once at
// startup and treated as immutable afterwards.
type Config struct {
	// Input/output paths
	InputDir  string
	OutputDir string

	// Extensions to match against the input directory, in match order,
	// without leading dots.
	Extensions []string

	// StreamIndex is the container stream index of the audio track to
	// re-spatialize.
	StreamIndex int

	// SOFAFile is the path to the HRTF dataset file.
	SOFAFile string

	// Verbosity is the engine verbosity level for processing stages.
	Verbosity string

	// Flags
	KeepTemp      bool
	DryRun        bool
	SkipNormalize bool
	Verbose       bool

	// CleanupMode controls end-of-run workspace teardown.
	CleanupMode CleanupMode

	// ConfigFile is an optional TOML file whose values fill in whatever
	// the caller left at its default.
	ConfigFile string
}

// NewConfig creates a new Config with default values.
func NewConfig(inputDir, outputDir string) *Config {
	return &Config{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		SOFAFile:    DefaultSOFAFile,
		Verbosity:   DefaultVerbosity,
		CleanupMode: CleanupPrompt,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !util.DirectoryExists(c.InputDir) {
		return fmt.Errorf("%w: %s", ErrInputDirMissing, c.InputDir)
	}

	if !util.FileExists(c.SOFAFile) {
		return fmt.Errorf("%w: %s", ErrSOFAFileMissing, c.SOFAFile)
	}

	if c.StreamIndex < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeStreamIndex, c.StreamIndex)
	}

	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}

	if !validVerbosity(c.Verbosity) {
		return fmt.Errorf("%w: '%s'", ErrInvalidVerbosity, c.Verbosity)
	}

	switch c.CleanupMode {
	case CleanupPrompt, CleanupKeep, CleanupRemove:
	default:
		return fmt.Errorf("%w: '%s'", ErrInvalidCleanupMode, c.CleanupMode)
	}

	return nil
}

func validVerbosity(v string) bool {
	for _, known := range Verbosities {
		if v == known {
			return true
		}
	}
	return false
}

// ParseExtensions splits a comma-separated extension list, trimming
// whitespace and leading dots.
func ParseExtensions(s string) []string {
	var exts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), ".")
		if part != "" {
			exts = append(exts, part)
		}
	}
	return exts
}
