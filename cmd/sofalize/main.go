// Package main provides the CLI entry point for sofalize.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sofalize/sofalize"
	"github.com/sofalize/sofalize/internal/config"
	"github.com/sofalize/sofalize/internal/ffmpeg"
	"github.com/sofalize/sofalize/internal/reporter"
	"github.com/sofalize/sofalize/internal/util"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

// cliFlags holds the parsed command line flags.
type cliFlags struct {
	sofaFile      string
	verbosity     string
	configPath    string
	cleanup       string
	keepTemp      bool
	skipNormalize bool
	dryRun        bool
	verbose       bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var flags cliFlags
	exitCode := exitOK

	rootCmd := newRootCommand(&flags, &exitCode)
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: ")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if exitCode == exitOK {
			exitCode = exitError
		}
	}
	return exitCode
}

func newRootCommand(flags *cliFlags, exitCode *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sofalize <input-dir> <output-dir> <extensions> <stream-index>",
		Short: "Batch HRTF spatialization of video audio tracks",
		Long: `Sofalize processes every matching video file in a directory: the selected
audio stream is run through FFmpeg's sofalizer filter, normalized to peak
loudness, and muxed back as the default track of a new "(sofa)" file
alongside the original streams.

Arguments:
  input-dir     Directory containing the source video files
  output-dir    Directory for processed files (created if missing)
  extensions    Comma-separated list of file extensions, e.g. "mkv,mp4"
  stream-index  Input stream index of the audio track to process`,
		Example: `  sofalize ./videos ./videos/processed mkv,mp4 1
  sofalize ./videos ./out mkv 1 --sofa ~/hrtf/custom.sofa --dry-run`,
		Version:       sofalize.Version,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runBatch(cmd, args, flags)
			*exitCode = code
			return err
		},
	}

	rootCmd.Flags().StringVar(&flags.sofaFile, "sofa", config.DefaultSOFAFile,
		"HRTF dataset file (relative paths resolve next to the executable)")
	rootCmd.Flags().StringVar(&flags.verbosity, "ffmpeg-verbosity", config.DefaultVerbosity,
		"FFmpeg log verbosity for processing stages")
	rootCmd.Flags().StringVar(&flags.configPath, "config", "",
		"TOML configuration file (flags take precedence)")
	rootCmd.Flags().StringVar(&flags.cleanup, "cleanup", "",
		"temp folder policy after the run: prompt, keep, or remove")
	rootCmd.Flags().BoolVar(&flags.keepTemp, "keep-temp", false,
		"keep the temp folder and intermediate files")
	rootCmd.Flags().BoolVar(&flags.skipNormalize, "no-normalize", false,
		"skip volume measurement and normalization")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false,
		"log FFmpeg commands without executing them")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false,
		"enable debug entries in the run log")

	return rootCmd
}

// runBatch translates CLI input into processor options and drives one run.
// The returned code distinguishes interruption (130) from failure (1).
func runBatch(cmd *cobra.Command, args []string, flags *cliFlags) (int, error) {
	streamIndex, err := strconv.Atoi(args[3])
	if err != nil {
		return exitError, fmt.Errorf("stream index must be a number, got %q", args[3])
	}
	extensions := config.ParseExtensions(args[2])

	opts, err := buildOptions(cmd, flags, streamIndex, extensions)
	if err != nil {
		return exitError, err
	}

	proc, err := sofalize.New(args[0], args[1], opts...)
	if err != nil {
		return exitError, err
	}

	probeOK, err := ffmpeg.CheckAvailable()
	if err != nil {
		if !flags.dryRun {
			return exitError, err
		}
		color.Yellow("Warning: %v (continuing, dry run spawns nothing)", err)
	}
	if !probeOK {
		color.Yellow("Warning: %s not found, stream details will not be shown",
			ffmpeg.ProbeBinaryName)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := proc.Run(ctx, reporter.NewTerminalReporter())
	if err != nil {
		if sofalize.IsCancelled(err) {
			color.Yellow("\nInterrupted after %d file(s)", stats.Total())
			return exitInterrupted, nil
		}
		return exitError, err
	}
	return exitOK, nil
}

// buildOptions turns flags into processor options. Only flags the user set
// become options, so values from an optional TOML config file can fill the
// rest; an explicit flag always wins over the file.
func buildOptions(cmd *cobra.Command, flags *cliFlags, streamIndex int, extensions []string) ([]sofalize.Option, error) {
	opts := []sofalize.Option{
		sofalize.WithExtensions(extensions...),
		sofalize.WithStreamIndex(streamIndex),
	}

	if cmd.Flags().Changed("config") {
		opts = append(opts, sofalize.WithConfigFile(flags.configPath))
	} else if defaultPath := filepath.Join(util.ExecutableDir(), "sofalize.toml"); util.FileExists(defaultPath) {
		opts = append(opts, sofalize.WithConfigFile(defaultPath))
	}

	if cmd.Flags().Changed("sofa") {
		opts = append(opts, sofalize.WithSOFAFile(flags.sofaFile))
	}
	if cmd.Flags().Changed("ffmpeg-verbosity") {
		opts = append(opts, sofalize.WithVerbosity(flags.verbosity))
	}
	if flags.cleanup != "" {
		mode, err := sofalize.ParseCleanupMode(flags.cleanup)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sofalize.WithCleanupMode(mode))
	}
	if flags.keepTemp {
		opts = append(opts, sofalize.WithKeepTemp())
	}
	if flags.skipNormalize {
		opts = append(opts, sofalize.WithSkipNormalize())
	}
	if flags.dryRun {
		opts = append(opts, sofalize.WithDryRun())
	}
	if flags.verbose {
		opts = append(opts, sofalize.WithVerbose())
	}
	return opts, nil
}
