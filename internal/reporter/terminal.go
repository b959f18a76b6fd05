package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu       sync.Mutex
	progress *progressbar.ProgressBar
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	red      *color.Color
	bold     *color.Color
	faint    *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:   color.New(color.FgCyan, color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow, color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		bold:   color.New(color.Bold),
		faint:  color.New(color.Faint),
	}
}

func (r *TerminalReporter) BatchStarted(info BatchInfo) {
	fmt.Println()
	_, _ = r.cyan.Println("BATCH")
	fmt.Printf("  Processing %d file(s) -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
	if info.DryRun {
		_, _ = r.yellow.Println("  DRY RUN MODE - no files will be modified")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !info.DryRun && info.TotalFiles > 1 {
		r.progress = progressbar.NewOptions(
			info.TotalFiles,
			progressbar.OptionSetDescription("Processing files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
}

func (r *TerminalReporter) FileStarted(ctx FileContext) {
	fmt.Println()
	_, _ = r.cyan.Printf("FILE %d/%d\n", ctx.CurrentFile, ctx.TotalFiles)
	fmt.Printf("  %s\n", r.bold.Sprint(ctx.Filename))
}

func (r *TerminalReporter) StreamInfo(streamIndex int, lines []string) {
	fmt.Printf("  Selected audio track (stream %d):\n", streamIndex)
	for _, line := range lines {
		fmt.Printf("    %s\n", r.faint.Sprint(line))
	}
}

func (r *TerminalReporter) Stage(message string) {
	fmt.Printf("  %s %s\n", r.faint.Sprint("›"), message)
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(report ErrorReport) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", report.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", report.Message)
	if report.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", report.Context)
	}
	if report.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", report.Suggestion)
	}
}

func (r *TerminalReporter) FileComplete(result FileResult) {
	switch result.Outcome {
	case "processed":
		fmt.Printf("  %s %s\n", r.green.Sprint("✓"), result.Filename)
		if result.Output != "" {
			fmt.Printf("    Output: %s\n", r.green.Sprint(result.Output))
		}
	case "failed":
		fmt.Printf("  %s %s: %s\n", r.red.Sprint("✗"), result.Filename, result.Detail)
	case "skipped":
		fmt.Printf("  %s %s (%s)\n", r.faint.Sprint("-"), result.Filename, result.Detail)
	case "simulated":
		fmt.Printf("  %s %s (dry run)\n", r.faint.Sprint("~"), result.Filename)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Add(1)
	}
}

func (r *TerminalReporter) BatchComplete(summary Summary) {
	r.mu.Lock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.mu.Unlock()

	fmt.Println()
	_, _ = r.cyan.Println("PROCESSING SUMMARY")

	if len(summary.Results) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"File", "Outcome", "Detail"})
		for _, res := range summary.Results {
			tw.AppendRow(table.Row{res.Filename, res.Outcome, res.Detail})
		}
		tw.Render()
	}

	fmt.Printf("  %s %d\n", r.bold.Sprint("Successfully processed:"), summary.Processed)
	fmt.Printf("  %s %d\n", r.bold.Sprint("Failed:"), summary.Failed)
	fmt.Printf("  %s %d\n", r.bold.Sprint("Skipped:"), summary.Skipped)
	if summary.Simulated > 0 {
		fmt.Printf("  %s %d\n", r.bold.Sprint("Simulated (dry run):"), summary.Simulated)
	}
}
