// Package reporter provides progress reporting interfaces and implementations.
package reporter

// BatchInfo describes the batch before processing starts.
type BatchInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
	DryRun     bool
}

// FileContext identifies the file currently being processed.
type FileContext struct {
	CurrentFile int
	TotalFiles  int
	Filename    string
}

// FileResult contains one finished job.
type FileResult struct {
	Filename string
	Outcome  string // "processed", "failed", "skipped", "simulated"
	Detail   string
	Output   string
}

// Summary contains batch completion counts and per-file results.
type Summary struct {
	Processed int
	Failed    int
	Skipped   int
	Simulated int
	Results   []FileResult
}

// ErrorReport contains error information for display.
type ErrorReport struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// Reporter defines the interface for progress reporting.
type Reporter interface {
	BatchStarted(info BatchInfo)
	FileStarted(ctx FileContext)
	StreamInfo(streamIndex int, lines []string)
	Stage(message string)
	Warning(message string)
	Error(report ErrorReport)
	FileComplete(result FileResult)
	BatchComplete(summary Summary)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) BatchStarted(BatchInfo)      {}
func (NullReporter) FileStarted(FileContext)     {}
func (NullReporter) StreamInfo(int, []string)    {}
func (NullReporter) Stage(string)                {}
func (NullReporter) Warning(string)              {}
func (NullReporter) Error(ErrorReport)           {}
func (NullReporter) FileComplete(FileResult)     {}
func (NullReporter) BatchComplete(Summary)       {}
