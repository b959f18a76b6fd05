// Package pipeline implements the per-file audio transformation pipeline and
// the batch coordinator that drives it.
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/sofalize/sofalize/internal/config"
	"github.com/sofalize/sofalize/internal/util"
)

// Job describes one input file being processed.
type Job struct {
	// Source is the input file path.
	Source string

	// Base is the filename without extension, used to derive every
	// intermediate artifact name.
	Base string

	// Ext is the source extension without the leading dot. The output
	// keeps the source container format.
	Ext string

	// Output is the final artifact path: <base>(sofa).<ext> under the
	// output directory. Its presence short-circuits the job to Skipped.
	Output string
}

// NewJob derives a job from a source file and the output directory.
func NewJob(source, outputDir string) Job {
	base := util.FileStem(source)
	ext := util.FileExtension(source)
	return Job{
		Source: source,
		Base:   base,
		Ext:    ext,
		Output: filepath.Join(outputDir, fmt.Sprintf("%s%s.%s", base, config.OutputSuffix, ext)),
	}
}

// OutcomeKind classifies how a job ended.
type OutcomeKind int

const (
	// OutcomeProcessed means the pipeline completed and the output exists.
	OutcomeProcessed OutcomeKind = iota
	// OutcomeFailed means a stage failed; the batch continues.
	OutcomeFailed
	// OutcomeSkipped means the output already existed, so nothing ran.
	OutcomeSkipped
	// OutcomeSimulated means a dry run walked all stages without side
	// effects. Simulated jobs count toward none of processed, failed, or
	// skipped.
	OutcomeSimulated
)

// String returns the outcome kind as a summary label.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeProcessed:
		return "processed"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSimulated:
		return "simulated"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one job.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Err    error
}
