// Package errors provides structured error types for sofalize operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindPath represents path-related errors.
	KindPath
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindTool represents external engine failures (non-zero exit or
	// missing binary).
	KindTool
	// KindProbeParse represents ffprobe output parsing errors.
	KindProbeParse
	// KindWorkspace represents scratch workspace errors.
	KindWorkspace
	// KindNoFilesFound represents no matching input files found.
	KindNoFilesFound
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindPath:
		return "Path error"
	case KindConfig:
		return "Configuration error"
	case KindTool:
		return "External tool error"
	case KindProbeParse:
		return "Probe parse error"
	case KindWorkspace:
		return "Workspace error"
	case KindNoFilesFound:
		return "No files found"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// ToolError represents a failed external engine invocation. Tail holds the
// last captured output lines for diagnostics.
type ToolError struct {
	Command    string
	ExitCode   int
	Tail       []string
	Underlying error
}

func (e *ToolError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	}
	return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
}

func (e *ToolError) Unwrap() error {
	return e.Underlying
}

// TailOutput returns the retained trailing output as a single string.
func (e *ToolError) TailOutput() string {
	return strings.Join(e.Tail, "\n")
}

// CoreError is the main error type for sofalize operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewPathError creates a new path-related error.
func NewPathError(message string) *CoreError {
	return &CoreError{Kind: KindPath, Message: message}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message, Underlying: underlying}
}

// NewToolFailedError creates an error for an engine run that exited non-zero.
func NewToolFailedError(cmd string, exitCode int, tail []string) *CoreError {
	toolErr := &ToolError{Command: cmd, ExitCode: exitCode, Tail: tail}
	return &CoreError{Kind: KindTool, Message: toolErr.Error(), Underlying: toolErr}
}

// NewToolStartError creates an error for an engine that could not be launched.
func NewToolStartError(cmd string, err error) *CoreError {
	toolErr := &ToolError{Command: cmd, Underlying: err}
	return &CoreError{Kind: KindTool, Message: toolErr.Error(), Underlying: toolErr}
}

// NewProbeParseError creates a new ffprobe parsing error.
func NewProbeParseError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindProbeParse, Message: message, Underlying: underlying}
}

// NewWorkspaceError creates a new workspace error.
func NewWorkspaceError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindWorkspace, Message: message, Underlying: underlying}
}

// NewNoFilesFoundError creates an error for when no input files match.
func NewNoFilesFoundError(dir string) *CoreError {
	return &CoreError{Kind: KindNoFilesFound, Message: fmt.Sprintf("no matching files found in %s", dir)}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsTool checks if the error is an external tool failure.
func IsTool(err error) bool {
	return IsKind(err, KindTool)
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// AsTool extracts the underlying ToolError, if any.
func AsTool(err error) (*ToolError, bool) {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr, true
	}
	return nil, false
}

// WrapExecError wraps an error from exec.Cmd into a CoreError, preserving the
// exit code and trailing output when the process ran but failed.
func WrapExecError(cmd string, err error, tail []string) *CoreError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewToolFailedError(cmd, exitErr.ExitCode(), tail)
	}
	return NewToolStartError(cmd, err)
}
