// Package config provides configuration types and validation for sofalize.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInputDirMissing indicates the input path is missing or not a directory.
	ErrInputDirMissing = errors.New("input directory does not exist or is not a directory")

	// ErrSOFAFileMissing indicates the HRTF dataset file was not found.
	ErrSOFAFileMissing = errors.New("SOFA file does not exist")

	// ErrNegativeStreamIndex indicates a stream index below zero.
	ErrNegativeStreamIndex = errors.New("stream index must be non-negative")

	// ErrNoExtensions indicates an empty extension list.
	ErrNoExtensions = errors.New("at least one file extension must be specified")

	// ErrInvalidVerbosity indicates an unknown engine verbosity level.
	ErrInvalidVerbosity = errors.New("invalid ffmpeg verbosity level")

	// ErrInvalidCleanupMode indicates an unknown workspace cleanup mode.
	ErrInvalidCleanupMode = errors.New("invalid cleanup mode")
)
