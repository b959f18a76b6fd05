package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors the optional TOML configuration file. Every field is
// optional; values set here act as defaults beneath explicit CLI flags.
type FileConfig struct {
	SOFAFile      string   `toml:"sofa_file"`
	Verbosity     string   `toml:"ffmpeg_verbosity"`
	Extensions    []string `toml:"extensions"`
	StreamIndex   *int     `toml:"stream_index"`
	KeepTemp      *bool    `toml:"keep_temp"`
	SkipNormalize *bool    `toml:"skip_normalize"`
	Cleanup       string   `toml:"cleanup"`
}

// LoadFile reads and decodes a TOML configuration file. A missing file is
// not an error when required is false, so a default path can be probed.
func LoadFile(path string, required bool) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc FileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// Apply copies file-level defaults onto cfg. Only fields left at their zero
// or default value are overwritten, so CLI flags always win.
func (fc *FileConfig) Apply(cfg *Config) error {
	if fc == nil {
		return nil
	}

	if fc.SOFAFile != "" && cfg.SOFAFile == DefaultSOFAFile {
		cfg.SOFAFile = fc.SOFAFile
	}
	if fc.Verbosity != "" && cfg.Verbosity == DefaultVerbosity {
		cfg.Verbosity = fc.Verbosity
	}
	if len(fc.Extensions) > 0 && len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), fc.Extensions...)
	}
	if fc.StreamIndex != nil && cfg.StreamIndex == 0 {
		cfg.StreamIndex = *fc.StreamIndex
	}
	if fc.KeepTemp != nil && !cfg.KeepTemp {
		cfg.KeepTemp = *fc.KeepTemp
	}
	if fc.SkipNormalize != nil && !cfg.SkipNormalize {
		cfg.SkipNormalize = *fc.SkipNormalize
	}
	if fc.Cleanup != "" && cfg.CleanupMode == CleanupPrompt {
		mode, err := ParseCleanupMode(fc.Cleanup)
		if err != nil {
			return err
		}
		cfg.CleanupMode = mode
	}

	return nil
}
