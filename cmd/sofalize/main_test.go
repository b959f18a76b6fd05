package main

import (
	"testing"

	"github.com/sofalize/sofalize/internal/config"
)

func TestVerboseShorthand(t *testing.T) {
	var flags cliFlags
	code := exitOK
	cmd := newRootCommand(&flags, &code)

	f := cmd.Flags().ShorthandLookup("v")
	if f == nil {
		t.Fatal("no flag registered under -v")
	}
	if f.Name != "verbose" {
		t.Errorf("-v is shorthand for --%s, want --verbose", f.Name)
	}
}

func TestRootCommandArity(t *testing.T) {
	var flags cliFlags
	code := exitOK
	cmd := newRootCommand(&flags, &code)

	if err := cmd.Args(cmd, []string{"in", "out", "mkv"}); err == nil {
		t.Error("three positionals accepted, want error")
	}
	if err := cmd.Args(cmd, []string{"in", "out", "mkv", "1"}); err != nil {
		t.Errorf("four positionals rejected: %v", err)
	}
}

func TestBuildOptionsAppliesFlags(t *testing.T) {
	var flags cliFlags
	code := exitOK
	cmd := newRootCommand(&flags, &code)
	for name, value := range map[string]string{
		"no-normalize": "true",
		"keep-temp":    "true",
		"cleanup":      "remove",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatal(err)
		}
	}

	opts, err := buildOptions(cmd, &flags, 2, []string{"mkv", "mp4"})
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig("in", "out")
	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.SkipNormalize || !cfg.KeepTemp {
		t.Errorf("flags not applied: skipNormalize=%v keepTemp=%v",
			cfg.SkipNormalize, cfg.KeepTemp)
	}
	if cfg.CleanupMode != config.CleanupRemove {
		t.Errorf("cleanup mode = %v, want remove", cfg.CleanupMode)
	}
	if cfg.StreamIndex != 2 || len(cfg.Extensions) != 2 {
		t.Errorf("positionals not applied: index=%d exts=%v",
			cfg.StreamIndex, cfg.Extensions)
	}
}
