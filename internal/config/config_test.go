package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/cell-counter-mcp/internal/segment"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Pipeline != segment.DefaultParams() {
		t.Errorf("pipeline: got %+v, want the segment defaults", cfg.Pipeline)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pipeline != segment.DefaultParams() {
		t.Errorf("got %+v, want defaults", cfg.Pipeline)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Results.Directory != "." {
		t.Errorf("results directory: got %q, want \".\"", cfg.Results.Directory)
	}
}

func TestLoadConfig_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.yaml")
	data := "pipeline:\n  mode: g\n  selemRadius: 3\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	p := cfg.PipelineParams()
	if p.Mode != segment.ModeGreen || p.SelemRadius != 3 {
		t.Errorf("overridden fields: got %+v", p)
	}
	if p.MinArea != segment.DefaultMinArea || p.WatershedTrigger != segment.DefaultWatershedTrigger {
		t.Errorf("omitted fields lost their defaults: %+v", p)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"selem out of range", "pipeline:\n  selemRadius: 20\n", segment.ErrInvalidParameter},
		{"bad mode", "pipeline:\n  mode: x\n", segment.ErrInvalidParameter},
		{"bad level", "logging:\n  level: loud\n", segment.ErrInvalidParameter},
		{"bad format", "logging:\n  format: xml\n", segment.ErrInvalidParameter},
		{"malformed", "pipeline: [\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cells.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cells.yaml")
	cfg := DefaultConfig()
	cfg.Pipeline.MinArea = 2500
	cfg.Results.Directory = "/data/counts"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Pipeline != cfg.Pipeline || got.Results.Directory != cfg.Results.Directory {
		t.Errorf("got %+v, want %+v", got, cfg)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/cells.yaml")
	if got := ResolvePath("./local.yaml"); got != "./local.yaml" {
		t.Errorf("flag should win: got %q", got)
	}
	if got := ResolvePath(""); got != "/etc/cells.yaml" {
		t.Errorf("env fallback: got %q", got)
	}
}
