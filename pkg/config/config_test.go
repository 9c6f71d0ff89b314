package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdejongh/dupnorris/pkg/models"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Performance.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Performance.Concurrency)
	}
	if cfg.Output.ReportFile != "delete-files.txt" {
		t.Errorf("ReportFile = %s, want delete-files.txt", cfg.Output.ReportFile)
	}
	if cfg.Cache.FileName != "delete-files-info-cache.json" {
		t.Errorf("Cache.FileName = %s", cfg.Cache.FileName)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"EmptyCacheName", func(c *Config) { c.Cache.FileName = "" }, "cache.file_name"},
		{"ZeroConcurrency", func(c *Config) { c.Performance.Concurrency = 0 }, "performance.concurrency"},
		{"SmallBuffer", func(c *Config) { c.Performance.BufferSize = 100 }, "performance.buffer_size"},
		{"BadReadLimit", func(c *Config) { c.Performance.ReadLimit = "fast" }, "performance.read_limit"},
		{"BadReportFormat", func(c *Config) { c.Output.ReportFormat = "xml" }, "output.report_format"},
		{"BadLogFormat", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"BadLogLevel", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %s, want %s", ve.Field, tt.field)
			}
		})
	}
}

func TestReadLimitBytes(t *testing.T) {
	cfg := Default()
	cfg.Performance.ReadLimit = "10M"

	got, err := cfg.ReadLimitBytes()
	if err != nil {
		t.Fatalf("ReadLimitBytes() error = %v", err)
	}
	if got != 10*1024*1024 {
		t.Errorf("ReadLimitBytes() = %d, want %d", got, 10*1024*1024)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Performance.Concurrency = 4
	cfg.Exclude = []string{".git/", "*.part"}
	cfg.Logging.Level = "debug"

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Performance.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", loaded.Performance.Concurrency)
	}
	if len(loaded.Exclude) != 2 || loaded.Exclude[1] != "*.part" {
		t.Errorf("Exclude = %v", loaded.Exclude)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("Level = %s, want debug", loaded.Logging.Level)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("performance:\n  concurrency: 8\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Performance.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Performance.Concurrency)
	}
	if !cfg.Cache.Enabled || cfg.Output.ReportFormat != "human" {
		t.Error("unspecified sections should keep their defaults")
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		os.WriteFile(path, []byte("cache: [unterminated"), 0644)
		if _, err := LoadFromFile(path); err == nil {
			t.Error("LoadFromFile() should fail on malformed YAML")
		}
	})

	t.Run("InvalidValue", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644)
		if _, err := LoadFromFile(path); err == nil {
			t.Error("LoadFromFile() should reject invalid values")
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("LoadFromFile() should fail for a missing file")
		}
	})
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "dupnorris" || filepath.Base(path) != "config.yaml" {
		t.Errorf("DefaultConfigPath() = %s", path)
	}
}

func TestResolve(t *testing.T) {
	t.Run("ExplicitMissing", func(t *testing.T) {
		if _, _, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("Resolve() should fail for a missing explicit file")
		}
	})

	t.Run("DefaultLocationAbsent", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		cfg, used, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if used != "" {
			t.Errorf("used = %s, want defaults", used)
		}
		if cfg.Performance.Concurrency != 1 {
			t.Errorf("Concurrency = %d, want default", cfg.Performance.Concurrency)
		}
	})

	t.Run("DefaultLocationPresent", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		path := filepath.Join(home, ".config", "dupnorris", "config.yaml")
		cfg := Default()
		cfg.Output.Quiet = true
		if err := SaveToFile(cfg, path); err != nil {
			t.Fatalf("SaveToFile() error = %v", err)
		}

		loaded, used, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if used != path || !loaded.Output.Quiet {
			t.Errorf("Resolve() used %s, quiet=%v", used, loaded.Output.Quiet)
		}
	})
}
