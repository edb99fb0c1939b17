package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknexus/tasknexus/pkg/analyzer/category"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.Analysis.HeatmapMode != "average" {
		t.Errorf("Analysis.HeatmapMode = %q, want average", cfg.Analysis.HeatmapMode)
	}
	if cfg.Analysis.MinTrendGroupSize != 3 {
		t.Errorf("Analysis.MinTrendGroupSize = %d, want 3", cfg.Analysis.MinTrendGroupSize)
	}
	if cfg.Analysis.TrendsPerPage != 4 {
		t.Errorf("Analysis.TrendsPerPage = %d, want 4", cfg.Analysis.TrendsPerPage)
	}
	if len(cfg.Layout.Categories) != 7 || len(cfg.Layout.FocusAreas) != 7 {
		t.Errorf("Layout should default to 7x7 axes, got %dx%d", len(cfg.Layout.Categories), len(cfg.Layout.FocusAreas))
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tasknexus.toml", `
[analysis]
heatmap_mode = "most_common"
min_trend_group_size = 5

[mapping.labels]
perf = "fix"
"version 2.0" = "feature"

[mapping.priorities]
urgent = 3

[layout]
categories = ["Feature", "Bug Fixes"]

[cache]
enabled = false

[output]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "most_common", cfg.Analysis.HeatmapMode)
	assert.Equal(t, category.ModeMostCommon, cfg.HeatmapMode())
	assert.Equal(t, 5, cfg.Analysis.MinTrendGroupSize)
	assert.Equal(t, "fix", cfg.Mapping.Labels["perf"])
	assert.Equal(t, "feature", cfg.Mapping.Labels["version 2.0"])
	assert.Equal(t, 3, cfg.Mapping.Priorities["urgent"])
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "json", cfg.Output.Format)

	layout := cfg.Layout()
	assert.Equal(t, []string{"Feature", "Bug Fixes"}, layout.Categories)
	assert.Equal(t, category.DefaultLayout().FocusAreas, layout.FocusAreas)

	tables := cfg.Tables()
	assert.Equal(t, []string{"fix", "feature", "bug"}, tables.MapLabels([]string{"perf", "version 2.0", "bug"}))
	assert.Equal(t, 3, tables.Priority("urgent"))
	assert.Equal(t, 2, tables.Priority("medium"))
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tasknexus.yaml", `
analysis:
  workers: 2
flow:
  stages: [todo, doing, done]
  skipped: [icebox]
output:
  format: markdown
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Analysis.Workers)
	assert.Equal(t, "markdown", cfg.Output.Format)
	flow := cfg.StatusFlow()
	assert.Equal(t, []string{"todo", "doing", "done"}, flow.Stages)
	assert.Equal(t, []string{"icebox"}, flow.Skipped)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tasknexus.json", `{
  "analysis": {"outlier_z": 3},
  "mapping": {"replace_defaults": true, "labels": {"bug": "fix"}}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3.0, cfg.Analysis.OutlierZ)
	tables := cfg.Tables()
	assert.Equal(t, []string{"fix", "enhancement"}, tables.MapLabels([]string{"bug", "enhancement"}))
	assert.Equal(t, 0, tables.Priority("high"), "defaults replaced")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/tasknexus.toml")
	assert.Error(t, err)

	path := writeFile(t, t.TempDir(), "tasknexus.toml", "[analysis\ninvalid toml")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadConfig_Search(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".tasknexus/tasknexus.yaml", "analysis:\n  min_trend_group_size: 4\n")

	result, err := LoadConfig(WithSearchDir(dir), WithoutDotenv())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".tasknexus", "tasknexus.yaml"), result.Source)
	assert.Equal(t, 4, result.Config.Analysis.MinTrendGroupSize)
}

func TestLoadConfig_NoFile(t *testing.T) {
	result, err := LoadConfig(WithSearchDir(t.TempDir()), WithoutDotenv())
	require.NoError(t, err)
	assert.Empty(t, result.Source)
	assert.Equal(t, DefaultConfig().Analysis, result.Config.Analysis)
}

func TestLoadConfig_ExplicitMissing(t *testing.T) {
	_, err := LoadConfig(WithPath(filepath.Join(t.TempDir(), "nope.toml")), WithoutDotenv())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_Env(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.toml", "[output]\nformat = \"toon\"\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvLogDir, filepath.Join(dir, "logs"))
	t.Setenv(EnvCacheDir, filepath.Join(dir, "cache"))

	result, err := LoadConfig(WithSearchDir(dir))
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)
	assert.Equal(t, "toon", result.Config.Output.Format)
	assert.Equal(t, filepath.Join(dir, "logs"), result.Config.Log.Dir)
	assert.Equal(t, filepath.Join(dir, "cache"), result.Config.Cache.Dir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tasknexus.toml", "[analysis]\nheatmap_mode = \"median\"\n")

	_, err := LoadConfig(WithSearchDir(dir), WithoutDotenv())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, category.ErrInvalidHeatmapMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Analysis.HeatmapMode = "median" }},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -1 }},
		{"zero min group", func(c *Config) { c.Analysis.MinTrendGroupSize = 0 }},
		{"min group below three", func(c *Config) { c.Analysis.MinTrendGroupSize = 2 }},
		{"negative outlier z", func(c *Config) { c.Analysis.OutlierZ = -1 }},
		{"priority out of range", func(c *Config) { c.Mapping.Priorities["blocker"] = 4 }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -1 }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 16)

	b.Mapping.Labels["perf"] = "fix"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	c := DefaultConfig()
	c.Flow.Stages = []string{"todo", "done"}
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	d := DefaultConfig()
	d.Output.Format = "json"
	d.Analysis.HeatmapMode = "most_common"
	assert.Equal(t, a.Fingerprint(), d.Fingerprint(), "presentation settings do not affect normalization")
}

func TestLoadOrDefault(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Setenv(EnvConfigPath, "")

	cfg := LoadOrDefault()
	if cfg == nil {
		t.Fatal("LoadOrDefault() returned nil")
	}
	if cfg.Analysis.MinTrendGroupSize != 3 {
		t.Errorf("LoadOrDefault() returned non-default MinTrendGroupSize: %d", cfg.Analysis.MinTrendGroupSize)
	}
}
