package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tasknexus/tasknexus/pkg/analyzer/category"
	"github.com/tasknexus/tasknexus/pkg/analyzer/normalize"
	"github.com/tasknexus/tasknexus/pkg/analyzer/trend"
	"github.com/tasknexus/tasknexus/pkg/mapping"
)

// Environment variables read after .env files are loaded.
const (
	EnvConfigPath = "TASKNEXUS_CONFIG"
	EnvLogDir     = "TASKNEXUS_LOG_DIR"
	EnvCacheDir   = "TASKNEXUS_CACHE_DIR"
)

// Config holds all configuration options for tasknexus.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Label and priority dictionary overrides
	Mapping MappingConfig `koanf:"mapping" toml:"mapping"`

	// Status progression used for deviation counting
	Flow FlowConfig `koanf:"flow" toml:"flow"`

	// Heatmap and bar axes
	Layout LayoutConfig `koanf:"layout" toml:"layout"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Log settings
	Log LogConfig `koanf:"log" toml:"log"`
}

// AnalysisConfig controls the analytics pipeline.
type AnalysisConfig struct {
	HeatmapMode       string  `koanf:"heatmap_mode" toml:"heatmap_mode"`
	MinTrendGroupSize int     `koanf:"min_trend_group_size" toml:"min_trend_group_size"`
	OutlierZ          float64 `koanf:"outlier_z" toml:"outlier_z"`
	TrendsPerPage     int     `koanf:"trends_per_page" toml:"trends_per_page"`
	Workers           int     `koanf:"workers" toml:"workers"` // 0 = NumCPU
}

// MappingConfig extends or replaces the built-in dictionaries.
type MappingConfig struct {
	ReplaceDefaults bool              `koanf:"replace_defaults" toml:"replace_defaults"`
	Labels          map[string]string `koanf:"labels" toml:"labels"`
	Priorities      map[string]int    `koanf:"priorities" toml:"priorities"`
}

// FlowConfig overrides the canonical status progression.
type FlowConfig struct {
	Stages  []string `koanf:"stages" toml:"stages"`
	Skipped []string `koanf:"skipped" toml:"skipped"`
}

// LayoutConfig fixes heatmap and bar chart axes.
type LayoutConfig struct {
	Categories []string `koanf:"categories" toml:"categories"`
	FocusAreas []string `koanf:"focus_areas" toml:"focus_areas"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// LogConfig controls the log sinks.
type LogConfig struct {
	Dir     string `koanf:"dir" toml:"dir"` // empty disables the file sink
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	flow := normalize.DefaultFlow()
	layout := category.DefaultLayout()
	return &Config{
		Analysis: AnalysisConfig{
			HeatmapMode:       string(category.ModeAverage),
			MinTrendGroupSize: 3,
			OutlierZ:          2.0,
			TrendsPerPage:     4,
			Workers:           0,
		},
		Mapping: MappingConfig{
			Labels:     map[string]string{},
			Priorities: map[string]int{},
		},
		Flow: FlowConfig{
			Stages:  flow.Stages,
			Skipped: flow.Skipped,
		},
		Layout: LayoutConfig{
			Categories: layout.Categories,
			FocusAreas: layout.FocusAreas,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".tasknexus/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configNames are searched, in order, in each of searchDirs.
var configNames = []string{
	"tasknexus.toml",
	"tasknexus.yaml",
	"tasknexus.yml",
	"tasknexus.json",
	".tasknexus.toml",
	".tasknexus.yaml",
	".tasknexus.yml",
	".tasknexus.json",
}

var searchDirs = []string{".", ".tasknexus"}

// LoadResult is a loaded configuration and the file it came from.
// Source is empty when no file was found and defaults are in effect.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path    string
	dir     string
	dotenv  bool
	require bool
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads exactly this file. A missing file is an error.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
		o.require = true
	}
}

// WithSearchDir searches for config files relative to dir instead of the
// working directory.
func WithSearchDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// WithoutDotenv skips loading .env files.
func WithoutDotenv() LoadOption {
	return func(o *loadOptions) {
		o.dotenv = false
	}
}

// LoadConfig resolves, loads and validates the configuration.
//
// Resolution order: WithPath, then $TASKNEXUS_CONFIG, then the standard
// file names in . and .tasknexus/. Environment overrides for the log and
// cache directories are applied last.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dotenv: true}
	for _, opt := range opts {
		opt(&o)
	}

	if o.dotenv {
		// A missing .env is normal.
		_ = godotenv.Load(filepath.Join(o.dir, ".env"))
	}

	path := o.path
	if path == "" {
		if env := os.Getenv(EnvConfigPath); env != "" {
			path = env
			o.require = true
		}
	}
	if path == "" {
		path = findConfig(o.dir)
	}

	result := &LoadResult{Config: DefaultConfig()}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if o.require {
				return nil, fmt.Errorf("config file %s: %w", path, err)
			}
		} else {
			cfg, err := Load(path)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
			result.Config = cfg
			result.Source = path
		}
	}

	if dir := os.Getenv(EnvLogDir); dir != "" {
		result.Config.Log.Dir = dir
	}
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		result.Config.Cache.Dir = dir
	}

	if err := result.Config.Validate(); err != nil {
		if result.Source != "" {
			return nil, fmt.Errorf("%s: %w", result.Source, err)
		}
		return nil, err
	}
	return result, nil
}

func findConfig(dir string) string {
	for _, sub := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, sub, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var validFormats = []string{"text", "json", "markdown", "md", "toon"}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := category.ParseHeatmapMode(c.Analysis.HeatmapMode); err != nil {
		errs = append(errs, err)
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers))
	}
	if c.Analysis.MinTrendGroupSize < trend.DefaultMinGroupSize {
		errs = append(errs, fmt.Errorf("analysis.min_trend_group_size must be >= %d, got %d", trend.DefaultMinGroupSize, c.Analysis.MinTrendGroupSize))
	}
	if c.Analysis.OutlierZ < 0 {
		errs = append(errs, fmt.Errorf("analysis.outlier_z must be >= 0, got %g", c.Analysis.OutlierZ))
	}
	if c.Analysis.TrendsPerPage < 0 {
		errs = append(errs, fmt.Errorf("analysis.trends_per_page must be >= 0, got %d", c.Analysis.TrendsPerPage))
	}
	for name, p := range c.Mapping.Priorities {
		if p < mapping.PriorityNone || p > mapping.PriorityHigh {
			errs = append(errs, fmt.Errorf("mapping.priorities.%s must be in 0..3, got %d", name, p))
		}
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be >= 0, got %d", c.Cache.TTL))
	}
	if c.Output.Format != "" && !slices.Contains(validFormats, strings.ToLower(c.Output.Format)) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %v", c.Output.Format, validFormats))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Tables returns the mapping tables the normalizer should use.
func (c *Config) Tables() mapping.Tables {
	base := mapping.DefaultTables()
	if c.Mapping.ReplaceDefaults {
		base = mapping.Tables{Labels: map[string]string{}, Priorities: map[string]int{}}
	}
	return base.Merge(c.Mapping.Labels, c.Mapping.Priorities)
}

// StatusFlow returns the configured status progression, falling back to
// the default when no stages are set.
func (c *Config) StatusFlow() normalize.Flow {
	if len(c.Flow.Stages) == 0 {
		return normalize.DefaultFlow()
	}
	return normalize.Flow{Stages: c.Flow.Stages, Skipped: c.Flow.Skipped}
}

// Layout returns the heatmap and bar axes.
func (c *Config) Layout() category.Layout {
	def := category.DefaultLayout()
	l := category.Layout{Categories: c.Layout.Categories, FocusAreas: c.Layout.FocusAreas}
	if len(l.Categories) == 0 {
		l.Categories = def.Categories
	}
	if len(l.FocusAreas) == 0 {
		l.FocusAreas = def.FocusAreas
	}
	return l
}

// HeatmapMode returns the parsed heatmap mode, ModeAverage if invalid.
func (c *Config) HeatmapMode() category.HeatmapMode {
	m, err := category.ParseHeatmapMode(c.Analysis.HeatmapMode)
	if err != nil {
		return category.ModeAverage
	}
	return m
}

// Fingerprint hashes every setting that changes normalized output, so
// cached results can be keyed on it.
func (c *Config) Fingerprint() string {
	h := xxhash.New()
	tables := c.Tables()

	writeSorted := func(section string, m map[string]string) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		_, _ = h.WriteString(section)
		for _, k := range keys {
			_, _ = h.WriteString("\x00" + k + "\x01" + m[k])
		}
	}

	writeSorted("labels", tables.Labels)
	prio := make(map[string]string, len(tables.Priorities))
	for k, v := range tables.Priorities {
		prio[k] = fmt.Sprint(v)
	}
	writeSorted("priorities", prio)

	flow := c.StatusFlow()
	_, _ = h.WriteString("stages\x00" + strings.Join(flow.Stages, "\x00"))
	_, _ = h.WriteString("skipped\x00" + strings.Join(flow.Skipped, "\x00"))

	return fmt.Sprintf("%016x", h.Sum64())
}
