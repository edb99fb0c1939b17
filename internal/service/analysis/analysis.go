// Package analysis runs the task analytics pipeline end to end: ingest,
// normalization, grouping, aggregation and trend fitting.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tasknexus/tasknexus/internal/cache"
	"github.com/tasknexus/tasknexus/internal/ingest"
	"github.com/tasknexus/tasknexus/pkg/analyzer"
	"github.com/tasknexus/tasknexus/pkg/analyzer/category"
	"github.com/tasknexus/tasknexus/pkg/analyzer/normalize"
	"github.com/tasknexus/tasknexus/pkg/analyzer/trend"
	"github.com/tasknexus/tasknexus/pkg/analyzer/workload"
	"github.com/tasknexus/tasknexus/pkg/config"
	"github.com/tasknexus/tasknexus/pkg/models"
)

// Service orchestrates task analysis operations.
type Service struct {
	config       *config.Config
	cache        *cache.Cache
	tracker      *analyzer.Tracker
	mode         category.HeatmapMode
	minGroupSize int
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithCache enables the normalized-task cache for file runs.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithTracker reports normalization progress.
func WithTracker(t *analyzer.Tracker) Option {
	return func(s *Service) {
		s.tracker = t
	}
}

// WithHeatmapMode overrides the configured heatmap mode.
func WithHeatmapMode(mode category.HeatmapMode) Option {
	return func(s *Service) {
		s.mode = mode
	}
}

// WithMinGroupSize overrides the configured minimum trend group size.
// The trend analyzer raises values below three.
func WithMinGroupSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minGroupSize = n
		}
	}
}

// WithClock sets the time source for report metadata (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	if s.mode == "" {
		s.mode = s.config.HeatmapMode()
	}
	if s.minGroupSize == 0 {
		s.minGroupSize = s.config.Analysis.MinTrendGroupSize
	}
	return s
}

// Metadata describes the input of a report.
type Metadata struct {
	Source        string               `json:"source,omitempty"`
	GeneratedAt   time.Time            `json:"generated_at"`
	RawCount      int                  `json:"raw_count"`
	FilteredCount int                  `json:"filtered_count"`
	DroppedCount  int                  `json:"dropped_count"`
	Skipped       int                  `json:"skipped_records"`
	Warnings      int                  `json:"schema_warnings"`
	CacheHit      bool                 `json:"cache_hit"`
	Fingerprint   string               `json:"config_fingerprint"`
	HeatmapMode   category.HeatmapMode `json:"heatmap_mode"`
}

// Report is the full analysis of one task export.
type Report struct {
	Metadata Metadata                `json:"metadata"`
	Counts   category.Counts         `json:"counts"`
	Heatmap  category.HeatmapData    `json:"heatmap"`
	Bars     category.BarData        `json:"bars"`
	Trends   *trend.Analysis         `json:"trends"`
	Tasks    []models.NormalizedTask `json:"tasks"`
}

// Normalized is a normalized task collection with its input metadata.
type Normalized struct {
	Metadata Metadata
	Tasks    []models.NormalizedTask
}

func (s *Service) normalizer() *normalize.Normalizer {
	opts := []normalize.Option{
		normalize.WithFlow(s.config.StatusFlow()),
		normalize.WithWorkers(s.config.Analysis.Workers),
	}
	if s.tracker != nil {
		opts = append(opts, normalize.WithTracker(s.tracker))
	}
	return normalize.New(s.config.Tables(), opts...)
}

// Normalize filters and normalizes raw tasks.
func (s *Service) Normalize(ctx context.Context, raw []models.RawTask) (*Normalized, error) {
	tasks, err := s.normalizer().NormalizeAll(ctx, raw)
	if err != nil {
		return nil, err
	}
	meta := s.metadata(len(raw), len(tasks))
	log.Debug().
		Int("raw", meta.RawCount).
		Int("kept", meta.FilteredCount).
		Int("dropped", meta.DroppedCount).
		Msg("normalized tasks")
	return &Normalized{Metadata: meta, Tasks: tasks}, nil
}

// NormalizeFile loads the export at path and normalizes it. Results are
// served from the cache when the file content and mapping configuration
// are unchanged.
func (s *Service) NormalizeFile(ctx context.Context, path string) (*Normalized, error) {
	res, content, err := ingest.LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, rec := range res.Skipped {
		log.Warn().Str("path", path).Int("record", rec.Index).Err(rec.Err).Msg("skipping malformed record")
	}
	for _, rec := range res.Warnings {
		log.Debug().Str("path", path).Int("record", rec.Index).Err(rec.Err).Msg("record does not match task schema")
	}

	fingerprint := s.config.Fingerprint()
	key := cache.NormalizedKey(cache.HashBytes(content), fingerprint)

	var out *Normalized
	if tasks, ok := s.cached(key); ok {
		out = &Normalized{Metadata: s.metadata(len(res.Tasks), len(tasks)), Tasks: tasks}
		out.Metadata.CacheHit = true
		log.Debug().Str("path", path).Int("tasks", len(tasks)).Msg("normalized tasks served from cache")
	} else {
		out, err = s.Normalize(ctx, res.Tasks)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetTasks(key, out.Tasks); err != nil {
				log.Warn().Err(err).Msg("failed to cache normalized tasks")
			}
		}
	}

	out.Metadata.Source = path
	out.Metadata.Skipped = len(res.Skipped)
	out.Metadata.Warnings = len(res.Warnings)
	out.Metadata.Fingerprint = fingerprint
	return out, nil
}

func (s *Service) cached(key string) ([]models.NormalizedTask, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.GetTasks(key)
}

func (s *Service) metadata(raw, kept int) Metadata {
	return Metadata{
		GeneratedAt:   s.now().UTC(),
		RawCount:      raw,
		FilteredCount: kept,
		DroppedCount:  raw - kept,
		HeatmapMode:   s.mode,
	}
}

// Run normalizes raw tasks and builds the full report.
func (s *Service) Run(ctx context.Context, raw []models.RawTask) (*Report, error) {
	n, err := s.Normalize(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, n)
}

// RunFile loads, normalizes and analyzes the export at path.
func (s *Service) RunFile(ctx context.Context, path string) (*Report, error) {
	n, err := s.NormalizeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, n)
}

// Analyze builds the report of an already normalized collection. Buckets
// are rebuilt on every call.
func (s *Service) Analyze(ctx context.Context, n *Normalized) (*Report, error) {
	buckets := category.GroupTasks(n.Tasks)
	log.Debug().Int("groups", buckets.Len()).Int("tasks", len(n.Tasks)).Msg("grouped tasks")

	layout := s.config.Layout()
	trends, err := s.trendAnalyzer().Analyze(ctx, buckets)
	if err != nil {
		return nil, fmt.Errorf("trend analysis: %w", err)
	}
	for _, g := range trends.Groups {
		if !g.Regression.Defined {
			log.Debug().Str("group", g.Key.String()).Msg("trend fit undefined, all tasks share one timestamp")
		}
	}

	meta := n.Metadata
	meta.HeatmapMode = s.mode
	return &Report{
		Metadata: meta,
		Counts:   category.Summarize(n.Tasks),
		Heatmap:  category.Heatmap(buckets, layout, s.mode),
		Bars:     category.Bars(buckets, layout),
		Trends:   trends,
		Tasks:    n.Tasks,
	}, nil
}

func (s *Service) trendAnalyzer() *trend.Analyzer {
	return trend.New(
		trend.WithMinGroupSize(s.minGroupSize),
		trend.WithOutlierZ(s.config.Analysis.OutlierZ),
		trend.WithWorkers(s.config.Analysis.Workers),
	)
}

// CategoryReport is the category-level view of a report.
type CategoryReport struct {
	Metadata Metadata             `json:"metadata"`
	Counts   category.Counts      `json:"counts"`
	Heatmap  category.HeatmapData `json:"heatmap"`
	Bars     category.BarData     `json:"bars"`
}

// Categories builds counts, heatmap and bars without fitting trends.
func (s *Service) Categories(n *Normalized) *CategoryReport {
	buckets := category.GroupTasks(n.Tasks)
	layout := s.config.Layout()
	meta := n.Metadata
	meta.HeatmapMode = s.mode
	return &CategoryReport{
		Metadata: meta,
		Counts:   category.Summarize(n.Tasks),
		Heatmap:  category.Heatmap(buckets, layout, s.mode),
		Bars:     category.Bars(buckets, layout),
	}
}

// Trends fits trend lines for every qualifying group.
func (s *Service) Trends(ctx context.Context, n *Normalized) (*trend.Analysis, error) {
	return s.trendAnalyzer().Analyze(ctx, category.GroupTasks(n.Tasks))
}

// TrendPage returns one page of trends. A non-positive perPage uses the
// configured page size.
func (s *Service) TrendPage(ctx context.Context, n *Normalized, page, perPage int) (trend.Page, error) {
	a, err := s.Trends(ctx, n)
	if err != nil {
		return trend.Page{}, err
	}
	if perPage <= 0 {
		perPage = s.config.Analysis.TrendsPerPage
	}
	return a.Paginate(page, perPage), nil
}

// Workload asks the distributor for assignments and summarizes them.
func (s *Service) Workload(ctx context.Context, d workload.Distributor, req workload.Request) (workload.Summary, error) {
	assignments, err := d.Distribute(ctx, req)
	if err != nil {
		return workload.Summary{}, fmt.Errorf("distributing tasks: %w", err)
	}
	summary := workload.Summarize(assignments)
	log.Debug().Int("assignees", len(summary.Assignees)).Int("tasks", summary.TaskCount).Msg("summarized workload")
	return summary, nil
}
