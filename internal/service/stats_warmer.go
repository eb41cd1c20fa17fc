package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/consultation-api/internal/models"
	"github.com/noah-isme/consultation-api/pkg/jobs"
)

type statsComputer interface {
	Today() time.Time
	GetStats(ctx context.Context, filter models.ConsultationFilter, opts StatsOptions) (models.ConsultationStats, bool, error)
}

// StatsWarmerConfig controls which presets are precomputed and how often.
type StatsWarmerConfig struct {
	Presets  []string
	Interval time.Duration
	Workers  int
}

// StatsWarmer keeps unscoped stats for common presets in cache so dashboards open on a hit.
type StatsWarmer struct {
	stats    statsComputer
	queue    *jobs.Queue[string]
	presets  []string
	interval time.Duration
	logger   *zap.Logger
}

// NewStatsWarmer constructs a warmer. Without presets it defaults to the current and previous month.
func NewStatsWarmer(stats statsComputer, logger *zap.Logger, cfg StatsWarmerConfig) *StatsWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Presets) == 0 {
		cfg.Presets = []string{PresetThisMonth, PresetLastMonth}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	w := &StatsWarmer{
		stats:    stats,
		presets:  cfg.Presets,
		interval: cfg.Interval,
		logger:   logger,
	}
	w.queue = jobs.NewQueue("stats-warmer", w.warm, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: len(cfg.Presets) * 2,
		MaxRetries: 1,
		RetryDelay: 5 * time.Second,
		Logger:     logger,
	})
	return w
}

// Run warms immediately and then on every interval until ctx is cancelled.
func (w *StatsWarmer) Run(ctx context.Context) {
	w.queue.Start(ctx)
	defer w.queue.Stop()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.schedule()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.schedule()
		}
	}
}

func (w *StatsWarmer) schedule() {
	for _, preset := range w.presets {
		if err := w.queue.TryEnqueue(jobs.Job[string]{ID: preset, Payload: preset}); err != nil {
			w.logger.Debug("stats warm-up skipped", zap.String("preset", preset), zap.Error(err))
		}
	}
}

func (w *StatsWarmer) warm(ctx context.Context, job jobs.Job[string]) error {
	dateRange, err := ResolveDatePreset(job.Payload, w.stats.Today())
	if err != nil {
		w.logger.Warn("stats warm-up preset rejected", zap.String("preset", job.Payload), zap.Error(err))
		return nil
	}
	if dateRange == nil {
		dateRange = &models.DateRange{}
	}
	stats, hit, err := w.stats.GetStats(ctx, models.ConsultationFilter{DateRange: dateRange}, StatsOptions{})
	if err != nil {
		return err
	}
	w.logger.Debug("stats warmed",
		zap.String("preset", job.Payload),
		zap.Bool("cache_hit", hit),
		zap.Int("consultations", stats.TotalConsultations))
	return nil
}
