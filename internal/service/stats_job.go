package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// ContentGauge принимает свежие количества контента (реализуется metrics.Metrics)
type ContentGauge interface {
	SetContentCounts(topics, questions int64)
}

// StatsJob периодически обновляет gauge-и объема контента.
// Запускается точкой входа сервера, сборка приложения его не стартует.
type StatsJob struct {
	scheduler *gocron.Scheduler
	stats     *StatsService
	gauge     ContentGauge
	interval  time.Duration
	log       logrus.FieldLogger
}

// NewStatsJob создает задачу; interval <= 0 означает раз в минуту
func NewStatsJob(stats *StatsService, gauge ContentGauge, interval time.Duration, log logrus.FieldLogger) *StatsJob {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StatsJob{
		scheduler: gocron.NewScheduler(time.UTC),
		stats:     stats,
		gauge:     gauge,
		interval:  interval,
		log:       log.WithField("component", "stats_job"),
	}
}

// Start регистрирует задачу и запускает планировщик в фоне. Первый прогон - сразу.
func (j *StatsJob) Start() error {
	_, err := j.scheduler.Every(j.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := j.Refresh(ctx); err != nil {
			j.log.WithError(err).Warn("Content stats refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule stats job: %w", err)
	}
	j.scheduler.StartAsync()
	j.log.WithField("interval", j.interval.String()).Info("Stats job started")
	return nil
}

// Stop останавливает планировщик
func (j *StatsJob) Stop() {
	j.scheduler.Stop()
}

// Refresh один раз пересчитывает количества и обновляет gauge
func (j *StatsJob) Refresh(ctx context.Context) error {
	stats, err := j.stats.ContentStats(ctx)
	if err != nil {
		return err
	}
	if j.gauge != nil {
		j.gauge.SetContentCounts(stats.Topics, stats.Questions)
	}
	return nil
}
