package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/sakura-salon/sakura/internal/jobs"
)

// ReviewsWarmer reloads the public reviews cache and reports how many
// reviews it holds.
type ReviewsWarmer interface {
	Warm(ctx context.Context) (int, error)
}

// ReviewsWarmupJob keeps the reviews page served from cache.
type ReviewsWarmupJob struct {
	Reviews ReviewsWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewReviewsWarmupJob wires dependencies for the warmup handler.
func NewReviewsWarmupJob(reviews ReviewsWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReviewsWarmupJob {
	return &ReviewsWarmupJob{Reviews: reviews, Logger: logger, Metrics: metrics, Timeout: 30 * time.Second}
}

// Handle processes TaskReviewsWarmup tasks.
func (j *ReviewsWarmupJob) Handle(ctx context.Context, _ *asynq.Task) (resultErr error) {
	if j == nil || j.Reviews == nil {
		return errors.New("reviews warmup: handler not configured")
	}
	metrics := j.metrics()
	tracker := metrics.Track(TaskReviewsWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	started := time.Now()
	count, err := j.Reviews.Warm(ctx)
	if err != nil {
		j.logger().Error("warm reviews", slog.Any("error", err))
		return err
	}
	metrics.ReviewsWarmed(count)
	j.logger().Info("completed reviews warmup", slog.Int("reviews", count), slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *ReviewsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReviewsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReviewsWarmup))
}

func (j *ReviewsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
