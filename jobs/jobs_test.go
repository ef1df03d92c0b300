package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/sakura-salon/sakura/internal/jobs"
	"github.com/sakura-salon/sakura/internal/mail"
)

type recordingSender struct {
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func validMessage() mail.Message {
	return mail.Message{Kind: mail.KindBooking, To: []string{"salon@example.com"}, Subject: "Новая запись", HTML: "<p>ok</p>"}
}

func TestNewSendEmailTaskValidates(t *testing.T) {
	_, err := NewSendEmailTask(mail.Message{})
	require.Error(t, err)

	task, err := NewSendEmailTask(validMessage())
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())
	var decoded mail.Message
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, validMessage(), decoded)
}

func TestMailJobDelivers(t *testing.T) {
	sender := &recordingSender{}
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	job := NewMailJob(sender, nil, metrics)

	task, err := NewSendEmailTask(validMessage())
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Новая запись", sender.sent[0].Subject)
}

func TestMailJobSkipsRetryOnBadPayload(t *testing.T) {
	job := NewMailJob(&recordingSender{}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte(`{"subject":"x"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestMailJobReturnsSendError(t *testing.T) {
	job := NewMailJob(&recordingSender{err: errors.New("smtp down")}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewSendEmailTask(validMessage())
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

type stubWarmer struct {
	count int
	err   error
	calls int
}

func (w *stubWarmer) Warm(context.Context) (int, error) {
	w.calls++
	return w.count, w.err
}

func TestReviewsWarmupJob(t *testing.T) {
	registry := prometheus.NewRegistry()
	warmer := &stubWarmer{count: 7}
	job := NewReviewsWarmupJob(warmer, nil, jobmetrics.NewMetrics(registry))

	require.NoError(t, job.Handle(context.Background(), NewReviewsWarmupTask()))
	assert.Equal(t, 1, warmer.calls)

	families, err := registry.Gather()
	require.NoError(t, err)
	var cached float64
	for _, family := range families {
		if family.GetName() == "sakura_reviews_cached" {
			cached = family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, float64(7), cached)
}

func TestReviewsWarmupJobFailure(t *testing.T) {
	job := NewReviewsWarmupJob(&stubWarmer{err: errors.New("api down")}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	require.Error(t, job.Handle(context.Background(), NewReviewsWarmupTask()))

	var unconfigured *ReviewsWarmupJob
	require.Error(t, unconfigured.Handle(context.Background(), NewReviewsWarmupTask()))
}

type stubPruner struct {
	olderThan time.Duration
	removed   int64
}

func (p *stubPruner) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	p.olderThan = olderThan
	return p.removed, nil
}

func TestIdempotencyCleanupJob(t *testing.T) {
	pruner := &stubPruner{removed: 3}
	job := NewIdempotencyCleanupJob(pruner, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewIdempotencyCleanupTask(24)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 24*time.Hour, pruner.olderThan)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, nil)))
	assert.Equal(t, defaultRetentionHours*time.Hour, pruner.olderThan)

	err = job.Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestJobMetricsRecordOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	job := NewReviewsWarmupJob(&stubWarmer{err: errors.New("boom")}, nil, metrics)
	_ = job.Handle(context.Background(), NewReviewsWarmupTask())

	count, err := testutil.GatherAndCount(registry, "sakura_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHandlerHealth(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4, Failed: 1}}, nil).MountRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var health QueueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, QueueHealth{Queue: QueueDefault, Pending: 4, Failed: 1}, health)
}

func TestHandlerHealthUnavailable(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(stubInspector{err: errors.New("redis down")}, nil).MountRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "Service Unavailable")
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestHandlerHealthWithoutInspector(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(nil, nil).MountRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0,"failed":0,"paused":false}`, rr.Body.String())
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	require.Error(t, err)
}
