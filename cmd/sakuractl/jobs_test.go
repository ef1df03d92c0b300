package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-salon/sakura/jobs"
)

func newTestCLI(t *testing.T) *JobsCLI {
	t.Helper()
	cli := NewJobsCLI(asynq.RedisClientOpt{Addr: "127.0.0.1:0"}, 48)
	t.Cleanup(func() { _ = cli.Close() })
	return cli
}

func TestTaskBuildsSupportedJobs(t *testing.T) {
	cli := newTestCLI(t)

	warmup, err := cli.Task(jobs.TaskReviewsWarmup)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskReviewsWarmup, warmup.Type())

	cleanup, err := cli.Task(jobs.TaskIdempotencyCleanup)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskIdempotencyCleanup, cleanup.Type())
	assert.JSONEq(t, `{"retention_hours":48}`, string(cleanup.Payload()))
}

func TestTriggerRejectsUnknownJob(t *testing.T) {
	cli := newTestCLI(t)
	_, err := cli.Trigger(context.Background(), "mail:send")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported job")
}

func TestRunWithoutArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")
}
