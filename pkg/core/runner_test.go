package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerProcessesAllRecords(t *testing.T) {
	records := []QARecord{
		{Dataset: "Retail", URL: "a.jpg", Prompt: "{}"},
		{Dataset: "Retail", URL: "b.jpg", Prompt: "{}"},
		{Dataset: "Retail", URL: "c.jpg", Prompt: "{}"},
	}

	var processed atomic.Int32
	runner := Runner{Records: records, Workers: 2}

	var sunk []Prediction
	stats, err := runner.Run(context.Background(),
		func(_ context.Context, rec QARecord) Prediction {
			processed.Add(1)
			return Prediction{Dataset: rec.Dataset, URL: rec.URL, ModelResult: map[string]any{}}
		},
		func(p Prediction) error {
			sunk = append(sunk, p)
			return nil
		})

	require.NoError(t, err)
	require.Equal(t, int32(3), processed.Load())
	require.Len(t, sunk, 3)
	require.Equal(t, RunStats{Succeeded: 3}, stats)
}

func TestRunnerCountsFailures(t *testing.T) {
	records := []QARecord{
		{URL: "ok.jpg"},
		{URL: "missing.jpg"},
	}

	runner := Runner{Records: records, Workers: 1}
	stats, err := runner.Run(context.Background(),
		func(_ context.Context, rec QARecord) Prediction {
			if rec.URL == "missing.jpg" {
				return Prediction{URL: rec.URL, Error: "cannot resolve image"}
			}
			return Prediction{URL: rec.URL, ModelResult: map[string]any{}}
		},
		func(Prediction) error { return nil })

	require.NoError(t, err)
	require.Equal(t, RunStats{Succeeded: 1, Failed: 1}, stats)
}

func TestRunnerSinkErrorAborts(t *testing.T) {
	records := make([]QARecord, 5)
	runner := Runner{Records: records, Workers: 1}

	sinkErr := errors.New("disk full")
	_, err := runner.Run(context.Background(),
		func(_ context.Context, rec QARecord) Prediction {
			return Prediction{ModelResult: map[string]any{}}
		},
		func(Prediction) error { return sinkErr })

	require.ErrorIs(t, err, sinkErr)
}

func TestRunnerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := Runner{Records: []QARecord{{URL: "a.jpg"}}, Workers: 1}
	_, err := runner.Run(ctx,
		func(_ context.Context, rec QARecord) Prediction { return Prediction{} },
		func(Prediction) error { return nil })

	require.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiterHonorsContext(t *testing.T) {
	limiter, stop, err := NewRateLimiter(1, 1)
	require.NoError(t, err)
	defer stop()

	// Burst token is available immediately.
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}
