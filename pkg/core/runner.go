package core

import (
	"context"
	"errors"
	"sync"
)

// Runner fans a batch of QA records out to a bounded worker pool and hands
// each finished prediction to a sequential sink, in completion order. The sink
// is what appends lines to result_<model>.jsonl, so it must never be called
// concurrently.
type Runner struct {
	Records     []QARecord
	Workers     int
	RateLimiter RateLimiter
	Progress    func(completed, total int)
}

// RunStats counts records that produced a model result versus records that
// failed outright (image resolution or exhausted retries).
type RunStats struct {
	Succeeded int
	Failed    int
}

// Run processes every record and returns once the pool drains or the context
// is cancelled. process runs on worker goroutines; sink runs on the collector.
func (r *Runner) Run(ctx context.Context, process func(context.Context, QARecord) Prediction, sink func(Prediction) error) (RunStats, error) {
	if process == nil || sink == nil {
		return RunStats{}, errors.New("runner: process and sink are required")
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(r.Records) && len(r.Records) > 0 {
		workers = len(r.Records)
	}

	recordCh := make(chan QARecord)
	resultCh := make(chan Prediction, workers)

	go func() {
		defer close(recordCh)
		for _, rec := range r.Records {
			select {
			case <-ctx.Done():
				return
			case recordCh <- rec:
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for rec := range recordCh {
				if r.RateLimiter != nil {
					if err := r.RateLimiter.Wait(ctx); err != nil {
						return
					}
				}
				pred := process(ctx, rec)
				select {
				case resultCh <- pred:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var stats RunStats
	completed := 0
	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case pred, ok := <-resultCh:
			if !ok {
				if err := ctx.Err(); err != nil {
					return stats, err
				}
				return stats, nil
			}
			if err := sink(pred); err != nil {
				return stats, err
			}
			if pred.Failed() {
				stats.Failed++
			} else {
				stats.Succeeded++
			}
			completed++
			if r.Progress != nil {
				r.Progress(completed, len(r.Records))
			}
		}
	}
}
