package persistence

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
)

// Journal is an EventSink that records task signals for one run. Publish never
// blocks the tick: signals queue in a buffer that Run drains in batches, and
// are counted as dropped when the buffer is full.
type Journal struct {
	repo     JournalRepository
	runID    uuid.UUID
	queue    chan task.Signal
	interval time.Duration
	maxBatch int
	dropped  atomic.Int64
	written  atomic.Int64
}

// NewJournal creates a journal for an already started run
func NewJournal(repo JournalRepository, runID uuid.UUID, buffer int, interval time.Duration) *Journal {
	if buffer <= 0 {
		buffer = 1024
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Journal{
		repo:     repo,
		runID:    runID,
		queue:    make(chan task.Signal, buffer),
		interval: interval,
		maxBatch: 200,
	}
}

// RunID returns the run signals are recorded under
func (j *Journal) RunID() uuid.UUID {
	return j.runID
}

// Publish queues a signal
func (j *Journal) Publish(ctx context.Context, signal task.Signal) {
	select {
	case j.queue <- signal:
	default:
		if j.dropped.Add(1) == 1 {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Journal buffer full, dropping signals", map[string]interface{}{
				"run_id": j.runID.String(),
			})
		}
	}
}

// Dropped returns how many signals were discarded
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

// Written returns how many signals reached the repository
func (j *Journal) Written() int64 {
	return j.written.Load()
}

// Run writes queued signals until ctx is cancelled, then flushes what is left
func (j *Journal) Run(ctx context.Context) error {
	logger := common.LoggerFromContext(ctx)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	batch := make([]task.Signal, 0, j.maxBatch)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := j.repo.Append(ctx, j.runID, batch); err != nil {
			logger.Log(common.LevelError, "Failed to write journal batch", map[string]interface{}{
				"run_id": j.runID.String(),
				"count":  len(batch),
				"error":  err.Error(),
			})
		} else {
			j.written.Add(int64(len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case s := <-j.queue:
					batch = append(batch, s)
				default:
					flush(context.WithoutCancel(ctx))
					return nil
				}
			}
		case s := <-j.queue:
			batch = append(batch, s)
			if len(batch) >= j.maxBatch {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}
