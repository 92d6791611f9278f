package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/medjourney/simulados-backend/internal/config"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	SnapshotBatchSize    = 50
	SnapshotBatchTimeout = 2 * time.Second
	SnapshotPollTimeout  = 1 * time.Second
)

// ExamWriter is the durable side of an exam write.
type ExamWriter interface {
	BulkUpsert(ctx context.Context, exams []*model.Exam) error
	Upsert(ctx context.Context, e *model.Exam) error
}

// ExamSnapshotWorker consumes persist_exams_queue and writes whole exam
// records to PostgreSQL in batches.
type ExamSnapshotWorker struct {
	exams ExamWriter
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewExamSnapshotWorker creates a new ExamSnapshotWorker.
func NewExamSnapshotWorker(exams ExamWriter, rdb *redis.Client, log zerolog.Logger) *ExamSnapshotWorker {
	return &ExamSnapshotWorker{
		exams: exams,
		rdb:   rdb,
		log:   log.With().Str("component", "exam_snapshot_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs the worker loop until ctx is cancelled, then flushes what it
// holds and drains the queue. Call in a goroutine.
func (w *ExamSnapshotWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ExamSnapshotWorker started")

	batch := make([]*model.Exam, 0, SnapshotBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= SnapshotBatchSize || time.Since(lastFlush) >= SnapshotBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			return

		default:
			item, err := w.rdb.BLPop(ctx, SnapshotPollTimeout, config.WorkerKey.PersistExamsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
					sleepCtx(ctx, time.Second)
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			e, err := decodeExam(item[1])
			if err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}
			batch = append(batch, e)
		}
	}
}

func decodeExam(raw string) (*model.Exam, error) {
	var e model.Exam
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ----------------------------------------------------------------
// Batch upsert with per-row fallback
// ----------------------------------------------------------------

func (w *ExamSnapshotWorker) flushSafe(ctx context.Context, batch []*model.Exam) {
	if len(batch) == 0 {
		return
	}
	// Only the newest snapshot of each exam is worth writing.
	batch = repository.LatestSnapshots(batch)

	err := w.exams.BulkUpsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Exam batch persisted")
		return
	}

	w.log.Warn().Err(err).Msg("bulk exam upsert failed, using fallback")
	var failed []string
	for _, e := range batch {
		if err := w.exams.Upsert(ctx, e); err != nil {
			w.log.Error().Err(err).Str("exam_id", e.ID).Msg("Upsert failed, requeueing")
			raw, _ := json.Marshal(e)
			failed = append(failed, string(raw))
		}
	}
	w.requeue(context.Background(), failed)
}

// requeue puts raws back at the head of the queue in their original order,
// ahead of any snapshot that was queued after them.
func (w *ExamSnapshotWorker) requeue(ctx context.Context, raws []string) {
	if len(raws) == 0 {
		return
	}
	pipe := w.rdb.Pipeline()
	for i := len(raws) - 1; i >= 0; i-- {
		pipe.LPush(ctx, config.WorkerKey.PersistExamsQueue, raws[i])
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(raws)).Msg("Requeue failed")
	}
}

// drain flushes everything still queued, one batch at a time.
func (w *ExamSnapshotWorker) drain(ctx context.Context) {
	for {
		raws, err := w.rdb.LPopCount(ctx, config.WorkerKey.PersistExamsQueue, SnapshotBatchSize).Result()
		if err != nil || len(raws) == 0 {
			return
		}

		batch := make([]*model.Exam, 0, len(raws))
		for _, raw := range raws {
			e, err := decodeExam(raw)
			if err != nil {
				w.log.Error().Err(err).Msg("Drain unmarshal error")
				continue
			}
			batch = append(batch, e)
		}
		batch = repository.LatestSnapshots(batch)

		if err := w.exams.BulkUpsert(ctx, batch); err != nil {
			// Give up on the rest; the records stay in Redis for the next run.
			w.log.Error().Err(err).Int("count", len(batch)).Msg("Drain persist error")
			w.requeue(ctx, raws)
			return
		}
		w.log.Info().Int("count", len(batch)).Msg("Drained remaining exams")
	}
}
