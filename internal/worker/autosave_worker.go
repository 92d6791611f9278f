package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/medjourney/simulados-backend/internal/config"
	"github.com/medjourney/simulados-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	AnswerPollTimeout = 1 * time.Second
	AnswerRetryDelay  = 5 * time.Second
)

// AnswerWriter is the durable side of an answer write.
type AnswerWriter interface {
	Upsert(ctx context.Context, examID, questionID, alternativeID string, answeredAt time.Time) error
}

// AutosaveWorker consumes persist_answers_queue and upserts answers into
// PostgreSQL, one row per exam and question.
type AutosaveWorker struct {
	answers    AnswerWriter
	rdb        *redis.Client
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(answers AnswerWriter, rdb *redis.Client, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		answers:    answers,
		rdb:        rdb,
		log:        log.With().Str("component", "autosave_worker").Logger(),
		retryDelay: AnswerRetryDelay,
	}
}

// Start runs the worker loop until ctx is cancelled, then drains the queue.
// Call in a goroutine.
func (w *AutosaveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AutosaveWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, AnswerPollTimeout, config.WorkerKey.PersistAnswersQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			sleepCtx(ctx, time.Second)
		}
		return
	}
	if len(result) < 2 {
		return
	}

	var job repository.AnswerJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		w.log.Error().Err(err).Msg("Dropping undecodable answer job")
		return
	}

	if err := w.answers.Upsert(ctx, job.ExamID, job.QID, job.Answer, job.AnsweredAt); err != nil {
		w.log.Error().Err(err).
			Str("exam_id", job.ExamID).
			Str("question_id", job.QID).
			Dur("retry_in", w.retryDelay).
			Msg("Persist error, requeueing")
		// Back to the head so later answers to the same question stay behind it.
		w.rdb.LPush(context.Background(), config.WorkerKey.PersistAnswersQueue, result[1])
		sleepCtx(ctx, w.retryDelay)
	}
}

// drain persists whatever is still queued before shutdown.
func (w *AutosaveWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistAnswersQueue).Result()
		if err != nil {
			break
		}

		var job repository.AnswerJob
		if err := json.Unmarshal([]byte(result), &job); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.answers.Upsert(ctx, job.ExamID, job.QID, job.Answer, job.AnsweredAt); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.LPush(ctx, config.WorkerKey.PersistAnswersQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
