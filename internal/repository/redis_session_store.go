package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/medjourney/simulados-backend/internal/config"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ExamFallback is the durable source consulted when Redis misses an exam.
type ExamFallback interface {
	GetByID(ctx context.Context, id string) (*model.Exam, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Exam, error)
	Delete(ctx context.Context, id string) error
}

// AnswerFallback is the durable source consulted when Redis has no answers.
type AnswerFallback interface {
	ListByExam(ctx context.Context, examID string) (model.AnswerMap, error)
}

// RedisSessionStore keeps exams and answer maps in Redis:
//
//	exam:{id}          JSON exam record (whole-record overwrite)
//	exam-answers:{id}  hash question id → alternative id (one field per answer)
//
// Every write also queues a job so the workers persist it to PostgreSQL.
type RedisSessionStore struct {
	rdb     *redis.Client
	exams   ExamFallback
	answers AnswerFallback
	log     zerolog.Logger
	now     func() time.Time
}

// NewRedisSessionStore creates a RedisSessionStore. exams and answers may be
// nil, in which case a Redis miss is final.
func NewRedisSessionStore(rdb *redis.Client, exams ExamFallback, answers AnswerFallback, log zerolog.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		rdb:     rdb,
		exams:   exams,
		answers: answers,
		log:     log.With().Str("component", "redis_session_store").Logger(),
		now:     time.Now,
	}
}

// AnswerJob is queued on every answer write for the autosave worker.
// AnsweredAt orders writes to the same question once they reach PostgreSQL.
type AnswerJob struct {
	ExamID     string    `json:"exam_id"`
	QID        string    `json:"q_id"`
	Answer     string    `json:"answer"`
	AnsweredAt time.Time `json:"answered_at"`
}

// noAnswersTTL bounds how long an exam known to have no answers skips
// PostgreSQL on reads.
const noAnswersTTL = 10 * time.Minute

// GetExam loads an exam, falling back to PostgreSQL on a cache miss.
func (s *RedisSessionStore) GetExam(ctx context.Context, id string) (*model.Exam, error) {
	key := config.CacheKey.ExamKey(id)

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		e := &model.Exam{}
		if err := json.Unmarshal(data, e); err != nil {
			return nil, fmt.Errorf("decode exam %s: %w", id, err)
		}
		return e, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis get exam: %w", err)
	}

	if s.exams == nil {
		return nil, ErrNotFound
	}

	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Self-heal so the next read is served by Redis.
	if raw, err := json.Marshal(e); err == nil {
		pipe := s.rdb.Pipeline()
		pipe.Set(ctx, key, raw, 0)
		pipe.SAdd(ctx, config.CacheKey.UserExamsKey(e.OwnerID), e.ID)
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Warn().Err(err).Str("exam_id", id).Msg("Failed to re-cache exam")
		}
	}
	return e, nil
}

// SaveExam overwrites the whole exam record and queues it for persistence.
// It advances e.Version so PostgreSQL can discard snapshots that arrive late.
func (s *RedisSessionStore) SaveExam(ctx context.Context, e *model.Exam) error {
	e.Touch(s.now())
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode exam: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.ExamKey(e.ID), raw, 0)
	pipe.SAdd(ctx, config.CacheKey.UserExamsKey(e.OwnerID), e.ID)
	pipe.RPush(ctx, config.WorkerKey.PersistExamsQueue, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save exam: %w", err)
	}
	return nil
}

// DeleteExam removes an exam and its answers from Redis and PostgreSQL.
func (s *RedisSessionStore) DeleteExam(ctx context.Context, e *model.Exam) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx,
		config.CacheKey.ExamKey(e.ID),
		config.CacheKey.ExamAnswersKey(e.ID),
		config.CacheKey.ExamNoAnswersKey(e.ID),
	)
	pipe.SRem(ctx, config.CacheKey.UserExamsKey(e.OwnerID), e.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete exam: %w", err)
	}

	if s.exams != nil {
		if err := s.exams.Delete(ctx, e.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete exam: %w", err)
		}
	}
	return nil
}

// ListExams returns the exams of a user. An empty Redis set falls back to
// PostgreSQL and re-caches what it finds.
func (s *RedisSessionStore) ListExams(ctx context.Context, ownerID string) ([]model.Exam, error) {
	ids, err := s.rdb.SMembers(ctx, config.CacheKey.UserExamsKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list exams: %w", err)
	}
	if len(ids) == 0 {
		return s.listFromFallback(ctx, ownerID)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = config.CacheKey.ExamKey(id)
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget exams: %w", err)
	}

	exams := make([]model.Exam, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Evicted record: GetExam knows how to recover it.
			e, err := s.GetExam(ctx, ids[i])
			if err == nil {
				exams = append(exams, *e)
			}
			continue
		}
		var e model.Exam
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			s.log.Warn().Err(err).Str("exam_id", ids[i]).Msg("Skipping undecodable exam")
			continue
		}
		exams = append(exams, e)
	}
	return exams, nil
}

func (s *RedisSessionStore) listFromFallback(ctx context.Context, ownerID string) ([]model.Exam, error) {
	if s.exams == nil {
		return []model.Exam{}, nil
	}

	exams, err := s.exams.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	if len(exams) == 0 {
		return []model.Exam{}, nil
	}

	pipe := s.rdb.Pipeline()
	for i := range exams {
		raw, err := json.Marshal(&exams[i])
		if err != nil {
			continue
		}
		pipe.Set(ctx, config.CacheKey.ExamKey(exams[i].ID), raw, 0)
		pipe.SAdd(ctx, config.CacheKey.UserExamsKey(ownerID), exams[i].ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("owner_id", ownerID).Msg("Failed to re-cache exams")
	}
	return exams, nil
}

// GetAnswers returns the answer map of an exam. Absent answers yield an
// empty map. An empty result from PostgreSQL is remembered for a while so
// unanswered exams do not reach the database on every read.
func (s *RedisSessionStore) GetAnswers(ctx context.Context, examID string) (model.AnswerMap, error) {
	key := config.CacheKey.ExamAnswersKey(examID)
	emptyKey := config.CacheKey.ExamNoAnswersKey(examID)

	pipe := s.rdb.Pipeline()
	hash := pipe.HGetAll(ctx, key)
	known := pipe.Exists(ctx, emptyKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis get answers: %w", err)
	}
	values := hash.Val()
	if len(values) > 0 || s.answers == nil || known.Val() > 0 {
		return model.AnswerMap(values), nil
	}

	answers, err := s.answers.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	if len(answers) == 0 {
		if err := s.rdb.Set(ctx, emptyKey, 1, noAnswersTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID).Msg("Failed to mark exam without answers")
		}
		return answers, nil
	}

	fields := make(map[string]interface{}, len(answers))
	for q, a := range answers {
		fields[q] = a
	}
	if err := s.rdb.HSet(ctx, key, fields).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID).Msg("Failed to re-cache answers")
	}
	return answers, nil
}

// PutAnswer upserts a single answer and queues it for persistence.
func (s *RedisSessionStore) PutAnswer(ctx context.Context, examID, questionID, alternativeID string) error {
	job, err := json.Marshal(AnswerJob{
		ExamID:     examID,
		QID:        questionID,
		Answer:     alternativeID,
		AnsweredAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("encode answer job: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, config.CacheKey.ExamAnswersKey(examID), questionID, alternativeID)
	pipe.Del(ctx, config.CacheKey.ExamNoAnswersKey(examID))
	pipe.RPush(ctx, config.WorkerKey.PersistAnswersQueue, job)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put answer: %w", err)
	}
	return nil
}
