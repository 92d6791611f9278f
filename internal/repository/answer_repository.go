package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medjourney/simulados-backend/internal/model"
)

// AnswerRepository stores one row per exam/question pair.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Upsert creates or replaces the answer for one question. A write answered
// before the stored one is ignored.
func (r *AnswerRepository) Upsert(ctx context.Context, examID, questionID, alternativeID string, answeredAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_answers (exam_id, question_id, alternative_id, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, question_id) DO UPDATE
		 SET alternative_id = EXCLUDED.alternative_id, updated_at = EXCLUDED.updated_at
		 WHERE exam_answers.updated_at <= EXCLUDED.updated_at`,
		examID, questionID, alternativeID, answeredAt,
	)
	return err
}

// ListByExam returns the answer map of an exam. An exam without answers
// yields an empty map.
func (r *AnswerRepository) ListByExam(ctx context.Context, examID string) (model.AnswerMap, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, alternative_id FROM exam_answers WHERE exam_id = $1`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make(model.AnswerMap)
	for rows.Next() {
		var qID, altID string
		if err := rows.Scan(&qID, &altID); err != nil {
			return nil, err
		}
		answers[qID] = altID
	}
	return answers, rows.Err()
}
