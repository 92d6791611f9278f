package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medjourney/simulados-backend/internal/model"
)

// ExamRepository is the durable copy of exam records. The whole record is
// kept as JSONB next to a few columns used for filtering.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by id.
func (r *ExamRepository) GetByID(ctx context.Context, id string) (*model.Exam, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT record FROM exams WHERE id = $1`, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	e := &model.Exam{}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("decode exam %s: %w", id, err)
	}
	return e, nil
}

// ListByOwner retrieves all exams of a user, newest first.
func (r *ExamRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT record FROM exams
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var e model.Exam
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode exam: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// examConflictGuard keeps the stored row when the incoming snapshot is older
// or would reopen a closed exam. It mirrors model.Exam.Supersedes.
const examConflictGuard = `
	WHERE exams.version <= EXCLUDED.version
	  AND (exams.status NOT IN ('concluido', 'cancelado')
	       OR EXCLUDED.status IN ('concluido', 'cancelado'))`

// Upsert writes the whole exam record unless a newer one is stored.
func (r *ExamRepository) Upsert(ctx context.Context, e *model.Exam) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode exam: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO exams (id, owner_id, status, record, created_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET status = EXCLUDED.status, record = EXCLUDED.record,
		     version = EXCLUDED.version, updated_at = NOW()`+examConflictGuard,
		e.ID, e.OwnerID, e.Status, raw, e.CreatedAt, e.Version,
	)
	return err
}

// BulkUpsert writes a batch of exam records in one statement, with the same
// guard as Upsert.
func (r *ExamRepository) BulkUpsert(ctx context.Context, exams []*model.Exam) error {
	n := len(exams)
	if n == 0 {
		return nil
	}

	ids := make([]string, 0, n)
	owners := make([]string, 0, n)
	statuses := make([]string, 0, n)
	records := make([][]byte, 0, n)
	versions := make([]int64, 0, n)

	// ON CONFLICT cannot touch one row twice in a statement.
	for _, e := range LatestSnapshots(exams) {
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode exam %s: %w", e.ID, err)
		}
		ids = append(ids, e.ID)
		owners = append(owners, e.OwnerID)
		statuses = append(statuses, string(e.Status))
		records = append(records, raw)
		versions = append(versions, e.Version)
	}

	query := `
		INSERT INTO exams (id, owner_id, status, record, created_at, version)
		SELECT u.id, u.owner_id, u.status, u.record, (u.record->>'dataCriacao')::timestamptz, u.version
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::jsonb[],
			$5::bigint[]
		) AS u (id, owner_id, status, record, version)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    record = EXCLUDED.record,
		    version = EXCLUDED.version,
		    updated_at = NOW()` + examConflictGuard

	_, err := r.pool.Exec(ctx, query, ids, owners, statuses, records, versions)
	return err
}

// Delete removes an exam and its answers.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM exam_answers WHERE exam_id = $1`, id); err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// LatestSnapshots keeps one snapshot per exam, the one that supersedes the
// others, in order of first appearance.
func LatestSnapshots(exams []*model.Exam) []*model.Exam {
	out := make([]*model.Exam, 0, len(exams))
	seen := make(map[string]int, len(exams))
	for _, e := range exams {
		if i, ok := seen[e.ID]; ok {
			if e.Supersedes(out[i]) {
				out[i] = e
			}
			continue
		}
		seen[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}
