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

// QuestionBankRepository handles question bank data access. Questions are
// stored inside the bank row as JSONB.
type QuestionBankRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionBankRepository creates a new QuestionBankRepository.
func NewQuestionBankRepository(pool *pgxpool.Pool) *QuestionBankRepository {
	return &QuestionBankRepository{pool: pool}
}

const bankColumns = `id, owner_id, name, questions, disciplines, created_at, updated_at`

func scanBank(row pgx.Row) (*model.QuestionBank, error) {
	b := &model.QuestionBank{}
	var questions []byte
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &questions, &b.Disciplines, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(questions, &b.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of bank %s: %w", b.ID, err)
	}
	if b.Disciplines == nil {
		b.Disciplines = []string{}
	}
	return b, nil
}

// GetBank retrieves a bank by id.
func (r *QuestionBankRepository) GetBank(ctx context.Context, id string) (*model.QuestionBank, error) {
	return scanBank(r.pool.QueryRow(ctx,
		`SELECT `+bankColumns+` FROM question_banks WHERE id = $1`, id))
}

// ListBanks retrieves all banks of a user.
func (r *QuestionBankRepository) ListBanks(ctx context.Context, ownerID string) ([]model.QuestionBank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bankColumns+` FROM question_banks
		 WHERE owner_id = $1
		 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []model.QuestionBank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, *b)
	}
	return banks, rows.Err()
}

// SaveBank inserts or replaces a whole bank.
func (r *QuestionBankRepository) SaveBank(ctx context.Context, b *model.QuestionBank) error {
	questions, err := json.Marshal(b.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO question_banks (id, owner_id, name, questions, disciplines, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name,
		     questions = EXCLUDED.questions,
		     disciplines = EXCLUDED.disciplines,
		     updated_at = EXCLUDED.updated_at`,
		b.ID, b.OwnerID, b.Name, questions, b.Disciplines, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// DeleteBank removes a bank.
func (r *QuestionBankRepository) DeleteBank(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM question_banks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
