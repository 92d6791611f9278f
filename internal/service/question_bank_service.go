package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/repository"
	"github.com/rs/zerolog"
)

// QuestionBankService manages question banks and their questions.
type QuestionBankService struct {
	banks BankStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewQuestionBankService creates a new QuestionBankService.
func NewQuestionBankService(banks BankStore, log zerolog.Logger) *QuestionBankService {
	return &QuestionBankService{
		banks: banks,
		log:   log.With().Str("component", "question_bank_service").Logger(),
		now:   time.Now,
	}
}

// buildQuestion validates input and turns it into a question. A question
// needs 2 to 5 alternatives and exactly one of them flagged correct.
func buildQuestion(id string, in *model.QuestionInput) (model.Question, error) {
	if n := len(in.Alternatives); n < 2 || n > 5 {
		return model.Question{}, fmt.Errorf("%w: %d alternatives, need 2 to 5", ErrInvalidQuestion, n)
	}

	q := model.Question{
		ID:           id,
		Prompt:       in.Prompt,
		Explanation:  in.Explanation,
		Discipline:   in.Discipline,
		Topic:        in.Topic,
		Difficulty:   in.Difficulty,
		Image:        in.Image,
		Alternatives: make([]model.Alternative, 0, len(in.Alternatives)),
	}

	seen := make(map[string]bool, len(in.Alternatives))
	for _, a := range in.Alternatives {
		altID := a.ID
		if altID == "" {
			altID = uuid.NewString()
		}
		if seen[altID] {
			return model.Question{}, fmt.Errorf("%w: duplicate alternative id %q", ErrInvalidQuestion, altID)
		}
		seen[altID] = true
		q.Alternatives = append(q.Alternatives, model.Alternative{ID: altID, Text: a.Text, Correct: a.Correct})
	}

	if n := q.CorrectCount(); n != 1 {
		return model.Question{}, fmt.Errorf("%w: %d correct alternatives, need exactly 1", ErrInvalidQuestion, n)
	}
	return q, nil
}

func syncDisciplines(b *model.QuestionBank) {
	var disciplines []string
	for _, q := range b.Questions {
		if !slices.Contains(disciplines, q.Discipline) {
			disciplines = append(disciplines, q.Discipline)
		}
	}
	if disciplines == nil {
		disciplines = []string{}
	}
	b.Disciplines = disciplines
}

// CreateBank creates a bank, optionally with an initial set of questions.
func (s *QuestionBankService) CreateBank(ctx context.Context, ownerID string, req *model.CreateQuestionBankRequest) (*model.QuestionBank, error) {
	b := &model.QuestionBank{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      req.Name,
		Questions: make([]model.Question, 0, len(req.Questions)),
		CreatedAt: s.now(),
	}

	for i := range req.Questions {
		q, err := buildQuestion(uuid.NewString(), &req.Questions[i])
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		b.Questions = append(b.Questions, q)
	}
	syncDisciplines(b)

	if err := s.banks.SaveBank(ctx, b); err != nil {
		s.log.Error().Err(err).Msg("Save bank failed")
		return nil, persistenceErr("save bank", err)
	}

	s.log.Info().Str("bank_id", b.ID).Int("questions", len(b.Questions)).Msg("Question bank created")
	return b, nil
}

// GetBank returns a bank owned by ownerID.
func (s *QuestionBankService) GetBank(ctx context.Context, ownerID, bankID string) (*model.QuestionBank, error) {
	b, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBankNotFound
		}
		return nil, persistenceErr("load bank", err)
	}
	if b.OwnerID != ownerID {
		return nil, ErrBankNotFound
	}
	return b, nil
}

// ListBanks returns the banks of a user.
func (s *QuestionBankService) ListBanks(ctx context.Context, ownerID string) ([]model.QuestionBank, error) {
	banks, err := s.banks.ListBanks(ctx, ownerID)
	if err != nil {
		return nil, persistenceErr("list banks", err)
	}
	if banks == nil {
		banks = []model.QuestionBank{}
	}
	return banks, nil
}

// DeleteBank removes a bank. Exams already generated keep their snapshot.
func (s *QuestionBankService) DeleteBank(ctx context.Context, ownerID, bankID string) error {
	if _, err := s.GetBank(ctx, ownerID, bankID); err != nil {
		return err
	}
	if err := s.banks.DeleteBank(ctx, bankID); err != nil {
		return persistenceErr("delete bank", err)
	}
	return nil
}

func (s *QuestionBankService) save(ctx context.Context, b *model.QuestionBank) error {
	now := s.now()
	b.UpdatedAt = &now
	syncDisciplines(b)
	if err := s.banks.SaveBank(ctx, b); err != nil {
		s.log.Error().Err(err).Str("bank_id", b.ID).Msg("Save bank failed")
		return persistenceErr("save bank", err)
	}
	return nil
}

// AddQuestion appends a question to a bank.
func (s *QuestionBankService) AddQuestion(ctx context.Context, ownerID, bankID string, in *model.QuestionInput) (*model.Question, error) {
	b, err := s.GetBank(ctx, ownerID, bankID)
	if err != nil {
		return nil, err
	}

	q, err := buildQuestion(uuid.NewString(), in)
	if err != nil {
		return nil, err
	}
	b.Questions = append(b.Questions, q)

	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuestion replaces a question of a bank, keeping its id.
func (s *QuestionBankService) UpdateQuestion(ctx context.Context, ownerID, bankID, questionID string, in *model.QuestionInput) (*model.Question, error) {
	b, err := s.GetBank(ctx, ownerID, bankID)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(b.Questions, func(q model.Question) bool { return q.ID == questionID })
	if idx < 0 {
		return nil, ErrQuestionNotFound
	}

	q, err := buildQuestion(questionID, in)
	if err != nil {
		return nil, err
	}
	b.Questions[idx] = q

	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	return &q, nil
}

// RemoveQuestion deletes a question; disciplines no longer used are dropped.
func (s *QuestionBankService) RemoveQuestion(ctx context.Context, ownerID, bankID, questionID string) error {
	b, err := s.GetBank(ctx, ownerID, bankID)
	if err != nil {
		return err
	}

	before := len(b.Questions)
	b.Questions = slices.DeleteFunc(b.Questions, func(q model.Question) bool { return q.ID == questionID })
	if len(b.Questions) == before {
		return ErrQuestionNotFound
	}

	return s.save(ctx, b)
}
