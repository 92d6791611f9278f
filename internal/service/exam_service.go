package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ExamService creates exams from question banks and manages them.
type ExamService struct {
	exams   ExamStore
	banks   BankStore
	log     zerolog.Logger
	now     func() time.Time
	shuffle func([]model.Question)
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamStore, banks BankStore, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams: exams,
		banks: banks,
		log:   log.With().Str("component", "exam_service").Logger(),
		now:   time.Now,
		shuffle: func(qs []model.Question) {
			rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		},
	}
}

// Generate builds and stores a new exam. Hand-picked questions are used as
// given; otherwise questions are drawn at random from the owner's banks,
// preferring the requested disciplines and topping up from the others.
func (s *ExamService) Generate(ctx context.Context, ownerID string, req *model.CreateExamRequest) (*model.Exam, error) {
	banks, err := s.banks.ListBanks(ctx, ownerID)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("List banks failed")
		return nil, persistenceErr("list banks", err)
	}

	var pool []model.Question
	for _, b := range banks {
		pool = append(pool, b.Questions...)
	}

	var selected []model.Question
	if len(req.QuestionIDs) > 0 {
		selected, err = pickQuestions(pool, req.QuestionIDs)
		if err != nil {
			return nil, err
		}
	} else {
		selected = s.drawQuestions(pool, req.Disciplines, req.QuestionCount)
	}

	if len(selected) == 0 {
		return nil, ErrNoQuestions
	}
	if len(selected) < req.QuestionCount && len(req.QuestionIDs) == 0 {
		s.log.Warn().
			Int("requested", req.QuestionCount).
			Int("available", len(selected)).
			Msg("Not enough questions, exam will be shorter")
	}

	// Exams hold a snapshot, never a live reference to the bank.
	questions := make([]model.Question, len(selected))
	for i, q := range selected {
		q.Alternatives = slices.Clone(q.Alternatives)
		q.Selected = ""
		questions[i] = q
	}

	exam := &model.Exam{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Title:           req.Title,
		Description:     req.Description,
		Disciplines:     req.Disciplines,
		DurationMinutes: req.DurationMinutes,
		QuestionCount:   len(questions),
		Questions:       questions,
		ScheduledAt:     req.ScheduledAt,
		CreatedAt:       s.now(),
		Status:          model.ExamStatusCreated,
	}
	if req.ScheduledAt != nil {
		exam.Status = model.ExamStatusScheduled
	}

	if err := s.exams.SaveExam(ctx, exam); err != nil {
		s.log.Error().Err(err).Msg("Save exam failed")
		return nil, persistenceErr("save exam", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID).
		Int("questions", len(questions)).
		Str("status", string(exam.Status)).
		Msg("Exam created")
	return exam, nil
}

func pickQuestions(pool []model.Question, ids []string) ([]model.Question, error) {
	byID := make(map[string]model.Question, len(pool))
	for _, q := range pool {
		byID[q.ID] = q
	}

	picked := make([]model.Question, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		q, ok := byID[id]
		if !ok {
			return nil, ErrQuestionNotFound
		}
		seen[id] = true
		picked = append(picked, q)
	}
	return picked, nil
}

func (s *ExamService) drawQuestions(pool []model.Question, disciplines []string, count int) []model.Question {
	var matching, others []model.Question
	for _, q := range pool {
		if slices.Contains(disciplines, q.Discipline) {
			matching = append(matching, q)
		} else {
			others = append(others, q)
		}
	}

	s.shuffle(matching)
	if len(matching) >= count {
		return matching[:count]
	}

	s.shuffle(others)
	missing := count - len(matching)
	if missing > len(others) {
		missing = len(others)
	}
	return append(matching, others[:missing]...)
}

// Get returns an exam owned by ownerID.
func (s *ExamService) Get(ctx context.Context, ownerID, examID string) (*model.Exam, error) {
	exam, err := s.exams.GetExam(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, persistenceErr("load exam", err)
	}
	if exam.OwnerID != ownerID {
		return nil, ErrNotExamOwner
	}
	return exam, nil
}

// ListByOwner returns the exams of a user, newest first.
func (s *ExamService) ListByOwner(ctx context.Context, ownerID string) ([]model.Exam, error) {
	exams, err := s.exams.ListExams(ctx, ownerID)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("List exams failed")
		return nil, persistenceErr("list exams", err)
	}
	slices.SortFunc(exams, func(a, b model.Exam) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return exams, nil
}

// Delete removes an exam that is not being taken right now.
func (s *ExamService) Delete(ctx context.Context, ownerID, examID string) error {
	exam, err := s.Get(ctx, ownerID, examID)
	if err != nil {
		return err
	}
	if exam.Status == model.ExamStatusInProgress {
		return ErrExamInProgress
	}
	if err := s.exams.DeleteExam(ctx, exam); err != nil {
		s.log.Error().Err(err).Str("exam_id", examID).Msg("Delete exam failed")
		return persistenceErr("delete exam", err)
	}
	return nil
}
