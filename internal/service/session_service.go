package service

import (
	"context"
	"errors"
	"time"

	"github.com/medjourney/simulados-backend/internal/grading"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/repository"
	"github.com/rs/zerolog"
)

// FinalizeTrigger tells the finalizer who asked to close the session.
type FinalizeTrigger string

const (
	TriggerManual  FinalizeTrigger = "manual"
	TriggerTimeout FinalizeTrigger = "timeout"
)

// FinalizeOptions controls a finalize call.
type FinalizeOptions struct {
	Trigger FinalizeTrigger
	// Confirmed is the user's explicit go-ahead to finalize with
	// unanswered questions. Timeout finalization does not need it.
	Confirmed bool
}

// Session is the state handed to the exam view when a session is loaded.
type Session struct {
	Exam             *model.Exam     `json:"simulado"`
	Answers          model.AnswerMap `json:"respostas"`
	RemainingMinutes int             `json:"tempoRestante"`
	Answered         int             `json:"respondidas"`
	Total            int             `json:"total"`
}

// SessionService owns the lifecycle of one timed exam attempt.
type SessionService struct {
	store SessionStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(store SessionStore, log zerolog.Logger) *SessionService {
	return &SessionService{
		store: store,
		log:   log.With().Str("component", "session_service").Logger(),
		now:   time.Now,
	}
}

// RemainingMinutes is the countdown seed: the duration minus the whole
// minutes elapsed since start, floored at zero.
func RemainingMinutes(durationMinutes int, startedAt time.Time, now time.Time) int {
	elapsed := int(now.Sub(startedAt) / time.Minute)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := durationMinutes - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AnsweredCount counts the exam questions that have an answer.
func AnsweredCount(exam *model.Exam, answers model.AnswerMap) int {
	n := 0
	for i := range exam.Questions {
		if answers[exam.Questions[i].ID] != "" {
			n++
		}
	}
	return n
}

func (s *SessionService) getExam(ctx context.Context, examID string) (*model.Exam, error) {
	exam, err := s.store.GetExam(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		s.log.Error().Err(err).Str("exam_id", examID).Msg("Load exam failed")
		return nil, persistenceErr("load exam", err)
	}
	return exam, nil
}

func (s *SessionService) getAnswers(ctx context.Context, examID string) (model.AnswerMap, error) {
	answers, err := s.store.GetAnswers(ctx, examID)
	if err != nil {
		s.log.Error().Err(err).Str("exam_id", examID).Msg("Load answers failed")
		return nil, persistenceErr("load answers", err)
	}
	if answers == nil {
		answers = make(model.AnswerMap)
	}
	return answers, nil
}

// Load opens a session on an exam. A created or scheduled exam moves to
// em-andamento and gets its start time stamped once; that start time is the
// reference for the countdown. Completed and cancelled exams are refused.
func (s *SessionService) Load(ctx context.Context, examID string) (*Session, error) {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	if exam.Status.IsTerminal() {
		return nil, &ExamClosedError{Status: exam.Status}
	}

	answers, err := s.getAnswers(ctx, examID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	changed := false

	if exam.Status != model.ExamStatusInProgress {
		if err := exam.Status.TransitionTo(model.ExamStatusInProgress); err != nil {
			return nil, &ExamClosedError{Status: exam.Status}
		}
		exam.Status = model.ExamStatusInProgress
		changed = true
	}
	if exam.StartedAt == nil {
		started := now
		exam.StartedAt = &started
		changed = true
	}

	if changed {
		if err := s.store.SaveExam(ctx, exam); err != nil {
			s.log.Error().Err(err).Str("exam_id", examID).Msg("Start exam failed")
			return nil, persistenceErr("start exam", err)
		}
		s.log.Info().Str("exam_id", examID).Msg("Exam session started")
	}

	return &Session{
		Exam:             exam,
		Answers:          answers,
		RemainingMinutes: RemainingMinutes(exam.DurationMinutes, *exam.StartedAt, now),
		Answered:         AnsweredCount(exam, answers),
		Total:            len(exam.Questions),
	}, nil
}

// RecordAnswer stores the selected alternative for a question right away.
// Selecting again overwrites the previous choice; answers are never removed.
func (s *SessionService) RecordAnswer(ctx context.Context, examID, questionID, alternativeID string) error {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return err
	}

	if exam.Status.IsTerminal() {
		return &ExamClosedError{Status: exam.Status}
	}
	if exam.Status != model.ExamStatusInProgress {
		return ErrSessionNotStarted
	}

	q, ok := exam.Question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if _, ok := q.Alternative(alternativeID); !ok {
		return ErrUnknownAlternative
	}

	if err := s.store.PutAnswer(ctx, examID, questionID, alternativeID); err != nil {
		s.log.Error().Err(err).
			Str("exam_id", examID).
			Str("question_id", questionID).
			Msg("Save answer failed")
		return persistenceErr("save answer", err)
	}
	return nil
}

// Finalize closes an in-progress session, scores it and stores the result on
// the exam. It returns the summary; the score is summary.Correct.
func (s *SessionService) Finalize(ctx context.Context, examID string, opts FinalizeOptions) (*model.ResultSummary, error) {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	if exam.Status.IsTerminal() {
		return nil, &ExamClosedError{Status: exam.Status}
	}
	if err := exam.Status.TransitionTo(model.ExamStatusCompleted); err != nil {
		return nil, ErrSessionNotStarted
	}

	answers, err := s.getAnswers(ctx, examID)
	if err != nil {
		return nil, err
	}

	answered := AnsweredCount(exam, answers)
	if opts.Trigger != TriggerTimeout && !opts.Confirmed && answered < len(exam.Questions) {
		return nil, &ConfirmationRequiredError{Answered: answered, Total: len(exam.Questions)}
	}

	summary := grading.Score(exam, answers)

	completed := s.now()
	exam.Status = model.ExamStatusCompleted
	exam.CompletedAt = &completed
	exam.Score = &summary.Correct
	exam.Statistics = &model.ExamStatistics{ByDiscipline: summary.ByDiscipline}
	if minutes, ok := grading.ElapsedMinutes(exam.StartedAt, exam.CompletedAt); ok {
		exam.ElapsedMinutes = &minutes
	}

	if err := s.store.SaveExam(ctx, exam); err != nil {
		s.log.Error().Err(err).Str("exam_id", examID).Msg("Save result failed")
		return nil, persistenceErr("save result", err)
	}

	s.log.Info().
		Str("exam_id", examID).
		Str("trigger", string(opts.Trigger)).
		Int("correct", summary.Correct).
		Int("total", summary.Total).
		Msg("Exam finalized")

	return &summary, nil
}

// Result rebuilds the result view of a completed exam.
func (s *SessionService) Result(ctx context.Context, examID string) (*model.ExamResult, error) {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusCompleted {
		return nil, ErrExamNotCompleted
	}

	answers, err := s.getAnswers(ctx, examID)
	if err != nil {
		return nil, err
	}

	return &model.ExamResult{
		Exam:    exam,
		Answers: answers,
		Summary: grading.Score(exam, answers),
	}, nil
}
