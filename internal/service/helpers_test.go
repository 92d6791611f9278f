package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/repository"
	"github.com/rs/zerolog"
)

var (
	testLog   = zerolog.New(io.Discard)
	startTime = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	errBroken = errors.New("connection refused")
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time           { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func question(id, discipline, correct string, alternatives ...string) model.Question {
	q := model.Question{ID: id, Prompt: "Enunciado " + id, Discipline: discipline, Topic: "geral", Difficulty: model.DifficultyMedium}
	for _, a := range alternatives {
		q.Alternatives = append(q.Alternatives, model.Alternative{ID: a, Text: "alt " + a, Correct: a == correct})
	}
	return q
}

func newExam(status model.ExamStatus) *model.Exam {
	return &model.Exam{
		ID:              "exam-1",
		OwnerID:         "user-1",
		Title:           "Simulado de Fisiologia",
		Disciplines:     []string{"Fisiologia", "Farmacologia"},
		DurationMinutes: 60,
		QuestionCount:   3,
		Questions: []model.Question{
			question("q1", "Fisiologia", "A", "A", "B", "C", "D"),
			question("q2", "Fisiologia", "B", "A", "B", "C", "D"),
			question("q3", "Farmacologia", "D", "A", "B", "C", "D"),
		},
		CreatedAt: startTime.Add(-time.Hour),
		Status:    status,
	}
}

// brokenStore fails the operations switched on, and delegates the rest.
type brokenStore struct {
	*repository.MemoryStore
	failSave    bool
	failPut     bool
	failAnswers bool
}

func (b *brokenStore) SaveExam(ctx context.Context, e *model.Exam) error {
	if b.failSave {
		return errBroken
	}
	return b.MemoryStore.SaveExam(ctx, e)
}

func (b *brokenStore) PutAnswer(ctx context.Context, examID, questionID, alternativeID string) error {
	if b.failPut {
		return errBroken
	}
	return b.MemoryStore.PutAnswer(ctx, examID, questionID, alternativeID)
}

func (b *brokenStore) GetAnswers(ctx context.Context, examID string) (model.AnswerMap, error) {
	if b.failAnswers {
		return nil, errBroken
	}
	return b.MemoryStore.GetAnswers(ctx, examID)
}
