package service

import (
	"context"

	"github.com/medjourney/simulados-backend/internal/model"
)

// ExamStore persists whole exam records.
type ExamStore interface {
	GetExam(ctx context.Context, id string) (*model.Exam, error)
	SaveExam(ctx context.Context, e *model.Exam) error
	DeleteExam(ctx context.Context, e *model.Exam) error
	ListExams(ctx context.Context, ownerID string) ([]model.Exam, error)
}

// AnswerStore persists answer maps, one keyed upsert per answer.
type AnswerStore interface {
	GetAnswers(ctx context.Context, examID string) (model.AnswerMap, error)
	PutAnswer(ctx context.Context, examID, questionID, alternativeID string) error
}

// SessionStore is what the session engine needs from persistence.
type SessionStore interface {
	ExamStore
	AnswerStore
}

// BankStore persists question banks.
type BankStore interface {
	GetBank(ctx context.Context, id string) (*model.QuestionBank, error)
	ListBanks(ctx context.Context, ownerID string) ([]model.QuestionBank, error)
	SaveBank(ctx context.Context, b *model.QuestionBank) error
	DeleteBank(ctx context.Context, id string) error
}
