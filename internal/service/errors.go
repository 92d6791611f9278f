package service

import (
	"errors"
	"fmt"

	"github.com/medjourney/simulados-backend/internal/model"
)

// Domain Errors
var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrExamClosed         = errors.New("exam is closed")
	ErrSessionNotStarted  = errors.New("exam session has not been started")
	ErrExamNotCompleted   = errors.New("exam is not completed")
	ErrExamInProgress     = errors.New("exam is in progress")
	ErrNotExamOwner       = errors.New("not the owner of this exam")
	ErrUnknownQuestion    = errors.New("question does not belong to this exam")
	ErrUnknownAlternative = errors.New("alternative does not belong to this question")
	ErrConfirmRequired    = errors.New("finalize requires confirmation")
	ErrNoQuestions        = errors.New("no questions available for this exam")
	ErrBankNotFound       = errors.New("question bank not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrInvalidQuestion    = errors.New("invalid question")
	ErrPersistence        = errors.New("persistence failure")
)

// ExamClosedError reports the status that blocks a session.
type ExamClosedError struct {
	Status model.ExamStatus
}

func (e *ExamClosedError) Error() string {
	return fmt.Sprintf("exam is closed (status %s)", e.Status)
}

func (e *ExamClosedError) Is(target error) bool {
	return target == ErrExamClosed
}

// ConfirmationRequiredError is returned when a manual finalize would leave
// questions unanswered and the user has not confirmed it.
type ConfirmationRequiredError struct {
	Answered int
	Total    int
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("finalize requires confirmation: %d of %d questions answered", e.Answered, e.Total)
}

func (e *ConfirmationRequiredError) Is(target error) bool {
	return target == ErrConfirmRequired
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
