package model

import (
	"errors"
	"fmt"
)

// ExamStatus enumerates the lifecycle states of an exam.
type ExamStatus string

const (
	ExamStatusCreated    ExamStatus = "criado"
	ExamStatusScheduled  ExamStatus = "agendado"
	ExamStatusInProgress ExamStatus = "em-andamento"
	ExamStatusCompleted  ExamStatus = "concluido"
	// ExamStatusCancelled is set by other parts of the platform; this
	// service only detects it.
	ExamStatusCancelled ExamStatus = "cancelado"
)

// ErrInvalidTransition is returned for any edge outside the exam state machine.
var ErrInvalidTransition = errors.New("invalid exam status transition")

var examTransitions = map[ExamStatus][]ExamStatus{
	ExamStatusCreated:    {ExamStatusInProgress},
	ExamStatusScheduled:  {ExamStatusInProgress},
	ExamStatusInProgress: {ExamStatusCompleted},
}

// Valid reports whether s is one of the known statuses.
func (s ExamStatus) Valid() bool {
	switch s {
	case ExamStatusCreated, ExamStatusScheduled, ExamStatusInProgress,
		ExamStatusCompleted, ExamStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no session may run on an exam in this status.
func (s ExamStatus) IsTerminal() bool {
	return s == ExamStatusCompleted || s == ExamStatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s ExamStatus) CanTransitionTo(next ExamStatus) bool {
	for _, allowed := range examTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo validates the edge s → next.
func (s ExamStatus) TransitionTo(next ExamStatus) error {
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}
