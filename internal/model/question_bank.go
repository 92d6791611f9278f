package model

import "time"

// QuestionBank is a named collection of questions owned by a user.
type QuestionBank struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Name        string     `json:"nome"`
	Questions   []Question `json:"questoes"`
	Disciplines []string   `json:"disciplinas"`
	CreatedAt   time.Time  `json:"dataCriacao"`
	UpdatedAt   *time.Time `json:"ultimaAtualizacao,omitempty"`
}

// CreateQuestionBankRequest is the payload for creating a question bank.
type CreateQuestionBankRequest struct {
	Name      string          `json:"nome" binding:"required,min=3,max=255"`
	Questions []QuestionInput `json:"questoes" binding:"omitempty,dive"`
}
