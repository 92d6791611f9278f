package model

// Difficulty is the perceived difficulty of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "facil"
	DifficultyMedium Difficulty = "media"
	DifficultyHard   Difficulty = "dificil"
)

// Alternative is one selectable answer choice.
type Alternative struct {
	ID      string `json:"id"`
	Text    string `json:"texto"`
	Correct bool   `json:"correta"`
}

// Question is a multiple-choice item. Exams embed questions by value.
type Question struct {
	ID           string        `json:"id"`
	Prompt       string        `json:"enunciado"`
	Alternatives []Alternative `json:"alternativas"`
	Explanation  string        `json:"explicacao,omitempty"`
	Discipline   string        `json:"disciplina"`
	Topic        string        `json:"assunto"`
	Difficulty   Difficulty    `json:"dificuldade"`
	Image        string        `json:"imagem,omitempty"`
	Selected     string        `json:"selecionada,omitempty"`
}

// Alternative returns the alternative with the given id.
func (q *Question) Alternative(id string) (*Alternative, bool) {
	for i := range q.Alternatives {
		if q.Alternatives[i].ID == id {
			return &q.Alternatives[i], true
		}
	}
	return nil, false
}

// CorrectCount returns how many alternatives are flagged correct.
func (q *Question) CorrectCount() int {
	n := 0
	for _, a := range q.Alternatives {
		if a.Correct {
			n++
		}
	}
	return n
}

// AlternativeInput is the payload for one alternative of a question.
type AlternativeInput struct {
	ID      string `json:"id" binding:"omitempty,max=64"`
	Text    string `json:"texto" binding:"required,min=1,max=2000"`
	Correct bool   `json:"correta"`
}

// QuestionInput is the payload for creating or replacing a bank question.
type QuestionInput struct {
	Prompt       string             `json:"enunciado" binding:"required,min=1,max=5000"`
	Alternatives []AlternativeInput `json:"alternativas" binding:"required,min=2,max=5,dive"`
	Explanation  string             `json:"explicacao" binding:"omitempty,max=5000"`
	Discipline   string             `json:"disciplina" binding:"required,min=2,max=100"`
	Topic        string             `json:"assunto" binding:"required,min=1,max=200"`
	Difficulty   Difficulty         `json:"dificuldade" binding:"required,oneof=facil media dificil"`
	Image        string             `json:"imagem" binding:"omitempty,max=500"`
}
