package model

import "time"

// Exam is one timed, scored attempt (a "simulado"). Questions are a
// snapshot taken at creation time.
type Exam struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	Title           string          `json:"titulo"`
	Description     string          `json:"descricao,omitempty"`
	Disciplines     []string        `json:"disciplinas"`
	DurationMinutes int             `json:"duracao"`
	QuestionCount   int             `json:"quantidadeQuestoes"`
	Questions       []Question      `json:"questoes"`
	ScheduledAt     *time.Time      `json:"dataAgendada,omitempty"`
	CreatedAt       time.Time       `json:"dataCriacao"`
	StartedAt       *time.Time      `json:"dataInicio,omitempty"`
	CompletedAt     *time.Time      `json:"dataConclusao,omitempty"`
	Status          ExamStatus      `json:"status"`
	Score           *int            `json:"acertos,omitempty"`
	ElapsedMinutes  *int            `json:"tempoGasto,omitempty"`
	Statistics      *ExamStatistics `json:"estatisticas,omitempty"`
	// Version orders snapshots of the record on their way to PostgreSQL.
	Version         int64           `json:"versao"`
}

// Touch advances Version for a new snapshot. Versions are wall-clock
// microseconds but never go backwards for one record.
func (e *Exam) Touch(now time.Time) {
	v := now.UnixMicro()
	if v <= e.Version {
		v = e.Version + 1
	}
	e.Version = v
}

// Supersedes reports whether e may replace stored as the durable copy. An
// older snapshot never wins, and a closed exam is never reopened.
func (e *Exam) Supersedes(stored *Exam) bool {
	if stored == nil {
		return true
	}
	if e.Version < stored.Version {
		return false
	}
	return !stored.Status.IsTerminal() || e.Status.IsTerminal()
}

// Question returns the embedded question with the given id.
func (e *Exam) Question(id string) (*Question, bool) {
	for i := range e.Questions {
		if e.Questions[i].ID == id {
			return &e.Questions[i], true
		}
	}
	return nil, false
}

// ExamStatistics is cached onto the exam when it is finalized.
type ExamStatistics struct {
	ByDiscipline []DisciplineStat `json:"acertosPorDisciplina"`
}

// DisciplineStat aggregates results for one discipline.
type DisciplineStat struct {
	Discipline string  `json:"disciplina"`
	Correct    int     `json:"acertos"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentual"`
}

// AnswerMap maps question id to the selected alternative id.
type AnswerMap map[string]string

// Clone returns an independent copy of m. A nil map clones to an empty map.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ResultSummary is derived from an exam and its answers; it is never stored
// on its own.
type ResultSummary struct {
	ExamID        string           `json:"exam_id"`
	Correct       int              `json:"acertos"`
	Total         int              `json:"total"`
	Percentage    float64          `json:"percentualAcerto"`
	CorrectIDs    []string         `json:"questoesAcertadas"`
	IncorrectIDs  []string         `json:"questoesErradas"`
	UnansweredIDs []string         `json:"questoesNaoRespondidas"`
	ByDiscipline  []DisciplineStat `json:"estatisticasPorDisciplina"`
}

// ExamResult is what the result view renders.
type ExamResult struct {
	Exam    *Exam         `json:"simulado"`
	Answers AnswerMap     `json:"respostas"`
	Summary ResultSummary `json:"resultado"`
}

// CreateExamRequest is the payload for generating a new exam.
type CreateExamRequest struct {
	Title           string     `json:"titulo" binding:"required,min=3,max=255"`
	Description     string     `json:"descricao" binding:"omitempty,max=2000"`
	Disciplines     []string   `json:"disciplinas" binding:"required,min=1,dive,min=2,max=100"`
	QuestionCount   int        `json:"quantidadeQuestoes" binding:"required,min=1,max=200"`
	DurationMinutes int        `json:"duracao" binding:"required,min=1,max=600"`
	ScheduledAt     *time.Time `json:"dataAgendada" binding:"omitempty"`
	// QuestionIDs picks bank questions by hand instead of drawing at random.
	QuestionIDs []string `json:"questoesSelecionadas" binding:"omitempty,dive,required"`
}

// RecordAnswerRequest is the payload for recording one answer.
type RecordAnswerRequest struct {
	QuestionID    string `json:"questao_id" binding:"required,max=64"`
	AlternativeID string `json:"alternativa_id" binding:"required,max=64"`
}

// FinalizeRequest is the payload for a manual finalize.
type FinalizeRequest struct {
	Confirmed bool `json:"confirmado"`
}
