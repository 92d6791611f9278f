// Package grading scores finished exams. Everything here is pure: the same
// exam and answers always yield the same result.
package grading

import (
	"time"

	"github.com/medjourney/simulados-backend/internal/model"
)

// CorrectAlternative returns the first alternative flagged correct.
// Questions with several flagged alternatives are tolerated; the first wins.
func CorrectAlternative(q *model.Question) (*model.Alternative, bool) {
	for i := range q.Alternatives {
		if q.Alternatives[i].Correct {
			return &q.Alternatives[i], true
		}
	}
	return nil, false
}

// IsCorrect reports whether selected matches the correct alternative of q.
// A question with no correct alternative can never be answered correctly.
func IsCorrect(q *model.Question, selected string) bool {
	if selected == "" {
		return false
	}
	correct, ok := CorrectAlternative(q)
	return ok && correct.ID == selected
}

// Score computes the result summary of exam given answers.
func Score(exam *model.Exam, answers model.AnswerMap) model.ResultSummary {
	summary := model.ResultSummary{
		ExamID:        exam.ID,
		Total:         len(exam.Questions),
		CorrectIDs:    []string{},
		IncorrectIDs:  []string{},
		UnansweredIDs: []string{},
	}

	order := make([]string, 0)
	byDiscipline := make(map[string]*model.DisciplineStat)

	for i := range exam.Questions {
		q := &exam.Questions[i]

		stat, ok := byDiscipline[q.Discipline]
		if !ok {
			stat = &model.DisciplineStat{Discipline: q.Discipline}
			byDiscipline[q.Discipline] = stat
			order = append(order, q.Discipline)
		}
		stat.Total++

		selected := answers[q.ID]
		switch {
		case selected == "":
			summary.UnansweredIDs = append(summary.UnansweredIDs, q.ID)
		case IsCorrect(q, selected):
			summary.Correct++
			stat.Correct++
			summary.CorrectIDs = append(summary.CorrectIDs, q.ID)
		default:
			summary.IncorrectIDs = append(summary.IncorrectIDs, q.ID)
		}
	}

	summary.Percentage = Percentage(summary.Correct, summary.Total)

	summary.ByDiscipline = make([]model.DisciplineStat, 0, len(order))
	for _, name := range order {
		stat := byDiscipline[name]
		stat.Percentage = Percentage(stat.Correct, stat.Total)
		summary.ByDiscipline = append(summary.ByDiscipline, *stat)
	}

	return summary
}

// Percentage returns correct/total as a percentage, 0 when total is 0.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// ElapsedMinutes returns the whole minutes between start and end.
// ok is false when either timestamp is missing.
func ElapsedMinutes(start, end *time.Time) (minutes int, ok bool) {
	if start == nil || end == nil {
		return 0, false
	}
	d := end.Sub(*start)
	if d < 0 {
		return 0, true
	}
	return int(d / time.Minute), true
}
