package repository

import (
	"testing"

	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestLatestSnapshots(t *testing.T) {
	e1v1 := &model.Exam{ID: "e1", Status: model.ExamStatusInProgress, Version: 1}
	e2 := &model.Exam{ID: "e2", Status: model.ExamStatusCreated, Version: 1}
	e1v3 := &model.Exam{ID: "e1", Status: model.ExamStatusCompleted, Version: 3}
	e1v2 := &model.Exam{ID: "e1", Status: model.ExamStatusInProgress, Version: 2}

	got := LatestSnapshots([]*model.Exam{e1v1, e2, e1v3, e1v2})

	assert.Equal(t, []*model.Exam{e1v3, e2}, got)
}
