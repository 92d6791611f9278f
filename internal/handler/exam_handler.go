package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medjourney/simulados-backend/internal/middleware"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/response"
	"github.com/medjourney/simulados-backend/internal/service"
	"github.com/medjourney/simulados-backend/internal/validator"
)

// ExamHandler handles exam management endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// CreateExam godoc
// POST /api/v1/exams
// Generates a new exam from the user's question banks.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Generate(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"simulado": exam})
}

// ListExams godoc
// GET /api/v1/exams
// Lists the user's exams, newest first.
func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"simulados": exams})
}

// GetExam godoc
// GET /api/v1/exams/:exam_id
func (h *ExamHandler) GetExam(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), middleware.UserID(c), examID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"simulado": exam})
}

// DeleteExam godoc
// DELETE /api/v1/exams/:exam_id
// Deletes an exam that is not in progress.
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), middleware.UserID(c), examID); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "simulado excluído"})
}
