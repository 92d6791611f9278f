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

// SessionHandler exposes the exam session engine over plain HTTP, for
// clients that do not hold a WebSocket open.
type SessionHandler struct {
	examService    *service.ExamService
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(examService *service.ExamService, sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{examService: examService, sessionService: sessionService}
}

// authorize makes sure the caller owns the exam in the path.
func (h *SessionHandler) authorize(c *gin.Context) (string, bool) {
	examID, ok := examIDParam(c)
	if !ok {
		return "", false
	}
	if _, err := h.examService.Get(c.Request.Context(), middleware.UserID(c), examID); err != nil {
		fail(c, err)
		return "", false
	}
	return examID, true
}

// StartSession godoc
// POST /api/v1/exams/:exam_id/session
// Loads (and on first call starts) the exam session.
func (h *SessionHandler) StartSession(c *gin.Context) {
	examID, ok := h.authorize(c)
	if !ok {
		return
	}

	sess, err := h.sessionService.Load(c.Request.Context(), examID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, sess)
}

// RecordAnswer godoc
// PUT /api/v1/exams/:exam_id/answers
// Stores the selected alternative for one question.
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	examID, ok := h.authorize(c)
	if !ok {
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.RecordAnswer(c.Request.Context(), examID, req.QuestionID, req.AlternativeID); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved", "questao_id": req.QuestionID})
}

// Finalize godoc
// POST /api/v1/exams/:exam_id/finalize
// Finalizes the exam. With unanswered questions the body must carry
// {"confirmado": true}, otherwise 409 CONFIRMATION_REQUIRED is returned.
func (h *SessionHandler) Finalize(c *gin.Context) {
	examID, ok := h.authorize(c)
	if !ok {
		return
	}

	var req model.FinalizeRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	summary, err := h.sessionService.Finalize(c.Request.Context(), examID, service.FinalizeOptions{
		Trigger:   service.TriggerManual,
		Confirmed: req.Confirmed,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"resultado": summary})
}

// GetResult godoc
// GET /api/v1/exams/:exam_id/result
// Returns the result view of a completed exam.
func (h *SessionHandler) GetResult(c *gin.Context) {
	examID, ok := h.authorize(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Result(c.Request.Context(), examID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
