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

// QuestionBankHandler handles question bank endpoints.
type QuestionBankHandler struct {
	bankService *service.QuestionBankService
}

// NewQuestionBankHandler creates a new QuestionBankHandler.
func NewQuestionBankHandler(bankService *service.QuestionBankService) *QuestionBankHandler {
	return &QuestionBankHandler{bankService: bankService}
}

// CreateBank godoc
// POST /api/v1/question-banks
func (h *QuestionBankHandler) CreateBank(c *gin.Context) {
	var req model.CreateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.bankService.CreateBank(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"banco": bank})
}

// ListBanks godoc
// GET /api/v1/question-banks
func (h *QuestionBankHandler) ListBanks(c *gin.Context) {
	banks, err := h.bankService.ListBanks(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bancos": banks})
}

// GetBank godoc
// GET /api/v1/question-banks/:bank_id
func (h *QuestionBankHandler) GetBank(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	bank, err := h.bankService.GetBank(c.Request.Context(), middleware.UserID(c), bankID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"banco": bank})
}

// DeleteBank godoc
// DELETE /api/v1/question-banks/:bank_id
func (h *QuestionBankHandler) DeleteBank(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	if err := h.bankService.DeleteBank(c.Request.Context(), middleware.UserID(c), bankID); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "banco excluído"})
}

// AddQuestion godoc
// POST /api/v1/question-banks/:bank_id/questions
func (h *QuestionBankHandler) AddQuestion(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	var req model.QuestionInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.bankService.AddQuestion(c.Request.Context(), middleware.UserID(c), bankID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"questao": q})
}

// UpdateQuestion godoc
// PUT /api/v1/question-banks/:bank_id/questions/:question_id
func (h *QuestionBankHandler) UpdateQuestion(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	var req model.QuestionInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.bankService.UpdateQuestion(c.Request.Context(), middleware.UserID(c), bankID, c.Param("question_id"), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questao": q})
}

// RemoveQuestion godoc
// DELETE /api/v1/question-banks/:bank_id/questions/:question_id
func (h *QuestionBankHandler) RemoveQuestion(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	if err := h.bankService.RemoveQuestion(c.Request.Context(), middleware.UserID(c), bankID, c.Param("question_id")); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "questão removida"})
}
