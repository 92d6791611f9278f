package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medjourney/simulados-backend/internal/response"
	"github.com/medjourney/simulados-backend/internal/service"
)

// errorStatus maps a service error to an HTTP status and error code.
func errorStatus(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		return http.StatusNotFound, response.ErrExamNotFound
	case errors.Is(err, service.ErrNotExamOwner):
		return http.StatusForbidden, response.ErrNotExamOwner
	case errors.Is(err, service.ErrExamClosed):
		return http.StatusConflict, response.ErrExamClosed
	case errors.Is(err, service.ErrSessionNotStarted):
		return http.StatusConflict, response.ErrSessionNotStarted
	case errors.Is(err, service.ErrExamNotCompleted):
		return http.StatusConflict, response.ErrExamNotCompleted
	case errors.Is(err, service.ErrExamInProgress):
		return http.StatusConflict, response.ErrExamInProgress
	case errors.Is(err, service.ErrConfirmRequired):
		return http.StatusConflict, response.ErrConfirmRequired
	case errors.Is(err, service.ErrUnknownQuestion):
		return http.StatusBadRequest, response.ErrUnknownQuestion
	case errors.Is(err, service.ErrUnknownAlternative):
		return http.StatusBadRequest, response.ErrUnknownAlternative
	case errors.Is(err, service.ErrNoQuestions):
		return http.StatusUnprocessableEntity, response.ErrNoQuestions
	case errors.Is(err, service.ErrBankNotFound):
		return http.StatusNotFound, response.ErrBankNotFound
	case errors.Is(err, service.ErrQuestionNotFound):
		return http.StatusNotFound, response.ErrQuestionNotFound
	case errors.Is(err, service.ErrInvalidQuestion):
		return http.StatusBadRequest, response.ErrInvalidQuestion
	case errors.Is(err, service.ErrUnsupportedFileType):
		return http.StatusBadRequest, response.ErrUnsupportedFile
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, response.ErrFileTooLarge
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError, response.ErrPersistence
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// fail writes the envelope for a service error. Closed exams and pending
// confirmations carry extra data the client needs to react.
func fail(c *gin.Context, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		response.Logger(c).Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}

	var closed *service.ExamClosedError
	var confirm *service.ConfirmationRequiredError
	switch {
	case errors.As(err, &closed):
		response.FailWithData(c, status, code, gin.H{"status": closed.Status})
	case errors.As(err, &confirm):
		response.FailWithData(c, status, code, gin.H{"respondidas": confirm.Answered, "total": confirm.Total})
	default:
		response.Fail(c, status, code)
	}
}

// examIDParam reads :exam_id. Exam ids are UUIDs, so anything else cannot
// name an exam and answers 404 without touching the stores.
func examIDParam(c *gin.Context) (string, bool) {
	return uuidParam(c, "exam_id", service.ErrExamNotFound)
}

// bankIDParam reads :bank_id the same way.
func bankIDParam(c *gin.Context) (string, bool) {
	return uuidParam(c, "bank_id", service.ErrBankNotFound)
}

func uuidParam(c *gin.Context, name string, notFound error) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, notFound)
		return "", false
	}
	return id.String(), true
}
