package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medjourney/simulados-backend/internal/response"
	"github.com/medjourney/simulados-backend/internal/service"
)

// imageField is the multipart field carrying the picture.
const imageField = "file"

// MediaHandler accepts the pictures that question statements point to.
type MediaHandler struct {
	media *service.MediaService
}

func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// UploadQuestionImage stores one picture and answers with the URL a bank
// author puts in a question's "imagem" field.
func (h *MediaHandler) UploadQuestionImage(c *gin.Context) {
	image, header, err := c.Request.FormFile(imageField)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer image.Close()

	url, err := h.media.SaveUpload(c.Request.Context(), image, header)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url})
}
