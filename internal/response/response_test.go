package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"acertos": 3}) })
	r.GET("/confirm", func(c *gin.Context) {
		FailWithData(c, http.StatusConflict, ErrConfirmRequired, gin.H{"respondidas": 1, "total": 3})
	})

	t.Run("success echoes request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("X-Request-ID", "req-123")
		r.ServeHTTP(w, req)

		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-123", body.Metadata.RequestID)
		assert.Nil(t, body.Error)
	})

	t.Run("failure carries code message and data", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/confirm", nil))

		var body struct {
			Data  map[string]int `json:"data"`
			Error ErrorBody      `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, ErrConfirmRequired, body.Error.Code)
		assert.Equal(t, GetMessage(ErrConfirmRequired), body.Error.Message)
		assert.Equal(t, 3, body.Data["total"])
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}
