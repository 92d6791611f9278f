package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBind_UsesJSONFieldNames(t *testing.T) {
	var req model.CreateExamRequest
	fields := bindBody(t, `{"titulo":"ab","disciplinas":[],"quantidadeQuestoes":0,"duracao":30}`, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "titulo")
	assert.Contains(t, fields, "disciplinas")
	assert.Contains(t, fields, "quantidadeQuestoes")
	assert.NotContains(t, fields, "duracao")
}

func TestBind_MalformedJSON(t *testing.T) {
	var req model.RecordAnswerRequest
	fields := bindBody(t, `{"questao_id":`, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "detail")
}

func TestBind_Valid(t *testing.T) {
	var req model.RecordAnswerRequest
	fields := bindBody(t, `{"questao_id":"q1","alternativa_id":"A"}`, &req)

	assert.Nil(t, fields)
	assert.Equal(t, "q1", req.QuestionID)
	assert.Equal(t, "A", req.AlternativeID)
}
