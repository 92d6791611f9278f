//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBaseURL   = "http://localhost:8080/api/v1"
	defaultJWTSecret = "change-this-to-a-secure-random-string"
)

var (
	baseURL string
	token   string
)

// envelope mirrors response.Response with a typed data payload.
type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = defaultJWTSecret
	}

	// Each run acts as a fresh user so leftovers from earlier runs never match.
	var err error
	token, err = service.NewAuthService(secret, time.Hour).IssueToken("e2e-"+uuid.NewString(), "E2E")
	if err != nil {
		fmt.Printf("Setup failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func TestE2EFlow(t *testing.T) {
	var bankID, examID string

	t.Run("CreateBank", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/question-banks", map[string]any{
			"nome": "Banco E2E",
			"questoes": []map[string]any{
				question("Cardiologia", "Qual câmara bombeia para a aorta?", "Ventrículo esquerdo", "Átrio direito"),
				question("Cardiologia", "Onde nasce o estímulo cardíaco?", "Nó sinoatrial", "Feixe de His"),
				question("Pneumologia", "Onde ocorre a troca gasosa?", "Alvéolos", "Brônquios"),
			},
		})
		var body envelope[struct {
			Bank model.QuestionBank `json:"banco"`
		}]
		decode(t, resp, http.StatusCreated, &body)
		require.Len(t, body.Data.Bank.Questions, 3)
		assert.Equal(t, []string{"Cardiologia", "Pneumologia"}, body.Data.Bank.Disciplines)
		bankID = body.Data.Bank.ID
	})

	t.Run("GenerateExam", func(t *testing.T) {
		require.NotEmpty(t, bankID)
		resp := do(t, http.MethodPost, "/exams", map[string]any{
			"titulo":             "Simulado E2E",
			"disciplinas":        []string{"Cardiologia"},
			"quantidadeQuestoes": 3,
			"duracao":            30,
		})
		var body envelope[struct {
			Exam model.Exam `json:"simulado"`
		}]
		decode(t, resp, http.StatusCreated, &body)
		assert.Equal(t, model.ExamStatusCreated, body.Data.Exam.Status)
		assert.Equal(t, 3, body.Data.Exam.QuestionCount)
		examID = body.Data.Exam.ID
	})

	var exam *model.Exam
	t.Run("StartSession", func(t *testing.T) {
		require.NotEmpty(t, examID)
		resp := do(t, http.MethodPost, "/exams/"+examID+"/session", nil)
		var body envelope[service.Session]
		decode(t, resp, http.StatusOK, &body)
		assert.Equal(t, model.ExamStatusInProgress, body.Data.Exam.Status)
		assert.Equal(t, 30, body.Data.RemainingMinutes)
		assert.Equal(t, 0, body.Data.Answered)
		exam = body.Data.Exam
	})

	t.Run("RecordAnswers", func(t *testing.T) {
		require.NotNil(t, exam)
		for _, q := range exam.Questions[:2] {
			resp := do(t, http.MethodPut, "/exams/"+examID+"/answers", map[string]string{
				"questao_id":     q.ID,
				"alternativa_id": q.Alternatives[0].ID,
			})
			decode(t, resp, http.StatusOK, &envelope[map[string]string]{})
		}

		resp := do(t, http.MethodPut, "/exams/"+examID+"/answers", map[string]string{
			"questao_id":     "does-not-exist",
			"alternativa_id": "a",
		})
		var body envelope[any]
		decode(t, resp, http.StatusBadRequest, &body)
		require.NotNil(t, body.Error)
		assert.Equal(t, "UNKNOWN_QUESTION", body.Error.Code)
	})

	t.Run("FinalizeNeedsConfirmation", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/exams/"+examID+"/finalize", map[string]bool{"confirmado": false})
		var body envelope[map[string]int]
		decode(t, resp, http.StatusConflict, &body)
		assert.Equal(t, 2, body.Data["respondidas"])
		assert.Equal(t, 3, body.Data["total"])
	})

	t.Run("FinalizeConfirmed", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/exams/"+examID+"/finalize", map[string]bool{"confirmado": true})
		var body envelope[struct {
			Summary model.ResultSummary `json:"resultado"`
		}]
		decode(t, resp, http.StatusOK, &body)
		assert.Equal(t, 3, body.Data.Summary.Total)
		assert.Len(t, body.Data.Summary.UnansweredIDs, 1)
	})

	t.Run("ClosedExamRejectsWrites", func(t *testing.T) {
		resp := do(t, http.MethodPut, "/exams/"+examID+"/answers", map[string]string{
			"questao_id":     exam.Questions[2].ID,
			"alternativa_id": exam.Questions[2].Alternatives[0].ID,
		})
		var body envelope[any]
		decode(t, resp, http.StatusConflict, &body)
		require.NotNil(t, body.Error)
		assert.Equal(t, "EXAM_CLOSED", body.Error.Code)
	})

	t.Run("Result", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/exams/"+examID+"/result", nil)
		var body envelope[model.ExamResult]
		decode(t, resp, http.StatusOK, &body)
		assert.Equal(t, model.ExamStatusCompleted, body.Data.Exam.Status)
		assert.Len(t, body.Data.Answers, 2)
		require.NotNil(t, body.Data.Exam.Score)
		assert.Equal(t, body.Data.Summary.Correct, *body.Data.Exam.Score)
	})
}

func question(discipline, prompt, correct, wrong string) map[string]any {
	return map[string]any{
		"enunciado": prompt,
		"alternativas": []map[string]any{
			{"texto": correct, "correta": true},
			{"texto": wrong},
		},
		"disciplina":  discipline,
		"assunto":     "Geral",
		"dificuldade": "facil",
	}
}

// Helpers

func do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, wantStatus int, v any) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equalf(t, wantStatus, resp.StatusCode, "body: %s", raw)
	require.NoError(t, json.Unmarshal(raw, v))
}
