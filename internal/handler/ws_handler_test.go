package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/medjourney/simulados-backend/internal/countdown"
	"github.com/medjourney/simulados-backend/internal/model"
	ws "github.com/medjourney/simulados-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanTicker fires only when the test sends on it.
type chanTicker struct{ ch chan time.Time }

func (c chanTicker) C() <-chan time.Time { return c.ch }
func (c chanTicker) Stop()               {}

func dial(t *testing.T, env *testEnv, userID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(env.engine)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/exams/" + testExamID + "/stream?token=" + env.token(t, userID)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent returns the next message whose event matches, skipping ticks.
func readEvent(t *testing.T, conn *websocket.Conn, want ws.Event) map[string]json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg map[string]json.RawMessage
		require.NoError(t, conn.ReadJSON(&msg))

		var ev ws.Event
		require.NoError(t, json.Unmarshal(msg["event"], &ev))
		if ev == want {
			return msg
		}
		require.Equal(t, ws.EventTick, ev, "unexpected event %s", ev)
	}
}

func TestWS_AutosaveAndSubmit(t *testing.T) {
	env := newTestEnv(t)
	ticks := make(chan time.Time, 1)
	env.ws.newTicker = func() countdown.Ticker { return chanTicker{ch: ticks} }
	seedExam(t, env.store, model.ExamStatusCreated, 0)

	conn := dial(t, env, "user-1")

	msg := readEvent(t, conn, ws.EventSession)
	assert.JSONEq(t, `60`, string(msg["tempoRestante"]))

	ticks <- time.Now()
	msg = readEvent(t, conn, ws.EventTick)
	assert.JSONEq(t, `3599`, string(msg["segundosRestantes"]))

	require.NoError(t, conn.WriteJSON(ws.Request{Action: ws.ActionAutosave, QID: "q1", Answer: "A"}))
	msg = readEvent(t, conn, ws.EventSuccess)
	assert.JSONEq(t, `"q1"`, string(msg["q_id"]))

	require.NoError(t, conn.WriteJSON(ws.Request{Action: ws.ActionAutosave, QID: "q1", Answer: "Z"}))
	msg = readEvent(t, conn, ws.EventError)
	assert.JSONEq(t, `"UNKNOWN_ALTERNATIVE"`, string(msg["code"]))

	require.NoError(t, conn.WriteJSON(ws.Request{Action: ws.ActionPing}))
	readEvent(t, conn, ws.EventPong)

	require.NoError(t, conn.WriteJSON(ws.Request{Action: ws.ActionSubmit}))
	msg = readEvent(t, conn, ws.EventConfirmRequired)
	assert.JSONEq(t, `1`, string(msg["respondidas"]))

	require.NoError(t, conn.WriteJSON(ws.Request{Action: ws.ActionSubmit, Confirmed: true}))
	msg = readEvent(t, conn, ws.EventGraded)
	assert.JSONEq(t, `"manual"`, string(msg["motivo"]))

	var summary model.ResultSummary
	require.NoError(t, json.Unmarshal(msg["resultado"], &summary))
	assert.Equal(t, 1, summary.Correct)

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	stored, err := env.store.GetExam(context.Background(), testExamID)
	require.NoError(t, err)
	assert.Equal(t, model.ExamStatusCompleted, stored.Status)
}

func TestWS_FinalizesOnExpiry(t *testing.T) {
	env := newTestEnv(t)
	ticks := make(chan time.Time, 1)
	env.ws.newTicker = func() countdown.Ticker { return chanTicker{ch: ticks} }
	seedExam(t, env.store, model.ExamStatusInProgress, 2*time.Hour)

	conn := dial(t, env, "user-1")

	msg := readEvent(t, conn, ws.EventSession)
	assert.JSONEq(t, `0`, string(msg["tempoRestante"]))

	ticks <- time.Now()
	msg = readEvent(t, conn, ws.EventGraded)
	assert.JSONEq(t, `"timeout"`, string(msg["motivo"]))

	stored, err := env.store.GetExam(context.Background(), testExamID)
	require.NoError(t, err)
	assert.Equal(t, model.ExamStatusCompleted, stored.Status)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 0, *stored.Score)
}

func TestWS_ClosedExam(t *testing.T) {
	env := newTestEnv(t)
	seedExam(t, env.store, model.ExamStatusCompleted, time.Hour)

	conn := dial(t, env, "user-1")

	msg := readEvent(t, conn, ws.EventError)
	assert.JSONEq(t, `"EXAM_CLOSED"`, string(msg["code"]))
}

func TestWS_RejectsOtherOwnerBeforeUpgrade(t *testing.T) {
	env := newTestEnv(t)
	seedExam(t, env.store, model.ExamStatusCreated, 0)

	srv := httptest.NewServer(env.engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/exams/" + testExamID + "/stream?token=" + env.token(t, "user-2")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
