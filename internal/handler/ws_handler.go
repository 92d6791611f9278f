package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/medjourney/simulados-backend/internal/countdown"
	"github.com/medjourney/simulados-backend/internal/middleware"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/response"
	"github.com/medjourney/simulados-backend/internal/service"
	ws "github.com/medjourney/simulados-backend/internal/websocket"
	"github.com/rs/zerolog"
)

const finalizeTimeout = 15 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler serves the live exam view: one connection owns one countdown.
type WSHandler struct {
	examService    *service.ExamService
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
	// newTicker overrides the countdown's one-second ticker.
	newTicker func() countdown.Ticker
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examService *service.ExamService, sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examService:    examService,
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// stream is the state of one connected exam view.
type stream struct {
	h      *WSHandler
	conn   *ws.Conn
	examID string
	log    zerolog.Logger

	// mu serializes finalization between the countdown and a manual submit.
	mu        sync.Mutex
	finalized bool
	timer     *countdown.Countdown
}

// ExamWebSocketStream godoc
// WS /ws/v1/exams/:exam_id/stream
// Loads the session, runs the countdown, records answers and finalizes.
func (h *WSHandler) ExamWebSocketStream(c *gin.Context) {
	userID := middleware.UserID(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	// Ownership is checked before the upgrade so errors stay plain HTTP.
	if _, err := h.examService.Get(c.Request.Context(), userID, examID); err != nil {
		fail(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	s := &stream{
		h:      h,
		conn:   conn,
		examID: examID,
		log:    h.log.With().Str("user_id", userID).Str("exam_id", examID).Logger(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := h.sessionService.Load(ctx, examID)
	if err != nil {
		s.writeServiceError(err)
		conn.CloseNormal("session unavailable")
		return
	}

	if err := conn.WriteTyped(ws.SessionEvent{
		Event:            ws.EventSession,
		Exam:             sess.Exam,
		Answers:          sess.Answers,
		RemainingMinutes: sess.RemainingMinutes,
		Answered:         sess.Answered,
		Total:            sess.Total,
	}); err != nil {
		return
	}

	opts := []countdown.Option{
		countdown.OnTick(s.onTick),
		countdown.OnExpire(s.onExpire),
	}
	if h.newTicker != nil {
		opts = append(opts, countdown.WithTicker(h.newTicker()))
	}
	s.timer = countdown.Start(ctx, countdown.FromMinutes(float64(sess.RemainingMinutes)), opts...)
	defer func() {
		s.timer.Stop()
		s.timer.Wait()
	}()

	s.log.Info().Int("remaining_minutes", sess.RemainingMinutes).Msg("Exam view connected")
	s.readLoop(ctx)
}

func (s *stream) readLoop(ctx context.Context) {
	for {
		req, err := s.conn.ReadRequest()
		if err != nil {
			if ws.IsUnexpectedClose(err) {
				s.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				s.log.Debug().Msg("Connection closed")
			}
			return
		}

		switch req.Action {
		case ws.ActionAutosave:
			s.autosave(ctx, req)
		case ws.ActionSubmit:
			if s.submit(req.Confirmed) {
				return
			}
		case ws.ActionPing:
			_ = s.conn.WriteTyped(ws.PongEvent{Event: ws.EventPong})
		default:
			s.log.Warn().Str("action", string(req.Action)).Msg("Unknown action")
			_ = s.conn.WriteError(string(response.ErrInvalidPayload), "ação desconhecida: "+string(req.Action))
		}
	}
}

func (s *stream) autosave(ctx context.Context, req *ws.Request) {
	if req.QID == "" || req.Answer == "" {
		_ = s.conn.WriteError(string(response.ErrValidation), "q_id e ans são obrigatórios")
		return
	}

	if err := s.h.sessionService.RecordAnswer(ctx, s.examID, req.QID, req.Answer); err != nil {
		s.writeServiceError(err)
		return
	}
	_ = s.conn.WriteTyped(ws.AutosaveEvent{Event: ws.EventSuccess, Status: "saved", QID: req.QID})
}

// submit finalizes on user request. It reports whether the stream is over.
func (s *stream) submit(confirmed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return true
	}

	summary, err := s.finalize(service.FinalizeOptions{Trigger: service.TriggerManual, Confirmed: confirmed})
	if err != nil {
		var confirm *service.ConfirmationRequiredError
		if errors.As(err, &confirm) {
			_ = s.conn.WriteTyped(ws.ConfirmRequiredEvent{
				Event:    ws.EventConfirmRequired,
				Answered: confirm.Answered,
				Total:    confirm.Total,
			})
			return false
		}
		s.writeServiceError(err)
		// A closed exam cannot be resumed on this connection.
		return errors.Is(err, service.ErrExamClosed)
	}

	s.timer.Stop()
	s.sendGraded(service.TriggerManual, summary)
	return true
}

func (s *stream) onTick(remaining time.Duration) {
	_ = s.conn.WriteTyped(ws.TickEvent{
		Event:            ws.EventTick,
		RemainingSeconds: int(remaining / time.Second),
		RemainingMinutes: remaining.Minutes(),
	})
}

// onExpire runs on the countdown goroutine when time is up.
func (s *stream) onExpire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return
	}

	summary, err := s.finalize(service.FinalizeOptions{Trigger: service.TriggerTimeout})
	if err != nil {
		s.writeServiceError(err)
		s.conn.CloseNormal("finalize failed")
		return
	}
	s.sendGraded(service.TriggerTimeout, summary)
}

// finalize must be called with mu held.
func (s *stream) finalize(opts service.FinalizeOptions) (*model.ResultSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	summary, err := s.h.sessionService.Finalize(ctx, s.examID, opts)
	if err != nil {
		return nil, err
	}
	s.finalized = true
	return summary, nil
}

func (s *stream) sendGraded(trigger service.FinalizeTrigger, summary *model.ResultSummary) {
	_ = s.conn.WriteTyped(ws.GradedEvent{
		Event:   ws.EventGraded,
		Status:  "completed",
		Trigger: string(trigger),
		Result:  summary,
	})
	s.log.Info().Str("trigger", string(trigger)).Int("correct", summary.Correct).Msg("Exam finalized over WebSocket")
	s.conn.CloseNormal("exam finalized")
}

func (s *stream) writeServiceError(err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("Session operation failed")
	}
	_ = s.conn.WriteError(string(code), response.GetMessage(code))
}
