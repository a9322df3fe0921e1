package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/knowlympics/knowlympics-backend/internal/middleware"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/response"
	"github.com/knowlympics/knowlympics-backend/internal/service"
	ws "github.com/knowlympics/knowlympics-backend/internal/websocket"
)

const submitTimeout = 10 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// WSHandler streams a quiz session: countdown ticks go out every second and
// the client drives answers, navigation and submission over the same socket.
type WSHandler struct {
	sessions *service.QuizSessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.QuizSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:session_id/stream
func (h *WSHandler) SessionStream(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	sess, err := h.sessions.Get(claims.UserID, id)
	if err != nil {
		failErr(c, h.log, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Int("learner_id", claims.UserID).
		Str("session_id", id.String()).
		Logger()
	wsLog.Info().Msg("Learner connected")

	events, cancel := sess.Subscribe()
	defer cancel()

	if err := conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Session: sess.View()}); err != nil {
		return
	}

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		h.pump(conn, events)
	}()

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}
		h.handleAction(conn, wsLog, claims.UserID, sess, msg)
	}

	cancel()
	<-pumpDone
}

// pump forwards session events until the subscription closes. After the
// submitted event the socket is closed normally.
func (h *WSHandler) pump(conn *ws.Conn, events <-chan quiz.Event) {
	for ev := range events {
		var err error
		switch ev.Type {
		case quiz.EventTick:
			err = conn.WriteTyped(ws.TickResponse{Event: ws.EventTick, TimeLeft: ev.TimeLeft})
		case quiz.EventSubmitted:
			out := ws.SubmittedResponse{Event: ws.EventSubmitted, Trigger: ev.Trigger}
			if ev.Result != nil {
				out.Result = *ev.Result
			}
			if err = conn.WriteTyped(out); err == nil {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "submitted"),
					time.Now().Add(time.Second))
			}
		}
		if err != nil {
			return
		}
	}
}

func (h *WSHandler) handleAction(conn *ws.Conn, log zerolog.Logger, learnerID int, sess *quiz.Session, msg ws.RequestPayload) {
	var err error
	switch msg.Action {
	case ws.ActionPing:
		_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		return
	case ws.ActionState:
	case ws.ActionAnswer:
		err = sess.RecordAnswer(msg.QuestionID, msg.Slot())
	case ws.ActionNext:
		_, err = sess.Next()
	case ws.ActionPrevious:
		_, err = sess.Previous()
	case ws.ActionGoTo:
		err = sess.GoTo(msg.Index)
	case ws.ActionSubmit:
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		_, err = h.sessions.Submit(ctx, learnerID, sess.ID())
		cancel()
		var transport *quiz.SubmissionTransportError
		if errors.As(err, &transport) {
			log.Warn().Err(err).Msg("Attempt not stored")
			_ = conn.WriteError(string(response.ErrPersistFailed), response.GetMessage(response.ErrPersistFailed))
		}
		// The submitted event reaches the client through the subscription.
		return
	default:
		log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		_ = conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
		return
	}

	if err != nil {
		code := wsErrorCode(err)
		_ = conn.WriteError(string(code), err.Error())
		return
	}
	_ = conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Session: sess.View()})
}

func wsErrorCode(err error) response.ErrCode {
	var invalid *quiz.InvalidAnswerError
	switch {
	case errors.As(err, &invalid):
		return response.ErrInvalidAnswer
	case errors.Is(err, quiz.ErrSessionSubmitted):
		return response.ErrSessionSubmitted
	case errors.Is(err, quiz.ErrIndexOutOfRange):
		return response.ErrIndexOutOfRange
	default:
		return response.ErrInternal
	}
}
