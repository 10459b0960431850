package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/code-golf/internal/screen"
	"github.com/terra-clan/code-golf/internal/session"
)

const writeWait = 10 * time.Second

// closedMessage tells the browser its session ended while the socket was open
const closedMessage = "your session was closed by the server, the page will start over"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ErrorMessage reports an inbound message the server could not use
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// conn serializes writes to one websocket
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal websocket message", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *conn) close(code int, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, text)
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer ws.Close()

	if s.readLimit > 0 {
		ws.SetReadLimit(s.readLimit)
	}

	c := &conn{ws: ws}
	sess := s.sessions.Open(func(f session.Frame) error {
		return c.send(f)
	})
	defer s.sessions.Remove(sess.ID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	left := make(chan struct{})
	defer close(left)

	// A reaped session takes its socket with it.
	go func() {
		select {
		case <-sess.Done():
			c.send(ErrorMessage{Type: "error", Error: closedMessage})
			c.close(websocket.CloseGoingAway, "session closed")
			ws.Close()
		case <-left:
		}
	}()

	slog.Info("session websocket connected", "session_id", sess.ID(), "remote_addr", r.RemoteAddr)

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "session_id", sess.ID(), "error", err)
			}
			break
		}

		action, err := screen.DecodeAction(message)
		if err != nil {
			slog.Debug("invalid action", "session_id", sess.ID(), "error", err)
			c.send(ErrorMessage{Type: "error", Error: err.Error()})
			continue
		}

		if err := sess.Dispatch(ctx, action); err != nil {
			break
		}
	}

	slog.Info("session websocket disconnected", "session_id", sess.ID())
}
