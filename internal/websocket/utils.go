package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// Clients ping well inside this window; silence longer than that means
	// the exam view is gone.
	readWait = 5 * time.Minute
)

// Conn serializes writes on a gorilla connection. The countdown and the
// read loop both write, and gorilla allows one writer at a time.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// NewConn wraps an upgraded connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteTyped sends a strongly-typed event payload.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// WriteError sends a typed ErrorEvent.
func (c *Conn) WriteError(code, msg string) error {
	return c.WriteTyped(ErrorEvent{Event: EventError, Code: code, Error: msg})
}

// ReadRequest reads and decodes the next client message.
func (c *Conn) ReadRequest() (*Request, error) {
	_ = c.ws.SetReadDeadline(time.Now().Add(readWait))
	var req Request
	if err := c.ws.ReadJSON(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// CloseNormal sends a close frame so the client stops reading, then closes.
func (c *Conn) CloseNormal(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = c.ws.Close()
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// IsUnexpectedClose reports read errors worth logging.
func IsUnexpectedClose(err error) bool {
	return websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure)
}
