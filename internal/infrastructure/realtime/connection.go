package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 128
)

var (
	ErrConnectionClosed = errors.New("realtime: connection closed")
	ErrBufferExceeded   = errors.New("realtime: connection buffer exceeded")
)

// socket is the subset of *websocket.Conn used by the write loop.
type socket interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Connection wraps a websocket and coordinates outbound writes via a buffered channel.
// ID doubles as the socket id that channel authorization tokens are bound to.
type Connection struct {
	ID     string
	UserID string

	ws      socket
	send    chan []byte
	once    sync.Once
	close   chan struct{}
	limiter *rate.Limiter
}

// NewConnection constructs a Connection for the given user. Inbound frames
// are limited to perSecond with the given burst; perSecond <= 0 disables it.
func NewConnection(userID string, ws *websocket.Conn, perSecond float64, burst int) *Connection {
	return newConnection(userID, ws, perSecond, burst)
}

func newConnection(userID string, ws socket, perSecond float64, burst int) *Connection {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Connection{
		ID:      uuid.NewString(),
		UserID:  userID,
		ws:      ws,
		send:    make(chan []byte, sendBuffer),
		close:   make(chan struct{}),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Allow reports whether another inbound frame may be processed now.
func (c *Connection) Allow() bool {
	return c.limiter.Allow()
}

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.close
}

// Send enqueues payload for delivery and never blocks. A full buffer closes
// the connection in the background so one slow client cannot hold up fan-out.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		go c.Close(websocket.CloseGoingAway, "send buffer full")
		return ErrBufferExceeded
	}
}

// Close terminates the connection and stops the write loop. It may run
// concurrently with the write loop: only WriteControl and Close touch the
// socket here, and the close frame carries its own deadline.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.close)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Close(websocket.CloseInternalServerErr, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseInternalServerErr, "ping failed")
				return
			}
		}
	}
}

func (c *Connection) write(kind int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(kind, payload)
}
