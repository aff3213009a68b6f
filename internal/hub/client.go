package hub

import (
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one WebSocket connection. Outbound messages are queued on a
// buffered channel and written by the client's own writePump goroutine, so
// Send never blocks the registry.
type Client struct {
	conn         *websocket.Conn
	id           string
	addr         string
	send         chan []byte
	pingInterval time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewClient creates a Client for conn. conn may be nil in tests that only
// exercise the queueing side.
func NewClient(conn *websocket.Conn, addr string, opts Options) *Client {
	opts = opts.withDefaults()
	id := uuid.NewString()
	return &Client{
		conn:         conn,
		id:           id,
		addr:         addr,
		send:         make(chan []byte, opts.SendBuffer),
		pingInterval: opts.PingInterval,
		writeTimeout: opts.WriteTimeout,
		logger:       opts.Logger.With(slog.String("conn_id", id), slog.String("remote", addr)),
	}
}

// ID returns the connection identifier used in announcements.
func (c *Client) ID() string {
	return c.id
}

// Addr returns the remote address the connection was accepted from.
func (c *Client) Addr() string {
	return c.addr
}

// GetSendChan returns the client's outbound queue for reading.
func (c *Client) GetSendChan() <-chan []byte {
	return c.send
}

// Send queues message for delivery without blocking.
func (c *Client) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- message:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close closes the outbound queue; writePump then sends a close frame and
// tears the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump blocks reading inbound messages and hands each text payload to
// onText. It returns when the connection leaves the Open state.
func (c *Client) readPump(onText func(text string)) (FaultKind, error) {
	c.setupReadConnection()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return ClassifyReadError(err), err
		}
		if messageType != websocket.TextMessage {
			c.rejectFrame(websocket.CloseUnsupportedData)
			return AbnormalFault, errUnsupportedFrame
		}
		if !utf8.Valid(data) {
			c.rejectFrame(websocket.CloseInvalidFramePayloadData)
			return AbnormalFault, errInvalidUTF8
		}
		onText(string(data))
	}
}

// rejectFrame tells the peer why its connection is being failed.
// WriteControl may run concurrently with writePump.
func (c *Client) rejectFrame(code int) {
	frame := websocket.FormatCloseMessage(code, "")
	if err := c.conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(time.Second)); err != nil && !isExpectedCloseError(err) {
		c.logger.Warn("write close message", slog.Any("error", err))
	}
}

// setupReadConnection installs the pong handler when keepalive is enabled.
func (c *Client) setupReadConnection() {
	if c.pingInterval <= 0 {
		return
	}
	pongWait := c.pingInterval * 10 / 9
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Warn("set initial read deadline", slog.Any("error", err))
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func (c *Client) writePump() {
	var tick <-chan time.Time
	if c.pingInterval > 0 {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer c.closeConnection()

	for c.processWriteEvent(tick) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(tick <-chan time.Time) bool {
	select {
	case message, ok := <-c.send:
		return c.handleMessage(message, ok)
	case <-tick:
		return c.handlePing()
	}
}

// closeConnection closes the underlying connection, ignoring the errors
// expected when the peer is already gone.
func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		c.logger.Warn("close connection", slog.Any("error", err))
	}
}

// handleMessage writes one queued message, or a close frame once the queue
// has been closed. It returns false if the pump should stop.
func (c *Client) handleMessage(message []byte, ok bool) bool {
	if !c.setWriteDeadline() {
		return false
	}
	if !ok {
		c.writeCloseMessage()
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		if !isExpectedCloseError(err) {
			c.logger.Warn("write message", slog.Any("error", err))
		}
		return false
	}
	return true
}

func (c *Client) writeCloseMessage() {
	frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteMessage(websocket.CloseMessage, frame); err != nil && !isExpectedCloseError(err) {
		c.logger.Warn("write close message", slog.Any("error", err))
	}
}

// handlePing sends a ping message to keep the connection alive
func (c *Client) handlePing() bool {
	if !c.setWriteDeadline() {
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn("write ping", slog.Any("error", err))
		return false
	}
	return true
}

func (c *Client) setWriteDeadline() bool {
	if c.writeTimeout <= 0 {
		return true
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		c.logger.Warn("set write deadline", slog.Any("error", err))
		return false
	}
	return true
}
