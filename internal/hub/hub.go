package hub

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Options configures a Hub and the clients it accepts.
type Options struct {
	// SendBuffer is the per-connection outbound queue depth (default 256).
	SendBuffer int
	// PingInterval enables ping keepalive when positive. Off by default.
	PingInterval time.Duration
	// WriteTimeout bounds each outbound write when positive. Off by default.
	WriteTimeout time.Duration
	// CheckOrigin validates the Origin header of upgrade requests. Nil
	// keeps gorilla's same-host check.
	CheckOrigin func(r *http.Request) bool
	Logger      *slog.Logger
	Metrics     *Metrics
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Hub accepts WebSocket connections, registers them, and relays every
// inbound message to all registered connections.
type Hub struct {
	registry *Registry
	upgrader websocket.Upgrader
	opts     Options
	logger   *slog.Logger
	metrics  *Metrics

	mu       sync.Mutex
	closing  bool
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Hub ready to serve connections.
func New(opts Options) *Hub {
	opts = opts.withDefaults()
	return &Hub{
		registry: NewRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		stop:    make(chan struct{}),
	}
}

// Size returns the approximate number of registered connections.
func (h *Hub) Size() int {
	return h.registry.Size()
}

// ServeHTTP upgrades the request to a WebSocket and runs the connection
// until it closes. It blocks for the lifetime of the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}
	if !h.track() {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	defer h.wg.Done()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		h.logger.Warn("websocket upgrade failed", slog.String("remote", r.RemoteAddr), slog.Any("error", err))
		return
	}

	h.serveClient(NewClient(conn, r.RemoteAddr, h.opts))
}

// track reserves a slot in the wait group unless shutdown has begun.
func (h *Hub) track() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.wg.Add(1)
	return true
}

func (h *Hub) isClosing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closing
}

// serveClient drives one connection through Open, Closing and Closed.
func (h *Hub) serveClient(c *Client) {
	if err := h.registry.Add(c); err != nil {
		c.logger.Error("register connection", slog.Any("error", err))
		c.closeConnection()
		return
	}
	if h.isClosing() {
		h.registry.Remove(c)
		c.closeConnection()
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		c.writePump()
	}()

	total := h.registry.Size()
	h.metrics.setConnections(total)
	c.logger.Info("connection registered", slog.Int("total", total))
	h.broadcast(joinedMessage(c.ID(), total))

	kind, err := c.readPump(func(text string) {
		h.metrics.messageReceived()
		h.broadcast(relayMessage(c.ID(), text))
	})

	h.registry.Remove(c)
	remaining := h.registry.Size()
	h.metrics.setConnections(remaining)
	h.metrics.disconnected(kind)

	if kind == CleanDisconnect {
		c.logger.Info("connection closed", slog.Int("remaining", remaining), slog.Any("reason", err))
		h.broadcast(leftMessage(c.ID(), remaining))
		return
	}
	c.logger.Warn("connection faulted", slog.Int("remaining", remaining), slog.Any("error", err))
}

func (h *Hub) broadcast(message []byte) {
	delivered, dropped := h.registry.Broadcast(message)
	h.metrics.broadcast(delivered, dropped)
	if dropped > 0 {
		h.metrics.setConnections(h.registry.Size())
		h.logger.Warn("dropped unresponsive connections", slog.Int("dropped", dropped))
	}
}

// Run blocks until ctx is cancelled or Shutdown is called, then closes all
// registered connections.
func (h *Hub) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-h.stop:
	}
	h.closeAll()
}

// closeAll stops accepting connections and closes every registered one.
func (h *Hub) closeAll() {
	h.mu.Lock()
	h.closing = true
	h.mu.Unlock()
	h.stopOnce.Do(func() { close(h.stop) })

	peers := h.registry.Drain()
	h.metrics.setConnections(0)
	if len(peers) > 0 {
		h.logger.Info("closed client connections", slog.Int("count", len(peers)))
	}
}

// Shutdown closes all connections and waits for their goroutines to finish,
// returning context.DeadlineExceeded if that takes longer than timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.logger.Info("initiating hub shutdown")
	h.closeAll()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.logger.Warn("hub shutdown timeout reached, some connections may still be open")
		return context.DeadlineExceeded
	}
}
