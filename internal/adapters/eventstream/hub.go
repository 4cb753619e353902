package eventstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
)

// Hub broadcasts task signals to websocket subscribers. It is an EventSink;
// Publish never blocks and a client whose buffer is full misses frames.
type Hub struct {
	upgrader     websocket.Upgrader
	clientBuffer int
	writeTimeout time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}
	dropped atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

type client struct {
	out    chan []byte
	types  map[string]bool
	kinds  map[string]bool
	closed chan struct{}
}

// wants reports whether the client's filters accept the message
func (c *client) wants(m SignalMessage) bool {
	if len(c.types) > 0 && !c.types[m.Type] {
		return false
	}
	if len(c.kinds) > 0 && !c.kinds[m.Kind] {
		return false
	}
	return true
}

// NewHub creates a hub with per-client buffers of clientBuffer frames
func NewHub(clientBuffer int, writeTimeout time.Duration) *Hub {
	if clientBuffer <= 0 {
		clientBuffer = 256
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clientBuffer: clientBuffer,
		writeTimeout: writeTimeout,
		clients:      make(map[*client]struct{}),
		done:         make(chan struct{}),
	}
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Clients returns the number of connected subscribers
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns frames discarded for slow clients
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Publish fans a signal out to every interested client
func (h *Hub) Publish(ctx context.Context, signal task.Signal) {
	msg := newSignalMessage(signal)
	frame, err := json.Marshal(msg)
	if err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelError, "Failed to encode signal", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.wants(msg) {
			continue
		}
		select {
		case c.out <- frame:
		default:
			h.dropped.Add(1)
		}
	}
}

// Handler upgrades requests to websocket subscriptions. Optional query
// parameters "types" and "kinds" take comma separated filters.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &client{
			out:    make(chan []byte, h.clientBuffer),
			types:  parseFilter(r.URL.Query().Get("types")),
			kinds:  parseFilter(r.URL.Query().Get("kinds")),
			closed: make(chan struct{}),
		}
		h.add(c)
		defer h.remove(c)

		// Reader loop; subscribers never send, but reading surfaces close frames
		go func() {
			defer close(c.closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-c.closed:
				return
			case <-h.done:
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(time.Second))
				return
			case <-r.Context().Done():
				return
			case frame := <-c.out:
				_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			}
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func parseFilter(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	out := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(strings.ToUpper(part)); part != "" {
			out[part] = true
		}
	}
	return out
}

// Serve listens on addr and serves the hub at path until ctx is cancelled
func (h *Hub) Serve(ctx context.Context, addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, h.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for event stream on %s: %w", addr, err)
	}
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Event stream listening", map[string]interface{}{
		"address": ln.Addr().String(),
		"path":    path,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		// Shutdown does not track hijacked connections
		h.Close()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
