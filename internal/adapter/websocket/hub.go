package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pscheid92/boxvote/internal/adapter/metrics"
	"github.com/pscheid92/boxvote/internal/domain"
)

const (
	maxViewers     = 32
	sendBuffer     = 16
	writeTimeout   = 5 * time.Second
	maxMessageSize = 512
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	id    uuid.UUID
	conn  *websocket.Conn
	errCh chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	id uuid.UUID
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdViewerCount struct {
	replyCh chan int
}

func (cmdViewerCount) hubCmd() {}

type cmdStop struct {
	done chan struct{}
}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type viewerWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newViewerWriter(conn *websocket.Conn) *viewerWriter {
	vw := &viewerWriter{
		conn:   conn,
		sendCh: make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	go vw.run()
	return vw
}

func (vw *viewerWriter) run() {
	for {
		select {
		case msg := <-vw.sendCh:
			_ = vw.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := vw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-vw.done:
			return
		}
	}
}

func (vw *viewerWriter) stop() {
	close(vw.done)
	_ = vw.conn.Close()
}

// --- Hub ---

// Hub streams rendered views to every connected page. It implements domain.ViewPublisher
// and http.Handler. All viewer bookkeeping happens on a single goroutine.
type Hub struct {
	upgrader websocket.Upgrader
	metrics  *metrics.ViewerMetrics

	cmdCh   chan hubCmd
	stopped chan struct{}

	// owned by run
	viewers map[uuid.UUID]*viewerWriter
	last    []byte
}

var _ domain.ViewPublisher = (*Hub)(nil)

func NewHub(checkOrigin func(r *http.Request) bool, m *metrics.ViewerMetrics) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		metrics:  m,
		cmdCh:    make(chan hubCmd, 64),
		stopped:  make(chan struct{}),
		viewers:  make(map[uuid.UUID]*viewerWriter),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.id)
		case cmdBroadcast:
			h.handleBroadcast(c.data)
		case cmdViewerCount:
			c.replyCh <- len(h.viewers)
		case cmdStop:
			for id := range h.viewers {
				h.handleUnregister(id)
			}
			close(h.stopped)
			close(c.done)
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if len(h.viewers) >= maxViewers {
		_ = c.conn.Close()
		c.errCh <- fmt.Errorf("max viewers (%d) reached", maxViewers)
		return
	}

	vw := newViewerWriter(c.conn)
	h.viewers[c.id] = vw
	h.metrics.ActiveViewers.Set(float64(len(h.viewers)))

	// New pages get the latest frame right away instead of waiting for the next tick.
	if h.last != nil {
		vw.sendCh <- h.last
	}

	slog.Debug("Viewer connected", "viewer_id", c.id, "viewers", len(h.viewers))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(id uuid.UUID) {
	vw, ok := h.viewers[id]
	if !ok {
		return
	}
	vw.stop()
	delete(h.viewers, id)
	h.metrics.ActiveViewers.Set(float64(len(h.viewers)))
	slog.Debug("Viewer disconnected", "viewer_id", id, "viewers", len(h.viewers))
}

func (h *Hub) handleBroadcast(data []byte) {
	h.last = data
	h.metrics.ViewsPublished.Inc()

	var slow []uuid.UUID
	for id, vw := range h.viewers {
		select {
		case vw.sendCh <- data:
		default:
			slow = append(slow, id)
		}
	}

	for _, id := range slow {
		slog.Info("Disconnecting slow viewer", "viewer_id", id)
		h.metrics.SlowDisconnects.Inc()
		h.handleUnregister(id)
	}
}

func (h *Hub) send(ctx context.Context, cmd hubCmd) error {
	select {
	case <-h.stopped:
		return errHubStopped
	default:
	}

	select {
	case h.cmdCh <- cmd:
		return nil
	case <-h.stopped:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

var errHubStopped = errors.New("hub stopped")

// --- Public API ---

// PublishView fans the view out to every connected viewer.
func (h *Hub) PublishView(ctx context.Context, view domain.View) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	if err := h.send(ctx, cmdBroadcast{data: data}); err != nil {
		return fmt.Errorf("publish view: %w", err)
	}
	return nil
}

// ServeHTTP upgrades the request and keeps the viewer registered until the page goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "WebSocket upgrade failed", "error", err)
		return
	}

	id := uuid.New()
	errCh := make(chan error, 1)
	if err := h.send(r.Context(), cmdRegister{id: id, conn: conn, errCh: errCh}); err != nil {
		_ = conn.Close()
		return
	}
	select {
	case err := <-errCh:
		if err != nil {
			slog.WarnContext(r.Context(), "Viewer rejected", "error", err)
			return
		}
	case <-h.stopped:
		_ = conn.Close()
		return
	}

	// Pages never send anything; reading only detects the close.
	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	_ = h.send(context.Background(), cmdUnregister{id: id})
}

// ViewerCount returns the number of connected viewers, or 0 once the hub is stopped.
func (h *Hub) ViewerCount() int {
	replyCh := make(chan int, 1)
	if err := h.send(context.Background(), cmdViewerCount{replyCh: replyCh}); err != nil {
		return 0
	}
	select {
	case n := <-replyCh:
		return n
	case <-h.stopped:
		return 0
	}
}

// Stop disconnects every viewer. Later publishes fail with an error.
func (h *Hub) Stop() {
	done := make(chan struct{})
	if err := h.send(context.Background(), cmdStop{done: done}); err != nil {
		return
	}
	<-done
}
