package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/nongnai/nongnai/internal/executor"
	"github.com/nongnai/nongnai/pkg/logx"
)

const writeTimeout = 5 * time.Second

// hub fans finished execution results out to websocket subscribers.
type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *hub) broadcast(res executor.Result) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := wsjson.Write(ctx, c, &res); err != nil {
			logx.Debug().Err(err).Msg("gateway: dropping stream subscriber")
			h.remove(c)
			_ = c.Close(websocket.StatusPolicyViolation, "write failed")
		}
		cancel()
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// handleStream upgrades the request and keeps the connection registered until
// the client goes away. Subscribers only receive; inbound frames are drained
// to surface closes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		logx.Warn().Err(err).Msg("gateway: websocket accept failed")
		return
	}
	s.hub.add(c)
	defer s.hub.remove(c)

	ctx := r.Context()
	for {
		if _, _, err := c.Read(ctx); err != nil {
			_ = c.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}
