package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	subscriberBuffer = 4
	writeTimeout     = 5 * time.Second
)

// Hub pushes every published dashboard to connected websocket clients.
// Clients that fall behind are disconnected instead of slowing the others.
type Hub struct {
	logger *logrus.Entry

	mu     sync.Mutex
	subs   map[int]chan *domain.Dashboard
	nextID int
	latest *domain.Dashboard
}

var _ interfaces.DashboardPublisher = (*Hub)(nil)

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger: logger.WithField("component", "ws_hub"),
		subs:   make(map[int]chan *domain.Dashboard),
	}
}

// PublishDashboard never blocks on slow clients.
func (h *Hub) PublishDashboard(_ context.Context, dashboard *domain.Dashboard) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = dashboard
	for id, ch := range h.subs {
		select {
		case ch <- dashboard:
		default:
			close(ch)
			delete(h.subs, id)
		}
	}
	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe() (int, chan *domain.Dashboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan *domain.Dashboard, subscriberBuffer)
	if h.latest != nil {
		ch <- h.latest
	}
	h.subs[id] = ch
	return id, ch
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		close(ch)
		delete(h.subs, id)
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	id, updates := h.subscribe()
	defer h.unsubscribe(id)

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case dashboard, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "client too slow")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, dashboard)
			cancel()
			if err != nil {
				if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
					h.logger.WithError(err).Debug("websocket write failed")
				}
				return
			}
		}
	}
}
