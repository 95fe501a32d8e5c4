package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "orderflow/internal/domain/entity/marketdata"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func newTestHub() *Hub {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewHub(logger)
}

func TestHub_PushesDashboards(t *testing.T) {
	hub := newTestHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.PublishDashboard(ctx, &domain.Dashboard{Symbol: "BTC/USDT", Status: domain.DashboardStatusReady}))

	var got domain.Dashboard
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, "BTC/USDT", got.Symbol)
	assert.Equal(t, domain.DashboardStatusReady, got.Status)
}

func TestHub_NewSubscriberGetsLatest(t *testing.T) {
	hub := newTestHub()
	require.NoError(t, hub.PublishDashboard(context.Background(), &domain.Dashboard{Symbol: "ETH/USDT"}))

	id, ch := hub.subscribe()
	defer hub.unsubscribe(id)

	select {
	case d := <-ch:
		assert.Equal(t, "ETH/USDT", d.Symbol)
	default:
		t.Fatal("expected cached dashboard")
	}
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	hub := newTestHub()
	_, ch := hub.subscribe()

	for i := 0; i <= subscriberBuffer; i++ {
		require.NoError(t, hub.PublishDashboard(context.Background(), &domain.Dashboard{}))
	}

	assert.Zero(t, hub.Subscribers())
	for range ch {
	}
}
