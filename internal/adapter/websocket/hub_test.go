package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/boxvote/internal/adapter/metrics"
	"github.com/pscheid92/boxvote/internal/domain"
)

func testHub(t *testing.T) (*Hub, *metrics.ViewerMetrics, func() *ws.Conn) {
	t.Helper()

	m := metrics.NewViewerMetrics(prometheus.NewRegistry())
	hub := NewHub(func(*http.Request) bool { return true }, m)
	t.Cleanup(hub.Stop)

	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)

	dial := func() *ws.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := ws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}

	return hub, m, dial
}

func readView(t *testing.T, conn *ws.Conn) domain.View {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var view domain.View
	require.NoError(t, json.Unmarshal(data, &view))
	return view
}

func TestHub_PublishReachesViewers(t *testing.T) {
	hub, m, dial := testHub(t)

	a := dial()
	b := dial()
	require.Eventually(t, func() bool { return hub.ViewerCount() == 2 }, time.Second, 5*time.Millisecond)

	view := domain.View{Status: domain.StatusOpen, Countdown: "BOX OPENS IN 01:00:00", CanVote: true}
	require.NoError(t, hub.PublishView(context.Background(), view))

	assert.Equal(t, "BOX OPENS IN 01:00:00", readView(t, a).Countdown)
	assert.Equal(t, "BOX OPENS IN 01:00:00", readView(t, b).Countdown)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ViewsPublished), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.ActiveViewers), 0)
}

func TestHub_NewViewerGetsLatestView(t *testing.T) {
	hub, _, dial := testHub(t)

	require.NoError(t, hub.PublishView(context.Background(), domain.View{Status: domain.StatusSettled, Outcome: "DEAD"}))

	conn := dial()
	view := readView(t, conn)
	assert.Equal(t, domain.StatusSettled, view.Status)
	assert.Equal(t, "DEAD", view.Outcome)
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, m, dial := testHub(t)

	conn := dial()
	require.Eventually(t, func() bool { return hub.ViewerCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ViewerCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.InDelta(t, 0, testutil.ToFloat64(m.ActiveViewers), 0)
}

func TestHub_StopClosesViewersAndRejectsPublish(t *testing.T) {
	hub, _, dial := testHub(t)

	conn := dial()
	require.Eventually(t, func() bool { return hub.ViewerCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	assert.Error(t, hub.PublishView(context.Background(), domain.View{}))
	assert.Equal(t, 0, hub.ViewerCount())

	hub.Stop()
}
