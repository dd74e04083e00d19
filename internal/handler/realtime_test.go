package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitdrive/orbitdrive/internal/middleware"
	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/realtime"
)

const testJWTSecret = "test-secret"

// eventsServer stands up the events route behind the same middleware
// chain the real router uses.
func eventsServer(t *testing.T, hub *realtime.Hub) *httptest.Server {
	t.Helper()

	rt := NewRealtimeHandler(hub)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/events", middleware.RequireAuth(rt.Events))

	srv := httptest.NewServer(middleware.Chain(
		mux,
		middleware.Metrics,
		middleware.RequestLogging,
		middleware.AuthMiddleware(testJWTSecret),
	))
	t.Cleanup(srv.Close)

	return srv
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
}

// The upgrade must succeed through the full middleware chain; the
// wrapped response writer has to keep exposing the hijackable
// connection underneath.
func TestEventsUpgradeThroughMiddlewareChain(t *testing.T) {
	hub := realtime.NewHub()
	srv := eventsServer(t, hub)

	header := http.Header{"Authorization": {"Bearer " + bearerToken(t, "alice")}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool {
		return hub.SubscriberCount("alice") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(model.ChangeEvent{
		Table:   model.EventTableFile,
		Op:      model.EventOpInsert,
		OwnerID: "alice",
		Row:     &model.File{ID: "f1", Name: "report.pdf", OwnerID: "alice"},
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var frame struct {
		Table string         `json:"table"`
		Op    string         `json:"operation"`
		Row   map[string]any `json:"row"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, model.EventTableFile, frame.Table)
	assert.Equal(t, model.EventOpInsert, frame.Op)
	assert.Equal(t, "report.pdf", frame.Row["name"])
}

func TestEventsSubscriberRemovedOnDisconnect(t *testing.T) {
	hub := realtime.NewHub()
	srv := eventsServer(t, hub)

	header := http.Header{"Authorization": {"Bearer " + bearerToken(t, "alice")}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return hub.SubscriberCount("alice") == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	// The write pump only notices the dead connection on its next
	// write, so keep feeding it events until it gives up.
	require.Eventually(t, func() bool {
		hub.Publish(model.ChangeEvent{
			Table: model.EventTableFile, Op: model.EventOpUpdate, OwnerID: "alice",
			Row: &model.File{ID: "f1", OwnerID: "alice"},
		})
		return hub.SubscriberCount("alice") == 0
	}, time.Second, 10*time.Millisecond)
}

func TestEventsRejectsUnauthenticatedDial(t *testing.T) {
	hub := realtime.NewHub()
	srv := eventsServer(t, hub)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Nil(t, conn)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
