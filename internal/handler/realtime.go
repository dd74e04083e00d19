package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/orbitdrive/orbitdrive/internal/ctxkeys"
	"github.com/orbitdrive/orbitdrive/internal/realtime"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens via the bearer token before the upgrade
		return true
	},
}

// scopeMessage is the only client-to-server frame: it narrows delivery
// to one folder, or widens it back to everything.
type scopeMessage struct {
	All      bool    `json:"all"`
	FolderID *string `json:"folder_id"` // nil with all=false means the root scope
}

type RealtimeHandler struct {
	hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Events upgrades to a websocket and streams the caller's change events
// until the client goes away.
func (h *RealtimeHandler) Events(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "user_id", callerID)
		return
	}

	sub := h.hub.Subscribe(callerID)
	defer h.hub.Unsubscribe(sub)

	go readPump(conn, sub)
	writePump(conn, sub)
}

// readPump consumes scope messages and pong frames. Closing the
// connection ends the loop, which in turn ends writePump via the error
// on its next write.
func readPump(conn *websocket.Conn, sub *realtime.Subscriber) {
	defer conn.Close()

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg scopeMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			return
		}

		if msg.All {
			sub.SetScope(nil)
			continue
		}
		if msg.FolderID == nil {
			root := ""
			sub.SetScope(&root)
			continue
		}
		sub.SetScope(msg.FolderID)
	}
}

// writePump forwards hub events to the client and keeps the connection
// alive with pings.
func writePump(conn *websocket.Conn, sub *realtime.Subscriber) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case evt, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
