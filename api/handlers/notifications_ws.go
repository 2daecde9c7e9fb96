package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/diantamela/satgas-ppk/api"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// tokenFromQuery lets browsers, which cannot set headers on a websocket handshake, pass
// the bearer token as ?access_token=
func tokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.URL.Query().Get("access_token"); token != "" && r.Header.Get("Authorization") == "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		next.ServeHTTP(w, r)
	})
}

// WebSocketHandler streams the caller's new notifications until the client disconnects
func (n Notification) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade error", "error", err)
		return
	}

	n.Hub.Register(actor.ID, conn)
	zap.S().Debugw("user connected to /ws/notifications", "user", actor.ID)
	defer func() {
		n.Hub.Unregister(actor.ID, conn)
		conn.Close()
		zap.S().Debugw("user disconnected from /ws/notifications", "user", actor.ID)
	}()

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
