/*
This file contains the HTTP handler that upgrades connections to WebSocket and
starts the client lifecycle. Authentication is fail-open here: a bad or missing
token still gets a connection, just an unauthenticated one that never joins the
room.
*/
package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"lanshare/internal/app/chat"
	"lanshare/internal/pkg/logx"
)

// HandleWebSocket upgrades the request, resolves the handshake token, and
// hands the connection over to the read/write pumps. Authenticated clients
// are queued for room registration before the read loop starts.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		identity := chat.Authenticate(r.Context(), token, deps.Config.JWTSecret, deps.Store)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "WebSocket upgrade failed")
			return
		}

		connID := uuid.New().String()
		client := chat.NewClient(deps.Room, conn, connID, identity)

		logx.Info("WebSocket connection established",
			"conn_id", connID,
			"authenticated", identity.Authenticated,
		)

		go client.WritePump()

		if identity.Authenticated {
			deps.Room.Register(client)
		}

		client.ReadPump()
	}
}
