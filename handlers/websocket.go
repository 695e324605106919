package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Faarae/dashboard-SmartEcoBin/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveWebSocket sends the current view on connect, then every message the
// render loop publishes.
func LiveWebSocket(hub *services.Hub, monitor *services.Monitor, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Read pump: detect client disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ch, unsubscribe := hub.Subscribe()
		defer unsubscribe()

		if err := conn.WriteJSON(services.Message{Type: services.MessageView, Data: monitor.View()}); err != nil {
			log.Debug("ws write error", "err", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug("ws write error", "err", err)
					return
				}
			}
		}
	}
}
