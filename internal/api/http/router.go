package http

import (
	"github.com/gin-gonic/gin"

	"number-royale/internal/api/ws"
	"number-royale/internal/config"
)

// SetupRouter wires the websocket endpoint and the static client files.
func SetupRouter(hub *ws.Hub, cfg config.Config) *gin.Engine {
	r := gin.Default()

	r.GET("/ws", hub.HandleWS)

	// Everything else is a file under the public root.
	r.NoRoute(StaticHandler(cfg.PublicDir))

	return r
}
