package ws

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/metaverse/internal/infrastructure/configs"
)

func NewUpgrader(cfg configs.WebSocketConfig, allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     checkOrigin(allowedOrigins),
	}
}

// checkOrigin accepts requests without an Origin header, and any origin when
// the list contains "*".
func checkOrigin(allowed []string) func(r *http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
