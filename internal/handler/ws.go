package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/snow6692/chat/internal/hub"
)

// WSHandler upgrades /ws requests and hands the connection to the hub.
type WSHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

// NewWSHandler builds the upgrade handler. Browser connections must come from
// allowedOrigin; requests without an Origin header (non-browser clients such
// as the CLI) are accepted.
func NewWSHandler(h *hub.Hub, allowedOrigin string, log *zap.SugaredLogger) *WSHandler {
	return &WSHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if origin == allowedOrigin {
					return true
				}
				log.Warnw("blocked connection from disallowed origin", "origin", origin)
				return false
			},
		},
		log: log,
	}
}

func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "err", err)
		return
	}
	h.hub.Register(hub.NewClient(conn, h.hub))
}
