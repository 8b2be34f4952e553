package controllers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/roackb2/snowdream/internal/pkg/pubsub"
	"github.com/roackb2/snowdream/internal/pkg/ws"
)

type WebsocketController struct {
	upgrader websocket.Upgrader
	pubsub   pubsub.PubSub
	topic    string
}

func NewWebsocketController(ps pubsub.PubSub, topic string) *WebsocketController {
	return &WebsocketController{upgrader: websocket.Upgrader{}, pubsub: ps, topic: topic}
}

func (wc *WebsocketController) SocketHandler(c *gin.Context) {
	conn, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebsocketController: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if err := ws.NewWsHandler(conn, wc.pubsub, wc.topic).HandleConnection(c.Request.Context()); err != nil {
		slog.Debug("WebsocketController: connection ended", "error", err)
	}
}
