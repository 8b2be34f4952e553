package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/roackb2/snowdream/internal/pkg/pubsub"
)

// NewRouter mounts the dashboard routes.
func NewRouter(view StateView, ps pubsub.PubSub, topic string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	state := NewStateController(view)
	v1 := r.Group("/api/v1")
	{
		v1.GET("/state", state.GetState)
		v1.GET("/roles/:name/memory", state.GetRoleMemory)
	}
	r.GET("/healthz", Healthz)
	r.GET("/ws", NewWebsocketController(ps, topic).SocketHandler)
	return r
}
