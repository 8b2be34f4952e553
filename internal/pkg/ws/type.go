// Package ws streams team notifications to websocket clients.
package ws

import (
	"context"

	"github.com/roackb2/snowdream/internal/pkg/pubsub"
)

type WsEventType string

const (
	WsEventTypePing WsEventType = "ping"
	WsEventTypePong WsEventType = "pong"
	// WsEventTypeFollow restricts the stream to one role; an empty role
	// follows every role again.
	WsEventTypeFollow  WsEventType = "follow"
	WsEventTypeMessage WsEventType = "message"
	WsEventTypeError   WsEventType = "error"
)

type WsData struct {
	Message *pubsub.MessageEvent `json:"message,omitempty"`
	Pong    string               `json:"pong,omitempty"`
	Role    string               `json:"role,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// WsMessage is a frame sent in either direction.
type WsMessage struct {
	Event WsEventType `json:"event"`
	Data  WsData      `json:"data"`
}

type WsConnection interface {
	ReadJSON(v interface{}) error
	WriteJSON(message interface{}) error
	Close() error
}

type WsHandler interface {
	HandleConnection(ctx context.Context) error
}
