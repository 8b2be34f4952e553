package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roackb2/snowdream/internal/pkg/pubsub"
)

type WsHandlerImpl struct {
	conn   WsConnection
	pubsub pubsub.PubSub
	topic  string

	writeMu sync.Mutex
	mu      sync.Mutex
	follow  string
}

var _ WsHandler = (*WsHandlerImpl)(nil)

func NewWsHandler(conn WsConnection, ps pubsub.PubSub, topic string) *WsHandlerImpl {
	if topic == "" {
		topic = pubsub.DefaultTopic
	}
	return &WsHandlerImpl{conn: conn, pubsub: ps, topic: topic}
}

// HandleConnection forwards notifications until the client goes away or
// ctx ends. The subscription lives exactly as long as the call.
func (h *WsHandlerImpl) HandleConnection(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := h.pubsub.Subscribe(ctx, h.topic, h.handleNotification); err != nil {
		slog.Error("WsHandler: failed to subscribe", "topic", h.topic, "error", err)
		return err
	}
	go func() {
		<-ctx.Done()
		// Unblocks the pending read.
		_ = h.conn.Close()
	}()

	for {
		var msg WsMessage
		if err := h.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Info("WsHandler: connection closed", "error", err)
			return err
		}
		if err := h.handleMessage(msg); err != nil {
			slog.Warn("WsHandler: bad client frame", "event", msg.Event, "error", err)
			if err := h.write(WsMessage{Event: WsEventTypeError, Data: WsData{Error: err.Error()}}); err != nil {
				return err
			}
		}
	}
}

func (h *WsHandlerImpl) handleMessage(msg WsMessage) error {
	switch msg.Event {
	case WsEventTypePing:
		return h.write(WsMessage{Event: WsEventTypePong, Data: WsData{Pong: fmt.Sprintf("pong: %s", msg.Data.Pong)}})
	case WsEventTypeFollow:
		h.mu.Lock()
		h.follow = msg.Data.Role
		h.mu.Unlock()
		slog.Debug("WsHandler: following", "role", msg.Data.Role)
		return nil
	default:
		return fmt.Errorf("unknown event: %s", msg.Event)
	}
}

func (h *WsHandlerImpl) handleNotification(_ context.Context, raw string) error {
	event, err := pubsub.DecodeMessageEvent(raw)
	if err != nil {
		// One bad payload must not end the stream.
		slog.Error("WsHandler: failed to decode notification", "error", err)
		return nil
	}
	h.mu.Lock()
	follow := h.follow
	h.mu.Unlock()
	if follow != "" && follow != event.Role {
		return nil
	}
	return h.write(WsMessage{Event: WsEventTypeMessage, Data: WsData{Message: &event}})
}

// write serializes frames; websocket connections allow one writer.
func (h *WsHandlerImpl) write(msg WsMessage) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if err := h.conn.WriteJSON(msg); err != nil {
		slog.Error("WsHandler: failed to write frame", "event", msg.Event, "error", err)
		return err
	}
	return nil
}
