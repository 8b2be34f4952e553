package ws_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/pubsub"
	"github.com/roackb2/snowdream/internal/pkg/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	in     chan ws.WsMessage
	closed chan struct{}
	once   sync.Once
	mu     sync.Mutex
	out    []ws.WsMessage
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan ws.WsMessage, 8), closed: make(chan struct{})}
}

func (c *fakeConn) ReadJSON(v interface{}) error {
	select {
	case msg, ok := <-c.in:
		if !ok {
			return io.EOF
		}
		*v.(*ws.WsMessage) = msg
		return nil
	case <-c.closed:
		return errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, v.(ws.WsMessage))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) frames(event ws.WsEventType) []ws.WsMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []ws.WsMessage
	for _, m := range c.out {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

func publish(t *testing.T, ps pubsub.PubSub, role, content string) {
	raw, err := pubsub.MessageEvent{RunID: "r1", Role: role, Message: schema.Message{Content: content, SentFrom: role}}.Encode()
	require.NoError(t, err)
	require.NoError(t, ps.Publish(context.Background(), pubsub.DefaultTopic, raw, time.Second))
}

func TestHandleConnectionStreamsNotifications(t *testing.T) {
	ps := pubsub.NewChannelPubSub(0)
	defer ps.Close()
	conn := newFakeConn()
	handler := ws.NewWsHandler(conn, ps, "")

	done := make(chan error, 1)
	go func() { done <- handler.HandleConnection(context.Background()) }()

	conn.in <- ws.WsMessage{Event: ws.WsEventTypePing, Data: ws.WsData{Pong: "hi"}}
	require.Eventually(t, func() bool { return len(conn.frames(ws.WsEventTypePong)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "pong: hi", conn.frames(ws.WsEventTypePong)[0].Data.Pong)

	publish(t, ps, "Lily", "Which fields?")
	publish(t, ps, "Stephen", "What about lockout?")
	require.Eventually(t, func() bool { return len(conn.frames(ws.WsEventTypeMessage)) == 2 }, time.Second, 5*time.Millisecond)

	conn.in <- ws.WsMessage{Event: ws.WsEventTypeFollow, Data: ws.WsData{Role: "Stephen"}}
	conn.in <- ws.WsMessage{Event: ws.WsEventTypePing}
	require.Eventually(t, func() bool { return len(conn.frames(ws.WsEventTypePong)) == 2 }, time.Second, 5*time.Millisecond)
	publish(t, ps, "Lily", "ignored")
	publish(t, ps, "Stephen", "followed")
	require.Eventually(t, func() bool { return len(conn.frames(ws.WsEventTypeMessage)) == 3 }, time.Second, 5*time.Millisecond)
	last := conn.frames(ws.WsEventTypeMessage)[2]
	assert.Equal(t, "followed", last.Data.Message.Message.Content)

	conn.in <- ws.WsMessage{Event: "shout"}
	require.Eventually(t, func() bool { return len(conn.frames(ws.WsEventTypeError)) == 1 }, time.Second, 5*time.Millisecond)

	close(conn.in)
	assert.ErrorIs(t, <-done, io.EOF)
}

func TestHandleConnectionStopsWithContext(t *testing.T) {
	ps := pubsub.NewChannelPubSub(0)
	defer ps.Close()
	conn := newFakeConn()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ws.NewWsHandler(conn, ps, "").HandleConnection(ctx) }()
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestHandleConnectionSubscribeFailure(t *testing.T) {
	ps := pubsub.NewChannelPubSub(0)
	require.NoError(t, ps.Close())
	err := ws.NewWsHandler(newFakeConn(), ps, "").HandleConnection(context.Background())
	assert.ErrorIs(t, err, pubsub.ErrClosed)
}
