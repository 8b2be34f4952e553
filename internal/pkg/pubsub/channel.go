package pubsub

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/roackb2/snowdream/internal/pkg/utils"
)

const DefaultChannelSize = 1024

var ErrClosed = errors.New("pubsub closed")

// ChannelPubSub is an in-process PubSub. Each subscriber owns a buffered
// channel drained by its own goroutine.
type ChannelPubSub struct {
	size   int
	mu     sync.Mutex
	subs   map[string][]*channelSub
	closed bool
	wg     sync.WaitGroup
}

type channelSub struct {
	ch     chan string
	cancel context.CancelFunc
}

func NewChannelPubSub(size int) *ChannelPubSub {
	if size <= 0 {
		size = DefaultChannelSize
	}
	return &ChannelPubSub{size: size, subs: make(map[string][]*channelSub)}
}

func (c *ChannelPubSub) Publish(ctx context.Context, topic string, message string, timeout time.Duration) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	subs := append([]*channelSub(nil), c.subs[topic]...)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for _, sub := range subs {
		select {
		case sub.ch <- message:
		case <-ctx.Done():
			slog.Error("ChannelPubSub: publish timed out", "topic", topic)
			return ctx.Err()
		}
	}
	return nil
}

func (c *ChannelPubSub) Subscribe(ctx context.Context, topic string, callback OnMessageCallback) error {
	ctx, cancel := context.WithCancel(ctx)
	sub := &channelSub{ch: make(chan string, c.size), cancel: cancel}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return ErrClosed
	}
	c.subs[topic] = append(c.subs[topic], sub)
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer c.remove(topic, sub)
		defer utils.RecoverPanic()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-sub.ch:
				if err := callback(ctx, msg); err != nil {
					slog.Error("ChannelPubSub: callback error", "topic", topic, "error", err)
					return
				}
			}
		}
	}()
	return nil
}

func (c *ChannelPubSub) remove(topic string, target *channelSub) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target.cancel()
	subs := c.subs[topic]
	for i, sub := range subs {
		if sub == target {
			c.subs[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(c.subs[topic]) == 0 {
		delete(c.subs, topic)
	}
}

func (c *ChannelPubSub) Unsubscribe(topic string) {
	c.mu.Lock()
	subs := c.subs[topic]
	c.mu.Unlock()
	for _, sub := range subs {
		sub.cancel()
	}
}

// Close cancels every subscription and waits for their goroutines to exit.
func (c *ChannelPubSub) Close() error {
	c.mu.Lock()
	c.closed = true
	var all []*channelSub
	for _, subs := range c.subs {
		all = append(all, subs...)
	}
	c.mu.Unlock()

	for _, sub := range all {
		sub.cancel()
	}
	c.wg.Wait()
	return nil
}
