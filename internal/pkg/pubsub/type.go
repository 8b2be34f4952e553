// Package pubsub fans out team events to observers such as the dashboard.
// Implementations can sit on Kafka or on in-process channels.
package pubsub

import (
	"context"
	"time"
)

// OnMessageCallback handles one delivered message. Returning an error ends
// the subscription.
type OnMessageCallback func(ctx context.Context, message string) error

type PubSub interface {
	// Publish sends message to topic, waiting at most timeout.
	Publish(ctx context.Context, topic string, message string, timeout time.Duration) error

	// Subscribe delivers messages published to topic after the call until ctx
	// is canceled or Unsubscribe is called.
	Subscribe(ctx context.Context, topic string, callback OnMessageCallback) error

	// Unsubscribe stops every subscription to topic. Unknown topics are ignored.
	Unsubscribe(topic string)

	// Close stops all subscriptions and releases resources.
	Close() error
}
