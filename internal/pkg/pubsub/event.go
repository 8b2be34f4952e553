package pubsub

import (
	"encoding/json"
	"time"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

const DefaultTopic = "snowdream.messages"

// MessageEvent announces that a role wrote a message to its log.
type MessageEvent struct {
	RunID   string         `json:"run_id"`
	Role    string         `json:"role"`
	Message schema.Message `json:"message"`
	At      time.Time      `json:"at"`
}

func (e MessageEvent) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func DecodeMessageEvent(raw string) (MessageEvent, error) {
	var e MessageEvent
	err := json.Unmarshal([]byte(raw), &e)
	return e, err
}
