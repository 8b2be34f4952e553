// Package providers adapts language model backends to the generation call
// actions consume.
package providers

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces text from system instructions and a message history.
// Calls may take arbitrary latency.
type Generator interface {
	Generate(ctx context.Context, system string, history []ChatMessage) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, system string, history []ChatMessage) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, system string, history []ChatMessage) (string, error) {
	return f(ctx, system, history)
}
