package providers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openai/openai-go"
)

type OpenAIGenerator struct {
	Client *openai.Client
	Model  string
}

var _ Generator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(client *openai.Client, model string) *OpenAIGenerator {
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &OpenAIGenerator{
		Client: client,
		Model:  model,
	}
}

func (p *OpenAIGenerator) Generate(ctx context.Context, system string, history []ChatMessage) (string, error) {
	params := p.assembleChatParams(system, history)
	completion, err := p.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		slog.Error("OpenAIGenerator: chat completion failed", "model", p.Model, "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		slog.Error("OpenAIGenerator: chat completion returned no choices", "model", p.Model)
		return "", errors.New("chat completion returned no choices")
	}
	content := completion.Choices[0].Message.Content
	slog.Debug("OpenAIGenerator: chat completion", "model", p.Model, "length", len(content))
	return content, nil
}

func (p *OpenAIGenerator) assembleChatParams(system string, history []ChatMessage) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, msg := range history {
		if converted := convertFromChatMessage(msg); converted != nil {
			messages = append(messages, converted)
		}
	}
	return openai.ChatCompletionNewParams{
		Messages: openai.F(messages),
		Model:    openai.F(openai.ChatModel(p.Model)),
	}
}

func convertFromChatMessage(msg ChatMessage) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case ChatRoleSystem:
		return openai.SystemMessage(msg.Content)
	case ChatRoleUser:
		return openai.UserMessage(msg.Content)
	case ChatRoleAssistant:
		return openai.AssistantMessage(msg.Content)
	}
	slog.Warn("OpenAIGenerator: dropping message with unknown role", "role", msg.Role)
	return nil
}
