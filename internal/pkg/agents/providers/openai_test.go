package providers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "what fields does the login form need?"}}
  ]
}`

func TestOpenAIGenerator_Generate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	}))
	defer srv.Close()

	client := openai.NewClient(
		option.WithAPIKey("test"),
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0),
	)
	gen := providers.NewOpenAIGenerator(client, "gpt-4o-mini")

	out, err := gen.Generate(context.Background(), "you are an analyst", []providers.ChatMessage{
		{Role: providers.ChatRoleUser, Content: "need a login flow"},
		{Role: providers.ChatRoleAssistant, Content: "ok"},
		{Role: "tool", Content: "dropped"},
	})
	require.NoError(t, err)
	assert.Equal(t, "what fields does the login form need?", out)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 3)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
}

func TestOpenAIGenerator_DefaultModel(t *testing.T) {
	gen := providers.NewOpenAIGenerator(nil, "")
	assert.Equal(t, string(openai.ChatModelGPT4o), gen.Model)
}

func TestOpenAIGenerator_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := openai.NewClient(option.WithAPIKey("test"), option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err := providers.NewOpenAIGenerator(client, "gpt-4o").Generate(context.Background(), "", nil)
	assert.Error(t, err)
}
