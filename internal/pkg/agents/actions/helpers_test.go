package actions_test

import (
	"context"
	"sync"
	"testing"

	"github.com/roackb2/snowdream/internal/pkg/agents/actions"
	"github.com/roackb2/snowdream/internal/pkg/agents/memory"
	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/humaninput"
	"github.com/roackb2/snowdream/internal/pkg/render"
	"github.com/stretchr/testify/require"
)

type generateCall struct {
	System  string
	History []providers.ChatMessage
}

// scriptedGenerator answers from a queue and records every call.
type scriptedGenerator struct {
	mu      sync.Mutex
	answers []string
	calls   []generateCall
	err     error
}

func (g *scriptedGenerator) Generate(_ context.Context, system string, history []providers.ChatMessage) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, generateCall{System: system, History: append([]providers.ChatMessage(nil), history...)})
	if g.err != nil {
		return "", g.err
	}
	if len(g.answers) == 0 {
		return schema.EndMarker, nil
	}
	answer := g.answers[0]
	g.answers = g.answers[1:]
	return answer, nil
}

var analyst = actions.Identity{Name: "Lily", Profile: "demand analyst", Goal: "clarify requirements"}
var designer = actions.Identity{Name: "Stephen", Profile: "ui designer", Goal: "design screens", Focus: "interaction"}

var kickoff = schema.Message{Content: "need a login flow", Role: schema.RoleUser, CauseBy: schema.KindExternal, SentFrom: schema.RoleUser}

func newLog(t *testing.T, id actions.Identity, msgs ...schema.Message) *memory.Log {
	t.Helper()
	log, err := memory.Open(t.TempDir(), id.Name, id.Profile)
	require.NoError(t, err)
	for _, msg := range msgs {
		require.NoError(t, log.Append(msg))
	}
	return log
}

func newRunContext(id actions.Identity, log *memory.Log, gen providers.Generator, prompter humaninput.Prompter, r render.Renderer) *actions.RunContext {
	return &actions.RunContext{
		Identity:  id,
		Memory:    log,
		Generator: gen,
		Prompter:  prompter,
		Renderer:  r,
	}
}

func from(id actions.Identity, kind schema.ActionKind, content string, to ...string) schema.Message {
	return schema.Message{Content: content, Role: id.Profile, CauseBy: kind, SentFrom: id.Name, SendTo: schema.Recipients(to...)}
}

func human(content string) schema.Message {
	return schema.Message{Content: content, Role: schema.RoleUser, CauseBy: actions.KindCommunicate, SentFrom: schema.RoleUser}
}
