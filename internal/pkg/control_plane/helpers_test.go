package control_plane_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

const (
	idea           = "need a login flow"
	question       = "Do you need any fields besides email and password?"
	requirements   = `[{"priority": 1, "title": "Login", "description": "Email and password."}]`
	designQuestion = "What happens after five failed logins?"
	designAnswer   = "The account locks for ten minutes."
	changeSummary  = "Added a lockout after five failed logins."
)

var errCrash = errors.New("process stopped")

// teamGenerator answers like a cooperative model, keyed on what each
// action asks for, so reruns produce identical logs. crashOn makes the
// first call whose system prompt contains the substring fail.
type teamGenerator struct {
	mu      sync.Mutex
	crashOn string
	calls   int
}

func (g *teamGenerator) Generate(_ context.Context, system string, history []providers.ChatMessage) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.crashOn != "" && strings.Contains(system, g.crashOn) {
		g.crashOn = ""
		return "", errCrash
	}
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	switch {
	case strings.Contains(system, "ask the user about any requirement details"):
		for _, m := range history {
			if m.Role == providers.ChatRoleAssistant {
				return schema.EndMarker, nil
			}
		}
		return question, nil
	case strings.Contains(last, "Based on our conversation"):
		return "```mermaid\nflowchart LR\n  A[Login] --> B[Home]\n```\n\n```json\n" + requirements + "\n```", nil
	case strings.Contains(system, "Find open questions"):
		if len(history) > 1 {
			return schema.EndMarker, nil
		}
		return designQuestion, nil
	case strings.Contains(system, "A colleague has questions"):
		return designAnswer, nil
	case strings.Contains(system, "you summarized before"):
		return "```demand-change\n" + changeSummary + "\n```\n\n```json\n" + requirements + "\n```", nil
	case strings.Contains(system, "confirmed requirement change"):
		return "```html\n<main>login</main>\n```\n```html\n<main>locked</main>\n```", nil
	}
	return "", errors.New("unexpected prompt")
}

// crashingPrompter fails its first prompt, like a human closing the
// terminal while the question is on screen.
type crashingPrompter struct {
	asked int
}

func (p *crashingPrompter) Prompt(context.Context, string, string) (string, error) {
	p.asked++
	return "", errCrash
}
