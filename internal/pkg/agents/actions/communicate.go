package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

// Communicate questions the human until either side says end. Questions and
// answers are logged as they happen; the result is the end marker.
type Communicate struct{}

func (*Communicate) Kind() schema.ActionKind { return KindCommunicate }

// IsResult reports whether msg is the end marker that closes the exchange.
func (*Communicate) IsResult(msg schema.Message) bool {
	return msg.Role != schema.RoleUser && msg.IsEnd()
}

func (a *Communicate) Run(ctx context.Context, rc *RunContext) (string, error) {
	return a.exchange(ctx, rc, "")
}

// Resume re-asks a question that was logged but never answered. If the
// last logged step is an answer the next question is generated.
func (a *Communicate) Resume(ctx context.Context, rc *RunContext) (string, error) {
	last, ok := lastWhere(rc.Memory.All(), func(m schema.Message) bool { return m.CauseBy == KindCommunicate })
	if ok && last.SentFrom == rc.Identity.Name && !last.IsEnd() {
		slog.Info("Communicate: re-asking pending question", "role", rc.Identity.Name)
		return a.exchange(ctx, rc, last.Content)
	}
	return a.exchange(ctx, rc, "")
}

// exchange alternates generate and prompt. A non-empty pending question
// skips straight to prompting.
func (a *Communicate) exchange(ctx context.Context, rc *RunContext, pending string) (string, error) {
	system := fmt.Sprintf(communicateSystem, rc.Identity.SystemPrompt())
	for {
		if pending == "" {
			question, err := rc.generate(ctx, system, dialogue(rc.Memory.All(), false))
			if err != nil {
				return "", err
			}
			question = strings.TrimSpace(question)
			if question == schema.EndMarker {
				return schema.EndMarker, nil
			}
			if err := rc.Memory.Append(rc.own(KindCommunicate, question)); err != nil {
				return "", err
			}
			pending = question
		}

		answer, err := rc.Prompter.Prompt(ctx, rc.Identity.Name, pending)
		if err != nil {
			return "", schema.External("prompt", err)
		}
		answer = strings.TrimSpace(answer)
		if answer == "" || answer == schema.EndMarker {
			return schema.EndMarker, nil
		}
		if err := rc.Memory.Append(schema.Message{
			Content:  answer,
			Role:     schema.RoleUser,
			CauseBy:  KindCommunicate,
			SentFrom: schema.RoleUser,
		}); err != nil {
			return "", err
		}
		pending = ""
	}
}
