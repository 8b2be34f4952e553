// Package actions holds the units of work roles run and the protocol that
// decides whether an action executes fresh, resumes mid-exchange or replays
// its logged result.
package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/humaninput"
	"github.com/roackb2/snowdream/internal/pkg/render"
)

const (
	KindCommunicate        schema.ActionKind = "Communicate"
	KindAnalyze            schema.ActionKind = "Analyze"
	KindConfirmationAsk    schema.ActionKind = "ConfirmationAsk"
	KindConfirmationAnswer schema.ActionKind = "ConfirmationAnswer"
	KindDemandChange       schema.ActionKind = "DemandChange"
	KindUIDesign           schema.ActionKind = "UIDesign"
)

// Action is a unit of work. Its exported fields form the snapshot stored in
// the checkpoint.
type Action interface {
	Kind() schema.ActionKind
	Run(ctx context.Context, rc *RunContext) (string, error)
}

// Resumable actions carry sub-steps and know how to continue an exchange
// that was interrupted before it finished.
type Resumable interface {
	Action
	Resume(ctx context.Context, rc *RunContext) (string, error)
}

// Directed actions address their result to specific roles instead of
// broadcasting it.
type Directed interface {
	Recipients() []string
}

// ResultMatcher lets an action tell its final result apart from the
// sub-step messages it logs under the same kind.
type ResultMatcher interface {
	IsResult(msg schema.Message) bool
}

// Recipients returns where the result of a should be delivered; nil means broadcast.
func Recipients(a Action) []string {
	if d, ok := a.(Directed); ok {
		return schema.Recipients(d.Recipients()...)
	}
	return nil
}

// Memory is the slice of the role log actions read and write sub-steps to.
type Memory interface {
	Append(msg schema.Message) error
	All() []schema.Message
}

type Identity struct {
	Name    string
	Profile string
	Goal    string
	Focus   string
}

func (id Identity) SystemPrompt() string {
	prompt := fmt.Sprintf("You are %s, a %s. Your goal is: %s.", id.Name, id.Profile, id.Goal)
	if id.Focus != "" {
		prompt += fmt.Sprintf(" You focus on %s.", id.Focus)
	}
	return prompt
}

// RunContext is everything an action may touch while it runs.
type RunContext struct {
	Identity  Identity
	Memory    Memory
	Generator providers.Generator
	Prompter  humaninput.Prompter
	Renderer  render.Renderer
	Now       func() time.Time
}

func (rc *RunContext) now() time.Time {
	if rc.Now == nil {
		return time.Now()
	}
	return rc.Now()
}

func (rc *RunContext) generate(ctx context.Context, system string, history []providers.ChatMessage) (string, error) {
	out, err := rc.Generator.Generate(ctx, system, history)
	if err != nil {
		return "", schema.External("generate", err)
	}
	return out, nil
}

// own stamps msg as produced by this role with the given kind.
func (rc *RunContext) own(kind schema.ActionKind, content string) schema.Message {
	return schema.Message{
		Content:  content,
		Role:     rc.Identity.Profile,
		CauseBy:  kind,
		SentFrom: rc.Identity.Name,
	}
}
