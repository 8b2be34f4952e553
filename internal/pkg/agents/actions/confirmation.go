package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/render"
)

// ConfirmationAsk questions Peer about the latest requirement document from
// the role's focus. The model answers end when it has nothing left to ask.
type ConfirmationAsk struct {
	Peer string `json:"peer"`
}

func (*ConfirmationAsk) Kind() schema.ActionKind { return KindConfirmationAsk }

func (a *ConfirmationAsk) Recipients() []string { return []string{a.Peer} }

func (a *ConfirmationAsk) Run(ctx context.Context, rc *RunContext) (string, error) {
	doc, err := latestDocument(rc.Memory, rc.Identity.Name, KindAnalyze)
	if err != nil {
		return "", err
	}
	focus := rc.Identity.Focus
	if focus == "" {
		focus = rc.Identity.Profile
	}
	system := fmt.Sprintf(confirmationAskSystem, rc.Identity.SystemPrompt(), doc, focus)
	history := append([]providers.ChatMessage{{Role: providers.ChatRoleUser, Content: confirmationOpener}},
		thread(rc.Memory.All(), rc.Identity.Name, a.Peer, KindConfirmationAnswer, KindConfirmationAsk)...)

	out, err := rc.generate(ctx, system, history)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ConfirmationAnswer replies to a question from Asker.
type ConfirmationAnswer struct {
	Asker string `json:"asker"`
}

func (*ConfirmationAnswer) Kind() schema.ActionKind { return KindConfirmationAnswer }

func (a *ConfirmationAnswer) Recipients() []string { return []string{a.Asker} }

func (a *ConfirmationAnswer) Run(ctx context.Context, rc *RunContext) (string, error) {
	doc, err := latestDocument(rc.Memory, rc.Identity.Name, KindAnalyze)
	if err != nil {
		return "", err
	}
	history := thread(rc.Memory.All(), rc.Identity.Name, a.Asker, KindConfirmationAsk, KindConfirmationAnswer)
	if len(history) == 0 {
		return "", schema.MissingHistory(rc.Identity.Name, KindConfirmationAsk)
	}
	system := fmt.Sprintf(confirmationAnswerSystem, rc.Identity.SystemPrompt(), doc)
	return rc.generate(ctx, system, history)
}

// DemandChange revises the requirement document once Asker ends its
// questions. The result is a JSON ChangeRecord.
type DemandChange struct {
	Asker string `json:"asker"`
}

type ChangeRecord struct {
	Demands      string       `json:"demands"`
	DemandChange ChangeDetail `json:"demand_change"`
}

type ChangeDetail struct {
	Version string `json:"version"`
	Content string `json:"content"`
	Time    string `json:"time"`
}

func (*DemandChange) Kind() schema.ActionKind { return KindDemandChange }

func (a *DemandChange) Recipients() []string { return []string{a.Asker} }

func (a *DemandChange) Run(ctx context.Context, rc *RunContext) (string, error) {
	doc, err := latestDocument(rc.Memory, rc.Identity.Name, KindAnalyze)
	if err != nil {
		return "", err
	}
	history := thread(rc.Memory.All(), rc.Identity.Name, a.Asker, KindConfirmationAsk, KindConfirmationAnswer)
	for i := range history {
		if history[i].Role == providers.ChatRoleUser && history[i].Content == schema.EndMarker {
			history[i].Content = demandChangePrompt
		}
	}
	system := fmt.Sprintf(demandChangeSystem, rc.Identity.SystemPrompt(), doc)

	answer, err := rc.generate(ctx, system, history)
	if err != nil {
		return "", err
	}
	raw, reqs, err := parseRequirementAnswer(answer)
	if err != nil {
		return "", err
	}
	summary, _ := render.ExtractFence(answer, "demand-change")
	at := rc.now()
	if _, err := rc.Renderer.WriteDocument(ctx, render.ChangeLogDocument(at, summary, reqs)); err != nil {
		return "", err
	}

	record, err := json.Marshal(ChangeRecord{
		Demands: raw,
		DemandChange: ChangeDetail{
			Version: render.DocumentVersion,
			Content: summary,
			Time:    at.Format(render.TimeLayout),
		},
	})
	if err != nil {
		return "", err
	}
	return string(record), nil
}
