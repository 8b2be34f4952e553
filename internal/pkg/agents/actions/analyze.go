package actions

import (
	"context"
	"fmt"

	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/render"
)

// Analyze turns the clarified conversation into the requirement document.
// The result is the JSON requirement list.
type Analyze struct{}

func (*Analyze) Kind() schema.ActionKind { return KindAnalyze }

func (a *Analyze) Run(ctx context.Context, rc *RunContext) (string, error) {
	history := dialogue(rc.Memory.All(), true)
	if len(history) == 0 {
		return "", schema.MissingHistory(rc.Identity.Name, KindCommunicate)
	}
	history = append(history, providers.ChatMessage{Role: providers.ChatRoleUser, Content: analyzePrompt})

	answer, err := rc.generate(ctx, rc.Identity.SystemPrompt(), history)
	if err != nil {
		return "", err
	}
	raw, reqs, err := parseRequirementAnswer(answer)
	if err != nil {
		return "", err
	}
	flow, _ := render.ExtractFence(answer, "mermaid")
	if _, err := rc.Renderer.WriteDocument(ctx, render.AnalysisDocument(flow, reqs)); err != nil {
		return "", err
	}
	return raw, nil
}

// parseRequirementAnswer pulls the json block out of a model answer.
func parseRequirementAnswer(answer string) (string, []render.Requirement, error) {
	raw, err := render.ExtractFence(answer, "json")
	if err != nil {
		return "", nil, schema.External("generate", fmt.Errorf("requirement list: %w", err))
	}
	reqs, err := render.ParseRequirements(raw)
	if err != nil {
		return "", nil, schema.External("generate", err)
	}
	return raw, reqs, nil
}
