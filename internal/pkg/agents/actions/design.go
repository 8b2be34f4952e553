package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/render"
)

// UIDesign drafts markup pages from the confirmed requirement change and
// returns the JSON list of written files.
type UIDesign struct{}

func (*UIDesign) Kind() schema.ActionKind { return KindUIDesign }

func (a *UIDesign) Run(ctx context.Context, rc *RunContext) (string, error) {
	doc, err := latestDocument(rc.Memory, rc.Identity.Name, KindDemandChange)
	if err != nil {
		return "", err
	}
	focus := rc.Identity.Focus
	if focus == "" {
		focus = rc.Identity.Profile
	}
	system := fmt.Sprintf(uiDesignSystem, rc.Identity.SystemPrompt(), doc)
	history := []providers.ChatMessage{{Role: providers.ChatRoleUser, Content: fmt.Sprintf(uiDesignPrompt, focus)}}

	answer, err := rc.generate(ctx, system, history)
	if err != nil {
		return "", err
	}
	pages := render.ExtractFences(answer, "html")
	if len(pages) == 0 {
		return "", schema.External("generate", errors.New("no html pages in design"))
	}
	files, err := rc.Renderer.WritePages(ctx, pages)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(files)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
