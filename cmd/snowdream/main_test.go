package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/roackb2/snowdream/config"
	"github.com/roackb2/snowdream/internal/pkg/agents/actions"
	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysis = "```mermaid\nflowchart LR\n  A --> B\n```\n\n```json\n[{\"priority\": 1, \"title\": \"Login\", \"description\": \"Email and password.\"}]\n```"

// analystOnly asks one question, then writes the requirement list.
func analystOnly(config.Configuration) (providers.Generator, error) {
	return providers.GeneratorFunc(func(_ context.Context, system string, history []providers.ChatMessage) (string, error) {
		if strings.Contains(system, "ask the user") {
			for _, m := range history {
				if m.Role == providers.ChatRoleAssistant {
					return schema.EndMarker, nil
				}
			}
			return "Which fields?", nil
		}
		return analysis, nil
	}), nil
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	a := newApp()
	a.newGenerator = analystOnly
	a.logOutput = io.Discard
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env", "test", "--config-dir", "../../config"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunThenInspect(t *testing.T) {
	project := t.TempDir()
	out, err := execute(t, "email only\n", "run", "--project", project, "--designer", "", "--idea", "need a login flow")
	require.NoError(t, err)
	assert.Contains(t, out, "Which fields?")
	assert.Contains(t, out, "stopped (quiescent)")

	out, err = execute(t, "", "state", "--project", project)
	require.NoError(t, err)
	var state struct {
		Checkpoint schema.Checkpoint `json:"checkpoint"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, actions.KindAnalyze, state.Checkpoint.ActionName)
	assert.True(t, state.Checkpoint.Finished)

	out, err = execute(t, "", "memory", "--project", project, "--role", "Lily")
	require.NoError(t, err)
	var msgs []schema.Message
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	require.Len(t, msgs, 5)
	assert.Equal(t, "email only", msgs[2].Content)
}

func TestRunWithoutIdeaNeedsCheckpoint(t *testing.T) {
	_, err := execute(t, "", "run", "--project", t.TempDir())
	assert.ErrorContains(t, err, "nothing to resume")
}

func TestMemoryRequiresRole(t *testing.T) {
	_, err := execute(t, "", "memory", "--project", t.TempDir())
	assert.ErrorContains(t, err, "role")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
