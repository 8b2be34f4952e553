package actions_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/roackb2/snowdream/internal/pkg/agents/actions"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/humaninput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeStatePhase(t *testing.T) {
	tests := []struct {
		name  string
		state actions.ResumeState
		want  actions.Phase
	}{
		{"zero value", actions.ResumeState{}, actions.PhaseFresh},
		{"fresh", actions.Fresh(), actions.PhaseFresh},
		{"interrupted", actions.Restore(false), actions.PhaseResume},
		{"finished", actions.Restore(true), actions.PhaseReplay},
		{"finished without restore", actions.ResumeState{Finished: true}, actions.PhaseFresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Phase())
			assert.Equal(t, tt.want == actions.PhaseReplay, tt.state.IsReplay())
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := actions.DefaultRegistry()
	assert.Len(t, reg.Kinds(), 6)

	action, err := reg.Decode("Lily", actions.KindConfirmationAnswer, json.RawMessage(`{"asker":"Stephen"}`))
	require.NoError(t, err)
	assert.Equal(t, &actions.ConfirmationAnswer{Asker: "Stephen"}, action)
	assert.Equal(t, []string{"Stephen"}, actions.Recipients(action))

	action, err = reg.Decode("Lily", actions.KindCommunicate, json.RawMessage(`""`))
	require.NoError(t, err)
	assert.Equal(t, actions.KindCommunicate, action.Kind())
	assert.Nil(t, actions.Recipients(action))

	_, err = reg.Decode("Lily", actions.KindAnalyze, json.RawMessage(`{"broken`))
	assert.Error(t, err)

	analystSet := reg.Subset(actions.KindCommunicate, actions.KindAnalyze, "Missing")
	assert.Equal(t, []schema.ActionKind{actions.KindCommunicate, actions.KindAnalyze}, analystSet.Kinds())
	_, err = analystSet.Decode("Lily", actions.KindUIDesign, nil)
	var unknown *schema.UnknownActionKindError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, actions.KindUIDesign, unknown.Kind)
}

func TestSnapshotRoundTrip(t *testing.T) {
	snapshot, err := actions.Snapshot(&actions.ConfirmationAsk{Peer: "Lily"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"peer":"Lily"}`, string(snapshot))

	action, err := actions.DefaultRegistry().Decode("Stephen", actions.KindConfirmationAsk, snapshot)
	require.NoError(t, err)
	assert.Equal(t, &actions.ConfirmationAsk{Peer: "Lily"}, action)
}

func TestExecuteReplayHasNoSideEffects(t *testing.T) {
	log := newLog(t, analyst, kickoff, from(analyst, actions.KindCommunicate, schema.EndMarker),
		from(analyst, actions.KindAnalyze, `[{"title":"Login"}]`))
	gen := &scriptedGenerator{err: errors.New("must not be called")}
	rc := newRunContext(analyst, log, gen, humaninput.NewScriptedPrompter(), nil)

	out, err := actions.Execute(context.Background(), &actions.Analyze{}, actions.Restore(true), rc)
	require.NoError(t, err)
	assert.Equal(t, actions.Outcome{Content: `[{"title":"Login"}]`, Replayed: true}, out)
	assert.Equal(t, 3, log.Len())
	assert.Empty(t, gen.calls)
}

func TestExecuteReplayMissingHistory(t *testing.T) {
	log := newLog(t, analyst, kickoff)
	rc := newRunContext(analyst, log, &scriptedGenerator{}, humaninput.NewScriptedPrompter(), nil)

	_, err := actions.Execute(context.Background(), &actions.Analyze{}, actions.Restore(true), rc)
	assert.ErrorIs(t, err, schema.ErrMissingHistory)
}

func TestExecuteResumeDetectsLoggedResult(t *testing.T) {
	log := newLog(t, designer,
		from(analyst, actions.KindAnalyze, "[]"),
		from(designer, actions.KindConfirmationAsk, "what about errors?", analyst.Name))
	gen := &scriptedGenerator{err: errors.New("must not be called")}
	rc := newRunContext(designer, log, gen, nil, nil)

	out, err := actions.Execute(context.Background(), &actions.ConfirmationAsk{Peer: analyst.Name}, actions.Restore(false), rc)
	require.NoError(t, err)
	assert.True(t, out.Replayed)
	assert.Equal(t, "what about errors?", out.Content)
	assert.Empty(t, gen.calls)
}

func TestExecuteResumeRerunsPlainAction(t *testing.T) {
	log := newLog(t, designer, from(analyst, actions.KindAnalyze, "[]"))
	gen := &scriptedGenerator{answers: []string{"what about errors?"}}
	rc := newRunContext(designer, log, gen, nil, nil)

	out, err := actions.Execute(context.Background(), &actions.ConfirmationAsk{Peer: analyst.Name}, actions.Restore(false), rc)
	require.NoError(t, err)
	assert.Equal(t, actions.Outcome{Content: "what about errors?"}, out)
	assert.Len(t, gen.calls, 1)
}
