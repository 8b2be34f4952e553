package roles_test

import (
	"testing"

	"github.com/roackb2/snowdream/internal/pkg/agents/actions"
	"github.com/roackb2/snowdream/internal/pkg/agents/roles"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/stretchr/testify/assert"
)

func msg(sender, profile string, kind schema.ActionKind, content string, to ...string) schema.Message {
	return schema.Message{Content: content, Role: profile, CauseBy: kind, SentFrom: sender, SendTo: schema.Recipients(to...)}
}

var kickoff = msg(schema.RoleUser, schema.RoleUser, schema.KindExternal, "need a login flow")

func TestAnalystDecide(t *testing.T) {
	analyst := roles.Analyst("Lily")
	tests := []struct {
		name string
		last schema.Message
		want actions.Action
	}{
		{"kickoff", kickoff, &actions.Communicate{}},
		{"own end marker", msg("Lily", roles.AnalystProfile, actions.KindCommunicate, "end"), &actions.Analyze{}},
		{"own question", msg("Lily", roles.AnalystProfile, actions.KindCommunicate, "Which fields?"), nil},
		{"human end is not mine", msg(schema.RoleUser, schema.RoleUser, actions.KindCommunicate, "end"), nil},
		{"document written", msg("Lily", roles.AnalystProfile, actions.KindAnalyze, "[]"), nil},
		{"question", msg("Stephen", roles.DesignerProfile, actions.KindConfirmationAsk, "lockout?", "Lily"),
			&actions.ConfirmationAnswer{Asker: "Stephen"}},
		{"questions done", msg("Stephen", roles.DesignerProfile, actions.KindConfirmationAsk, "end", "Lily"),
			&actions.DemandChange{Asker: "Stephen"}},
		{"unrelated", msg("Stephen", roles.DesignerProfile, actions.KindUIDesign, "[]"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyst.Decide([]schema.Message{kickoff, tt.last})
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Nil(t, analyst.Decide(nil))
}

func TestDesignerDecide(t *testing.T) {
	designer := roles.Designer("Stephen", "")
	assert.NotEmpty(t, designer.Identity.Focus)

	tests := []struct {
		name string
		last schema.Message
		want actions.Action
	}{
		{"document", msg("Lily", roles.AnalystProfile, actions.KindAnalyze, "[]"), &actions.ConfirmationAsk{Peer: "Lily"}},
		{"answer", msg("Lily", roles.AnalystProfile, actions.KindConfirmationAnswer, "five", "Stephen"), &actions.ConfirmationAsk{Peer: "Lily"}},
		{"change", msg("Lily", roles.AnalystProfile, actions.KindDemandChange, "{}", "Stephen"), &actions.UIDesign{}},
		{"kickoff", kickoff, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := designer.Decide([]schema.Message{tt.last})
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatchSet(t *testing.T) {
	analyst := roles.Analyst("Lily")

	fresh := analyst.WatchSet(schema.EmptyCheckpoint())
	assert.True(t, fresh.Has(schema.KindExternal))
	assert.True(t, fresh.Has(actions.KindConfirmationAsk))

	started := analyst.WatchSet(schema.Checkpoint{Role: roles.DesignerProfile, Name: "Stephen", ActionName: actions.KindUIDesign})
	assert.False(t, started.Has(schema.KindExternal))
	assert.Equal(t, []schema.ActionKind{actions.KindConfirmationAsk}, started.Kinds())
}

func TestResumeGuard(t *testing.T) {
	g := roles.NewResumeGuard()
	assert.False(t, g.Held())
	assert.True(t, g.Claim("Lily"))
	assert.True(t, g.Claim("Lily"))
	assert.False(t, g.Claim("Stephen"))
	assert.Equal(t, "Lily", g.Holder())
	assert.True(t, g.BlockedFor("Stephen"))
	assert.False(t, g.BlockedFor("Lily"))

	g.Release("Stephen")
	assert.Equal(t, "Lily", g.Holder(), "only the holder releases")
	g.Release("Lily")
	assert.False(t, g.BlockedFor("Stephen"))
}
