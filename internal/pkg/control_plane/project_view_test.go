package control_plane_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roackb2/snowdream/internal/pkg/agents/roles"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/agents/storage"
	"github.com/roackb2/snowdream/internal/pkg/control_plane"
	"github.com/roackb2/snowdream/internal/pkg/humaninput"
	"github.com/roackb2/snowdream/internal/pkg/pubsub"
	"github.com/roackb2/snowdream/internal/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectViewReadsFinishedRun(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	team, err := control_plane.NewTeam(ctx, control_plane.TeamConfig{ProjectPath: dir}, []roles.Persona{roles.Analyst("Lily")}, control_plane.TeamDeps{
		Store:     storage.NewFileCheckpointStore(dir),
		Generator: &teamGenerator{},
		Prompter:  humaninput.NewScriptedPrompter("no extra fields"),
		Renderer:  render.NewFileRenderer(dir, nil),
		Now:       fixedNow,
	})
	require.NoError(t, err)
	_, err = team.Run(ctx, idea)
	require.NoError(t, err)

	view := control_plane.NewProjectView(dir, storage.NewFileCheckpointStore(dir), nil)
	cp, err := view.Checkpoint(ctx)
	require.NoError(t, err)
	assert.True(t, cp.BelongsTo(roles.AnalystProfile, "Lily"))

	mem, err := view.Memory("Lily")
	require.NoError(t, err)
	assert.Equal(t, team.Role("Lily").Memory(), mem)

	_, err = view.Memory("Stephen")
	assert.ErrorIs(t, err, control_plane.ErrUnknownRole)
}

func TestProjectViewCheckpointIsReadOnly(t *testing.T) {
	dir := t.TempDir()
	view := control_plane.NewProjectView(dir, storage.NewFileCheckpointStore(dir), nil)

	cp, err := view.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.True(t, cp.IsEmpty())
	assert.NoFileExists(t, filepath.Join(dir, storage.StateFileName))
}

func TestProjectViewFollowsNotifications(t *testing.T) {
	ps := pubsub.NewChannelPubSub(0)
	defer ps.Close()
	view := control_plane.NewProjectView(t.TempDir(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- view.Follow(ctx, ps, "") }()

	at := fixedNow()
	encode := func(e pubsub.MessageEvent) string {
		raw, err := e.Encode()
		require.NoError(t, err)
		return raw
	}
	kickoff := encode(pubsub.MessageEvent{Role: schema.RoleUser, Message: schema.Message{Content: idea}, At: at})
	asked := encode(pubsub.MessageEvent{Role: "Lily", Message: schema.Message{Content: question, Role: roles.AnalystProfile, CauseBy: "Communicate", SentFrom: "Lily"}, At: at})

	// Publishing before Follow subscribes reaches nobody, so keep sending.
	require.Eventually(t, func() bool {
		_ = ps.Publish(ctx, pubsub.DefaultTopic, kickoff, time.Second)
		_ = ps.Publish(ctx, pubsub.DefaultTopic, asked, time.Second)
		return len(view.Trackings()) == 1
	}, time.Second, 5*time.Millisecond)
	tracking := view.Trackings()[0]
	assert.Equal(t, "Lily", tracking.Name)
	assert.Equal(t, roles.AnalystProfile, tracking.Profile)
	assert.Equal(t, schema.ActionKind("Communicate"), tracking.Action)

	cancel()
	assert.NoError(t, <-done)
}
