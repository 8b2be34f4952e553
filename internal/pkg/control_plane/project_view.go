package control_plane

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roackb2/snowdream/internal/pkg/agents/memory"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/agents/storage"
	"github.com/roackb2/snowdream/internal/pkg/pubsub"
)

var ErrUnknownRole = errors.New("unknown role")

// ProjectView reads a project directory written by a team running in
// another process, and keeps trackings current from its notifications.
type ProjectView struct {
	projectPath string
	store       storage.CheckpointStore
	tracker     RoleTracker
}

func NewProjectView(projectPath string, store storage.CheckpointStore, tracker RoleTracker) *ProjectView {
	if tracker == nil {
		tracker = NewMemoryRoleTracker()
	}
	return &ProjectView{projectPath: projectPath, store: store, tracker: tracker}
}

// Checkpoint reads the slot without initializing it, so a team writing the
// same project is never overwritten.
func (v *ProjectView) Checkpoint(ctx context.Context) (schema.Checkpoint, error) {
	return storage.Peek(ctx, v.store)
}

func (v *ProjectView) Roles() ([]memory.Entry, error) {
	return memory.List(v.projectPath)
}

func (v *ProjectView) Trackings() []RoleTracking {
	return v.tracker.GetAllTrackings()
}

// Memory returns the persisted log of the role called name.
func (v *ProjectView) Memory(name string) ([]schema.Message, error) {
	entries, err := v.Roles()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Name == name {
			return memory.Read(v.projectPath, entry.Name, entry.Profile)
		}
	}
	return nil, ErrUnknownRole
}

// Follow applies notifications from topic to the tracker until ctx ends.
func (v *ProjectView) Follow(ctx context.Context, ps pubsub.PubSub, topic string) error {
	if topic == "" {
		topic = pubsub.DefaultTopic
	}
	err := ps.Subscribe(ctx, topic, func(_ context.Context, raw string) error {
		event, err := pubsub.DecodeMessageEvent(raw)
		if err != nil {
			slog.Error("ProjectView: failed to decode notification", "error", err)
			return nil
		}
		v.Apply(event)
		return nil
	})
	if err != nil {
		slog.Error("ProjectView: failed to subscribe", "topic", topic, "error", err)
		return err
	}
	<-ctx.Done()
	return nil
}

// Apply records that event.Role just wrote a message.
func (v *ProjectView) Apply(event pubsub.MessageEvent) {
	if event.Role == schema.RoleUser {
		return
	}
	tracking, _ := v.tracker.GetTracking(event.Role)
	tracking.Name = event.Role
	tracking.Action = event.Message.CauseBy
	if event.Message.SentFrom == event.Role && event.Message.Role != schema.RoleUser {
		tracking.Profile = event.Message.Role
	}
	tracking.UpdatedAt = event.At
	v.tracker.UpdateTracking(event.Role, tracking)
}
