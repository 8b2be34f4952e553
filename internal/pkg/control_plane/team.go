// Package control_plane hosts the team: it owns the roles, routes every
// recorded message to the roles that watch it and drives sequential rounds
// of turns until the collaboration goes quiet.
package control_plane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roackb2/snowdream/internal/pkg/agents/actions"
	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/roles"
	"github.com/roackb2/snowdream/internal/pkg/agents/router"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/agents/storage"
	"github.com/roackb2/snowdream/internal/pkg/humaninput"
	"github.com/roackb2/snowdream/internal/pkg/pubsub"
	"github.com/roackb2/snowdream/internal/pkg/render"
	"github.com/roackb2/snowdream/internal/pkg/utils"
)

const (
	DefaultPublishTimeout = 5 * time.Second
	// QuietRounds is how many consecutive rounds without work end a run.
	QuietRounds = 2
)

const (
	StopQuiescent = "quiescent"
	StopMaxRounds = "max_rounds"
	StopCanceled  = "canceled"
)

var (
	ErrDuplicateRole = errors.New("duplicate role name")
	ErrNoRoles       = errors.New("team has no roles")
)

type TeamConfig struct {
	ProjectPath string
	// MaxRounds caps a run; zero means no cap.
	MaxRounds      int
	Topic          string
	PublishTimeout time.Duration
}

// TeamDeps are the collaborators shared by all roles. PubSub and Tracker
// are optional.
type TeamDeps struct {
	Store     storage.CheckpointStore
	Generator providers.Generator
	Prompter  humaninput.Prompter
	Renderer  render.Renderer
	PubSub    pubsub.PubSub
	Tracker   RoleTracker
	Now       func() time.Time
}

type RunSummary struct {
	RunID  string
	Rounds int
	Turns  int
	Reason string
}

type Team struct {
	cfg     TeamConfig
	deps    TeamDeps
	runID   string
	guard   *roles.ResumeGuard
	router  *router.Router
	members []*roles.Role
	byName  map[string]*roles.Role
}

func NewTeam(ctx context.Context, cfg TeamConfig, personas []roles.Persona, deps TeamDeps) (*Team, error) {
	if len(personas) == 0 {
		return nil, ErrNoRoles
	}
	cfg.Topic = utils.GetOrDefault(cfg.Topic, pubsub.DefaultTopic)
	cfg.PublishTimeout = utils.GetOrDefault(cfg.PublishTimeout, DefaultPublishTimeout)
	if deps.Tracker == nil {
		deps.Tracker = NewMemoryRoleTracker()
	}

	t := &Team{
		cfg:    cfg,
		deps:   deps,
		runID:  uuid.NewString(),
		guard:  roles.NewResumeGuard(),
		router: router.New(),
		byName: make(map[string]*roles.Role, len(personas)),
	}
	registry := actions.DefaultRegistry()
	for _, persona := range personas {
		name := persona.Identity.Name
		if err := schema.ValidateRoleName(name); err != nil {
			return nil, err
		}
		if _, ok := t.byName[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRole, name)
		}
		role, err := roles.New(ctx, persona, roles.Deps{
			ProjectPath: cfg.ProjectPath,
			Store:       deps.Store,
			Guard:       t.guard,
			Registry:    registry,
			Generator:   deps.Generator,
			Prompter:    deps.Prompter,
			Renderer:    deps.Renderer,
			Now:         deps.Now,
			OnAppend:    t.notify,
			OnPhase:     t.track,
		})
		if err != nil {
			slog.Error("Team: failed to start role", "role", name, "error", err)
			return nil, fmt.Errorf("start role %s: %w", name, err)
		}
		t.members = append(t.members, role)
		t.byName[name] = role
		t.router.Add(role)
		deps.Tracker.AddTracking(name, RoleTracking{
			Name:         name,
			Profile:      role.Profile(),
			Phase:        role.Phase(),
			NeedsRestore: role.NeedsRestore(),
			UpdatedAt:    t.now(),
		})
	}
	slog.Info("Team: assembled", "run_id", t.runID, "roles", len(t.members), "resumer", t.guard.Holder())
	return t, nil
}

func (t *Team) RunID() string { return t.runID }
func (t *Team) Roles() []*roles.Role { return t.members }
func (t *Team) Tracker() RoleTracker { return t.deps.Tracker }
func (t *Team) Resumer() string { return t.guard.Holder() }
func (t *Team) Role(name string) *roles.Role { return t.byName[name] }

// Kickoff publishes the human request that starts the collaboration.
func (t *Team) Kickoff(ctx context.Context, idea string) error {
	msg := schema.Message{
		Content:  idea,
		Role:     schema.RoleUser,
		CauseBy:  schema.KindExternal,
		SentFrom: schema.RoleUser,
	}
	slog.Info("Team: kickoff", "run_id", t.runID)
	t.notify(schema.RoleUser, msg)
	return t.Deliver(ctx, msg)
}

// Deliver hands msg to every role the router selects.
func (t *Team) Deliver(ctx context.Context, msg schema.Message) error {
	for _, name := range t.router.Route(msg) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.byName[name].Observe(msg); err != nil {
			return fmt.Errorf("deliver to %s: %w", name, err)
		}
	}
	return nil
}

// Run optionally kicks off idea, then gives every role a turn per round in
// registration order. It stops after QuietRounds rounds in which nobody
// acted, when ctx ends or at MaxRounds.
func (t *Team) Run(ctx context.Context, idea string) (RunSummary, error) {
	summary := RunSummary{RunID: t.runID}
	if idea != "" {
		if err := t.Kickoff(ctx, idea); err != nil {
			return summary, err
		}
	}

	quiet := 0
	for t.cfg.MaxRounds == 0 || summary.Rounds < t.cfg.MaxRounds {
		if ctx.Err() != nil {
			summary.Reason = StopCanceled
			return summary, ctx.Err()
		}
		summary.Rounds++
		acted, err := t.round(ctx, &summary)
		if err != nil {
			return summary, err
		}
		if acted {
			quiet = 0
			continue
		}
		quiet++
		if quiet >= QuietRounds {
			summary.Reason = StopQuiescent
			slog.Info("Team: quiescent", "run_id", t.runID, "rounds", summary.Rounds, "turns", summary.Turns)
			return summary, nil
		}
	}
	summary.Reason = StopMaxRounds
	slog.Warn("Team: stopped at round cap", "run_id", t.runID, "rounds", summary.Rounds)
	return summary, nil
}

func (t *Team) round(ctx context.Context, summary *RunSummary) (bool, error) {
	acted := false
	for _, role := range t.members {
		report, err := role.Turn(ctx)
		if err != nil {
			slog.Error("Team: turn failed", "run_id", t.runID, "role", role.Name(), "error", err)
			return acted, fmt.Errorf("role %s: %w", role.Name(), err)
		}
		if report.Result != roles.TurnActed {
			continue
		}
		acted = true
		summary.Turns++
		if report.Message != nil {
			if err := t.Deliver(ctx, *report.Message); err != nil {
				return acted, err
			}
		}
	}
	return acted, nil
}

// Checkpoint reads the shared checkpoint.
func (t *Team) Checkpoint(ctx context.Context) (schema.Checkpoint, error) {
	return t.deps.Store.Load(ctx)
}

func (t *Team) notify(role string, msg schema.Message) {
	if t.deps.PubSub == nil {
		return
	}
	raw, err := pubsub.MessageEvent{RunID: t.runID, Role: role, Message: msg, At: t.now()}.Encode()
	if err != nil {
		slog.Error("Team: failed to encode notification", "error", err)
		return
	}
	if err := t.deps.PubSub.Publish(context.Background(), t.cfg.Topic, raw, t.cfg.PublishTimeout); err != nil {
		slog.Error("Team: failed to publish notification", "role", role, "error", err)
	}
}

func (t *Team) track(name, phase string, action schema.ActionKind) {
	tracking, _ := t.deps.Tracker.GetTracking(name)
	tracking.Name = name
	tracking.Phase = phase
	tracking.Action = action
	if role, ok := t.byName[name]; ok {
		tracking.Profile = role.Profile()
		tracking.NeedsRestore = role.NeedsRestore()
	}
	tracking.UpdatedAt = t.now()
	t.deps.Tracker.UpdateTracking(name, tracking)
}

func (t *Team) now() time.Time {
	if t.deps.Now != nil {
		return t.deps.Now()
	}
	return time.Now()
}
