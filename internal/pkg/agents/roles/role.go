package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/roackb2/snowdream/internal/pkg/agents/actions"
	"github.com/roackb2/snowdream/internal/pkg/agents/memory"
	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/router"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/agents/storage"
	"github.com/roackb2/snowdream/internal/pkg/humaninput"
	"github.com/roackb2/snowdream/internal/pkg/render"
)

const (
	PhaseIdle      = "idle"
	PhaseDeciding  = "deciding"
	PhaseExecuting = "executing"
	PhaseRecording = "recording"
)

const (
	evDecide  = "decide"
	evExecute = "execute"
	evRecord  = "record"
	evSettle  = "settle"
	evAbort   = "abort"
)

type TurnResult string

const (
	TurnIdle  TurnResult = "idle"
	TurnYield TurnResult = "yield"
	TurnActed TurnResult = "acted"
)

// TurnReport says what a turn did. Message is the recorded result, set
// also when a finished result was replayed so it can be delivered again.
type TurnReport struct {
	Result  TurnResult
	Action  schema.ActionKind
	Message *schema.Message
}

// Deps are the collaborators shared by every role of a team.
type Deps struct {
	ProjectPath string
	Store       storage.CheckpointStore
	Guard       *ResumeGuard
	Registry    *actions.Registry
	Generator   providers.Generator
	Prompter    humaninput.Prompter
	Renderer    render.Renderer
	Now         func() time.Time
	// OnAppend sees every message the role writes to its own log.
	OnAppend func(role string, msg schema.Message)
	// OnPhase sees every loop phase change.
	OnPhase func(role, phase string, action schema.ActionKind)
}

// Role is one running team member.
type Role struct {
	persona  Persona
	deps     Deps
	registry *actions.Registry
	log      *memory.Log
	machine  *fsm.FSM

	mu           sync.Mutex
	watch        router.WatchSet
	baseWatch    router.WatchSet
	hasNews      bool
	needsRestore bool
	isRestoring  bool
	redelivered  bool
	current      schema.ActionKind
}

var _ router.Subscriber = (*Role)(nil)

// New loads the role's memory and decides, from the shared checkpoint,
// whether this role is the one that must resume. A corrupt log or
// checkpoint is fatal.
func New(ctx context.Context, persona Persona, deps Deps) (*Role, error) {
	id := persona.Identity
	log, err := memory.Open(deps.ProjectPath, id.Name, id.Profile)
	if err != nil {
		return nil, err
	}
	cp, err := deps.Store.Load(ctx)
	if err != nil {
		slog.Error("Role: failed to load checkpoint", "role", id.Name, "error", err)
		return nil, err
	}
	registry := deps.Registry
	if registry == nil {
		registry = actions.DefaultRegistry()
	}
	if deps.Guard == nil {
		deps.Guard = NewResumeGuard()
	}

	r := &Role{
		persona:   persona,
		deps:      deps,
		registry:  registry.Subset(persona.Actions...),
		log:       log,
		baseWatch: persona.WatchSet(cp),
	}
	r.watch = router.NewWatchSet(r.baseWatch.Kinds()...)
	r.machine = r.newMachine()

	if log.Len() > 0 && cp.BelongsTo(id.Profile, id.Name) && deps.Guard.Claim(id.Name) {
		r.needsRestore = true
		// A fresh kickoff must not pre-empt the resumption.
		r.watch[schema.KindExternal] = struct{}{}
		slog.Info("Role: will resume checkpointed action", "role", id.Name, "action", cp.ActionName, "finished", cp.Finished)
	}
	return r, nil
}

func (r *Role) newMachine() *fsm.FSM {
	return fsm.NewFSM(
		PhaseIdle,
		fsm.Events{
			{Name: evDecide, Src: []string{PhaseIdle}, Dst: PhaseDeciding},
			{Name: evExecute, Src: []string{PhaseDeciding}, Dst: PhaseExecuting},
			{Name: evRecord, Src: []string{PhaseExecuting}, Dst: PhaseRecording},
			{Name: evSettle, Src: []string{PhaseDeciding, PhaseRecording}, Dst: PhaseIdle},
			{Name: evAbort, Src: []string{PhaseDeciding, PhaseExecuting, PhaseRecording}, Dst: PhaseIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				slog.Debug("Role: phase", "role", r.Name(), "from", e.Src, "to", e.Dst)
				if r.deps.OnPhase != nil {
					r.deps.OnPhase(r.Name(), e.Dst, r.currentAction())
				}
			},
		},
	)
}

func (r *Role) Name() string { return r.persona.Identity.Name }
func (r *Role) Profile() string { return r.persona.Identity.Profile }
func (r *Role) Identity() actions.Identity { return r.persona.Identity }
func (r *Role) Phase() string { return r.machine.Current() }

func (r *Role) Watches(kind schema.ActionKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.watch.Has(kind)
}

func (r *Role) NeedsRestore() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.needsRestore
}

func (r *Role) IsRestoring() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRestoring
}

// HasNews reports whether a routed message is waiting for a decision.
func (r *Role) HasNews() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasNews || r.needsRestore
}

func (r *Role) Memory() []schema.Message {
	return r.log.All()
}

func (r *Role) currentAction() schema.ActionKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Observe records a routed message in the role's log. A message equal to
// the newest entry is a re-delivery after restart and is not logged twice.
func (r *Role) Observe(msg schema.Message) error {
	if last, ok := r.log.Last(); ok && last.Equal(msg) {
		slog.Info("Role: message already in memory", "role", r.Name(), "cause_by", msg.CauseBy)
		r.mu.Lock()
		r.hasNews = true
		r.mu.Unlock()
		return nil
	}
	if err := r.log.Append(msg); err != nil {
		slog.Error("Role: failed to observe message", "role", r.Name(), "error", err)
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hasNews = true
	if r.needsRestore && msg.CauseBy == schema.KindExternal {
		r.redelivered = true
	}
	return nil
}

// Turn runs one think, act, record, checkpoint cycle. An error leaves the
// unfinished checkpoint in place so the next start resumes this action.
func (r *Role) Turn(ctx context.Context) (TurnReport, error) {
	if err := r.fire(ctx, evDecide); err != nil {
		return TurnReport{}, err
	}
	action, state, result, err := r.decide(ctx)
	if err != nil {
		r.abort(ctx)
		return TurnReport{}, err
	}
	if action == nil {
		if err := r.fire(ctx, evSettle); err != nil {
			return TurnReport{}, err
		}
		return TurnReport{Result: result}, nil
	}

	kind := action.Kind()
	r.setCurrent(kind)
	defer r.setCurrent("")

	if err := r.fire(ctx, evExecute); err != nil {
		return TurnReport{}, err
	}
	// A finished replay keeps the finished record: rewriting it as
	// unfinished would claim the logged result does not exist yet.
	if !state.IsReplay() {
		if err := r.checkpoint(ctx, action, false); err != nil {
			r.abort(ctx)
			return TurnReport{}, err
		}
	}

	slog.Info("Role: executing", "role", r.Name(), "action", kind, "phase", state.Phase())
	outcome, err := actions.Execute(ctx, action, state, r.runContext())
	if err != nil {
		slog.Error("Role: action failed", "role", r.Name(), "action", kind, "error", err)
		r.abort(ctx)
		return TurnReport{}, err
	}

	if err := r.fire(ctx, evRecord); err != nil {
		return TurnReport{}, err
	}
	msg := schema.Message{
		Content:  outcome.Content,
		Role:     r.Profile(),
		CauseBy:  kind,
		SentFrom: r.Name(),
		SendTo:   actions.Recipients(action),
	}
	if !outcome.Replayed {
		if err := r.record(msg); err != nil {
			r.abort(ctx)
			return TurnReport{}, err
		}
	}
	if err := r.checkpoint(ctx, action, true); err != nil {
		r.abort(ctx)
		return TurnReport{}, err
	}
	r.finishRestore()
	// The role decides its next step from its own result.
	r.mu.Lock()
	r.hasNews = true
	r.mu.Unlock()

	if err := r.fire(ctx, evSettle); err != nil {
		return TurnReport{}, err
	}
	return TurnReport{Result: TurnActed, Action: kind, Message: &msg}, nil
}

func (r *Role) decide(ctx context.Context) (actions.Action, actions.ResumeState, TurnResult, error) {
	if r.NeedsRestore() {
		action, state, err := r.restore(ctx)
		if err != nil {
			return nil, actions.ResumeState{}, "", err
		}
		if action != nil {
			return action, state, TurnActed, nil
		}
	}

	if r.deps.Guard.BlockedFor(r.Name()) {
		slog.Debug("Role: yielding to resuming role", "role", r.Name(), "holder", r.deps.Guard.Holder())
		return nil, actions.ResumeState{}, TurnYield, nil
	}

	r.mu.Lock()
	news := r.hasNews
	r.hasNews = false
	r.mu.Unlock()
	if !news {
		return nil, actions.ResumeState{}, TurnIdle, nil
	}

	action := r.persona.Decide(r.log.Recent(1))
	if action == nil {
		return nil, actions.ResumeState{}, TurnIdle, nil
	}
	return action, actions.Fresh(), TurnActed, nil
}

// restore instantiates the checkpointed action. A checkpoint this role
// cannot act on gives up the privilege and falls back to normal decisions.
func (r *Role) restore(ctx context.Context) (actions.Action, actions.ResumeState, error) {
	cp, err := r.deps.Store.Load(ctx)
	if err != nil {
		slog.Error("Role: failed to load checkpoint", "role", r.Name(), "error", err)
		return nil, actions.ResumeState{}, err
	}
	if !cp.BelongsTo(r.Profile(), r.Name()) {
		slog.Warn("Role: checkpoint no longer names this role", "role", r.Name(), "checkpoint_role", cp.Name)
		r.finishRestore()
		return nil, actions.ResumeState{}, nil
	}
	action, err := r.registry.Decode(r.Name(), cp.ActionName, cp.Action)
	var unknown *schema.UnknownActionKindError
	if errors.As(err, &unknown) {
		slog.Warn("Role: cannot resume checkpointed action", "role", r.Name(), "error", err)
		r.finishRestore()
		return nil, actions.ResumeState{}, nil
	}
	if err != nil {
		slog.Error("Role: checkpointed action snapshot is corrupt", "role", r.Name(), "action", cp.ActionName, "error", err)
		return nil, actions.ResumeState{}, &schema.CorruptStateError{Path: storage.Location(r.deps.Store), Err: err}
	}

	r.mu.Lock()
	r.isRestoring = true
	redelivered := r.redelivered
	r.redelivered = false
	r.mu.Unlock()

	if redelivered {
		if last, ok := r.log.Last(); ok && last.CauseBy == schema.KindExternal {
			if err := r.log.DropLast(); err != nil {
				return nil, actions.ResumeState{}, err
			}
		}
	}
	return action, actions.Restore(cp.Finished), nil
}

// finishRestore clears the local flags, hands back the privilege and drops
// the temporary external subscription.
func (r *Role) finishRestore() {
	r.mu.Lock()
	wasRestoring := r.needsRestore || r.isRestoring
	r.needsRestore = false
	r.isRestoring = false
	r.redelivered = false
	r.watch = router.NewWatchSet(r.baseWatch.Kinds()...)
	r.mu.Unlock()

	if wasRestoring {
		r.deps.Guard.Release(r.Name())
		slog.Info("Role: resumption complete", "role", r.Name())
	}
}

func (r *Role) checkpoint(ctx context.Context, action actions.Action, finished bool) error {
	snapshot, err := actions.Snapshot(action)
	if err != nil {
		return err
	}
	err = r.deps.Store.Save(ctx, schema.Checkpoint{
		Role:       r.Profile(),
		Name:       r.Name(),
		ActionName: action.Kind(),
		Action:     snapshot,
		Finished:   finished,
	})
	if err != nil {
		slog.Error("Role: failed to save checkpoint", "role", r.Name(), "action", action.Kind(), "finished", finished, "error", err)
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (r *Role) record(msg schema.Message) error {
	if err := r.log.Append(msg); err != nil {
		slog.Error("Role: failed to record message", "role", r.Name(), "error", err)
		return err
	}
	if r.deps.OnAppend != nil {
		r.deps.OnAppend(r.Name(), msg)
	}
	return nil
}

func (r *Role) runContext() *actions.RunContext {
	return &actions.RunContext{
		Identity:  r.persona.Identity,
		Memory:    &recordingMemory{role: r},
		Generator: r.deps.Generator,
		Prompter:  r.deps.Prompter,
		Renderer:  r.deps.Renderer,
		Now:       r.deps.Now,
	}
}

func (r *Role) setCurrent(kind schema.ActionKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = kind
}

func (r *Role) fire(ctx context.Context, event string) error {
	if err := r.machine.Event(ctx, event); err != nil {
		slog.Error("Role: invalid phase transition", "role", r.Name(), "event", event, "phase", r.machine.Current(), "error", err)
		return err
	}
	return nil
}

func (r *Role) abort(ctx context.Context) {
	if r.machine.Can(evAbort) {
		_ = r.fire(ctx, evAbort)
	}
}

// recordingMemory routes action sub-steps through the role so they reach
// OnAppend like recorded results.
type recordingMemory struct {
	role *Role
}

func (m *recordingMemory) Append(msg schema.Message) error {
	return m.role.record(msg)
}

func (m *recordingMemory) All() []schema.Message {
	return m.role.log.All()
}
