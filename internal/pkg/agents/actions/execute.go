package actions

import (
	"context"
	"log/slog"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

// Outcome is what one invocation produced. Replayed results already exist in
// the log and must not be appended again.
type Outcome struct {
	Content  string
	Replayed bool
}

// Execute runs a under the resumption protocol:
//   - replay returns the content of the role's last message of that kind
//     without side effects;
//   - resume first checks whether the result was already logged (the
//     process stopped between recording and checkpointing), then hands
//     control to Resume for resumable actions or reruns plain ones;
//   - fresh runs the full body.
func Execute(ctx context.Context, a Action, state ResumeState, rc *RunContext) (Outcome, error) {
	kind := a.Kind()
	switch state.Phase() {
	case PhaseReplay:
		content, err := Replay(rc.Memory, rc.Identity.Name, kind)
		if err != nil {
			slog.Error("Action: replay failed", "role", rc.Identity.Name, "action", kind, "error", err)
			return Outcome{}, err
		}
		slog.Info("Action: replayed finished result", "role", rc.Identity.Name, "action", kind)
		return Outcome{Content: content, Replayed: true}, nil
	case PhaseResume:
		if last, ok := lastMessage(rc.Memory); ok && isOwnResult(a, last, rc.Identity.Name) {
			slog.Info("Action: result already logged, replaying", "role", rc.Identity.Name, "action", kind)
			return Outcome{Content: last.Content, Replayed: true}, nil
		}
		if r, ok := a.(Resumable); ok {
			slog.Info("Action: resuming", "role", rc.Identity.Name, "action", kind)
			content, err := r.Resume(ctx, rc)
			return Outcome{Content: content}, err
		}
		slog.Info("Action: rerunning interrupted action", "role", rc.Identity.Name, "action", kind)
	}
	content, err := a.Run(ctx, rc)
	return Outcome{Content: content}, err
}

// Replay returns the content of the newest message role logged for kind.
func Replay(mem Memory, role string, kind schema.ActionKind) (string, error) {
	msg, ok := lastWhere(mem.All(), func(m schema.Message) bool {
		return m.CauseBy == kind && m.SentFrom == role
	})
	if !ok {
		return "", schema.MissingHistory(role, kind)
	}
	return msg.Content, nil
}

func isOwnResult(a Action, msg schema.Message, role string) bool {
	if msg.CauseBy != a.Kind() || msg.SentFrom != role {
		return false
	}
	if m, ok := a.(ResultMatcher); ok {
		return m.IsResult(msg)
	}
	return true
}
