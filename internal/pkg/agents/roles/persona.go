// Package roles runs the per-role loop: decide the next action from the
// newest message, execute it under the resumption protocol, record the
// result and checkpoint.
package roles

import (
	"github.com/roackb2/snowdream/internal/pkg/agents/actions"
	"github.com/roackb2/snowdream/internal/pkg/agents/router"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

// Rule is one row of a role's transition table. A matching rule whose Next
// returns nil means the role has nothing to do.
type Rule struct {
	Name  string
	Match func(self actions.Identity, msg schema.Message) bool
	Next  func(msg schema.Message) actions.Action
}

// Persona is a role variant: who it is, what it may run, what wakes it and
// how it decides.
type Persona struct {
	Identity actions.Identity
	Actions  []schema.ActionKind
	Watch    []schema.ActionKind
	// WatchFresh is added to Watch when no checkpoint exists yet.
	WatchFresh []schema.ActionKind
	Rules      []Rule
}

// WatchSet returns the subscriptions for a role starting against cp.
func (p Persona) WatchSet(cp schema.Checkpoint) router.WatchSet {
	ws := router.NewWatchSet(p.Watch...)
	if cp.IsEmpty() {
		for _, kind := range p.WatchFresh {
			ws[kind] = struct{}{}
		}
	}
	return ws
}

// Decide looks only at the newest message; the first matching rule wins.
func (p Persona) Decide(recent []schema.Message) actions.Action {
	if len(recent) == 0 {
		return nil
	}
	last := recent[len(recent)-1]
	for _, rule := range p.Rules {
		if rule.Match(p.Identity, last) {
			return rule.Next(last)
		}
	}
	return nil
}

func causedBy(kind schema.ActionKind) func(actions.Identity, schema.Message) bool {
	return func(_ actions.Identity, msg schema.Message) bool { return msg.CauseBy == kind }
}

func nothing(schema.Message) actions.Action { return nil }

const (
	AnalystProfile  = "demand analyst"
	DesignerProfile = "ui designer"
)

// Analyst clarifies the kickoff request with the human, writes the
// requirement document and answers colleagues' questions about it.
func Analyst(name string) Persona {
	return Persona{
		Identity: actions.Identity{
			Name:    name,
			Profile: AnalystProfile,
			Goal:    "help the user analyze the requirement and fill in the missing details",
		},
		Actions: []schema.ActionKind{
			actions.KindCommunicate,
			actions.KindAnalyze,
			actions.KindConfirmationAnswer,
			actions.KindDemandChange,
		},
		Watch:      []schema.ActionKind{actions.KindConfirmationAsk},
		WatchFresh: []schema.ActionKind{schema.KindExternal},
		Rules: []Rule{
			{
				Name:  "kickoff",
				Match: causedBy(schema.KindExternal),
				Next:  func(schema.Message) actions.Action { return &actions.Communicate{} },
			},
			{
				Name: "exchange closed",
				Match: func(self actions.Identity, msg schema.Message) bool {
					return msg.SentFrom == self.Name && msg.CauseBy == actions.KindCommunicate && msg.IsEnd()
				},
				Next: func(schema.Message) actions.Action { return &actions.Analyze{} },
			},
			{
				Name: "document written",
				Match: func(self actions.Identity, msg schema.Message) bool {
					return msg.Role == self.Profile && msg.CauseBy == actions.KindAnalyze
				},
				Next: nothing,
			},
			{
				Name: "question",
				Match: func(_ actions.Identity, msg schema.Message) bool {
					return msg.CauseBy == actions.KindConfirmationAsk && !msg.IsEnd()
				},
				Next: func(msg schema.Message) actions.Action { return &actions.ConfirmationAnswer{Asker: msg.SentFrom} },
			},
			{
				Name: "questions done",
				Match: func(_ actions.Identity, msg schema.Message) bool {
					return msg.CauseBy == actions.KindConfirmationAsk && msg.IsEnd()
				},
				Next: func(msg schema.Message) actions.Action { return &actions.DemandChange{Asker: msg.SentFrom} },
			},
		},
	}
}

// Designer reviews the requirement document from its focus, questions the
// analyst and drafts UI pages once the change is settled.
func Designer(name, focus string) Persona {
	if focus == "" {
		focus = "user interface and interaction design"
	}
	ask := func(msg schema.Message) actions.Action { return &actions.ConfirmationAsk{Peer: msg.SentFrom} }
	return Persona{
		Identity: actions.Identity{
			Name:    name,
			Profile: DesignerProfile,
			Goal:    "provide a reasonable UI design for the requirements colleagues hand over",
			Focus:   focus,
		},
		Actions: []schema.ActionKind{actions.KindConfirmationAsk, actions.KindUIDesign},
		Watch:   []schema.ActionKind{actions.KindAnalyze, actions.KindConfirmationAnswer, actions.KindDemandChange},
		Rules: []Rule{
			{Name: "document received", Match: causedBy(actions.KindAnalyze), Next: ask},
			{Name: "answer received", Match: causedBy(actions.KindConfirmationAnswer), Next: ask},
			{
				Name:  "change settled",
				Match: causedBy(actions.KindDemandChange),
				Next:  func(schema.Message) actions.Action { return &actions.UIDesign{} },
			},
		},
	}
}
