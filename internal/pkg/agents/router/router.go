// Package router decides which roles must react to a newly published message.
package router

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

// WatchSet is the set of action kinds whose output wakes a role.
type WatchSet map[schema.ActionKind]struct{}

func NewWatchSet(kinds ...schema.ActionKind) WatchSet {
	ws := make(WatchSet, len(kinds))
	for _, kind := range kinds {
		ws[kind] = struct{}{}
	}
	return ws
}

func (ws WatchSet) Has(kind schema.ActionKind) bool {
	_, ok := ws[kind]
	return ok
}

// Kinds returns the watched kinds sorted.
func (ws WatchSet) Kinds() []schema.ActionKind {
	out := make([]schema.ActionKind, 0, len(ws))
	for kind := range ws {
		out = append(out, kind)
	}
	slices.Sort(out)
	return out
}

// Subscriber is anything with a name and a watch set.
type Subscriber interface {
	Name() string
	Watches(kind schema.ActionKind) bool
}

// Router keeps subscribers in registration order, which is also the order
// Route reports interested names in.
type Router struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

func New(subscribers ...Subscriber) *Router {
	r := &Router{}
	for _, sub := range subscribers {
		r.Add(sub)
	}
	return r
}

func (r *Router) Add(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, sub)
}

// Route returns the names of the roles interested in msg: the role watches
// msg.CauseBy, and msg is broadcast or addressed to it. The sender never
// receives its own message back; it is already in its log.
func (r *Router) Route(msg schema.Message) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var interested []string
	for _, sub := range r.subscribers {
		name := sub.Name()
		if name == msg.SentFrom {
			continue
		}
		if !sub.Watches(msg.CauseBy) || !msg.IsAddressedTo(name) {
			continue
		}
		interested = append(interested, name)
	}
	slog.Debug("Router: routed message", "cause_by", msg.CauseBy, "sent_from", msg.SentFrom, "send_to", msg.SendTo, "interested", interested)
	return interested
}
