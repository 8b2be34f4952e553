package roles

import (
	"log/slog"
	"sync"
)

// ResumeGuard hands the single resuming privilege to at most one role.
// While it is held every other role yields its turns.
type ResumeGuard struct {
	mu     sync.Mutex
	holder string
}

func NewResumeGuard() *ResumeGuard {
	return &ResumeGuard{}
}

// Claim takes the privilege for name. It fails if another role holds it.
func (g *ResumeGuard) Claim(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder != "" && g.holder != name {
		slog.Warn("ResumeGuard: privilege already held", "holder", g.holder, "claimant", name)
		return false
	}
	g.holder = name
	return true
}

func (g *ResumeGuard) Holder() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder
}

func (g *ResumeGuard) Held() bool {
	return g.Holder() != ""
}

// Release drops the privilege if name holds it.
func (g *ResumeGuard) Release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder == name {
		g.holder = ""
	}
}

// BlockedFor reports whether someone other than name holds the privilege.
func (g *ResumeGuard) BlockedFor(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder != "" && g.holder != name
}
