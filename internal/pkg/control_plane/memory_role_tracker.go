package control_plane

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
)

type MemoryRoleTracker struct {
	trackings map[string]RoleTracking
	mu        sync.RWMutex
}

func NewMemoryRoleTracker() *MemoryRoleTracker {
	return &MemoryRoleTracker{
		trackings: make(map[string]RoleTracking),
	}
}

func (t *MemoryRoleTracker) AddTracking(name string, tracking RoleTracking) {
	slog.Debug("MemoryRoleTracker adding tracking", "role", name)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trackings[name] = tracking
}

func (t *MemoryRoleTracker) GetTracking(name string) (RoleTracking, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tracking, ok := t.trackings[name]
	return tracking, ok
}

func (t *MemoryRoleTracker) UpdateTracking(name string, tracking RoleTracking) {
	slog.Debug("MemoryRoleTracker updating tracking", "role", name, "phase", tracking.Phase)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trackings[name] = tracking
}

func (t *MemoryRoleTracker) RemoveTracking(name string) {
	slog.Debug("MemoryRoleTracker removing tracking", "role", name)
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.trackings, name)
}

// GetAllTrackings returns the trackings ordered by role name.
func (t *MemoryRoleTracker) GetAllTrackings() []RoleTracking {
	t.mu.RLock()
	defer t.mu.RUnlock()
	trackings := make([]RoleTracking, 0, len(t.trackings))
	for _, tracking := range t.trackings {
		trackings = append(trackings, tracking)
	}
	slices.SortFunc(trackings, func(a, b RoleTracking) int { return strings.Compare(a.Name, b.Name) })
	return trackings
}
