package control_plane

import (
	"time"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

type RoleTracking struct {
	Name         string            `json:"name"`
	Profile      string            `json:"profile"`
	Phase        string            `json:"phase"`
	Action       schema.ActionKind `json:"action,omitempty"`
	NeedsRestore bool              `json:"needs_restore"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Tracker should guarantee thread safety
type RoleTracker interface {
	AddTracking(name string, tracking RoleTracking)
	GetTracking(name string) (RoleTracking, bool)
	UpdateTracking(name string, tracking RoleTracking)
	RemoveTracking(name string)
	GetAllTrackings() []RoleTracking
}
