package schema

import (
	"encoding/json"
)

// Checkpoint is the single system-wide record of the most recent role/action
// pair. Finished distinguishes a completed action from one that was
// interrupted mid-body.
type Checkpoint struct {
	Role       string          `json:"role"`
	Name       string          `json:"name"`
	ActionName ActionKind      `json:"action_name"`
	Action     json.RawMessage `json:"action"`
	Finished   bool            `json:"finished"`
}

// EmptyCheckpoint is what an absent state file is equivalent to.
func EmptyCheckpoint() Checkpoint {
	return Checkpoint{Action: json.RawMessage(`""`)}
}

// IsEmpty reports whether no role has ever recorded an action.
func (c Checkpoint) IsEmpty() bool {
	return c.Role == "" && c.Name == "" && c.ActionName == ""
}

// BelongsTo reports whether the checkpoint names the given role instance.
func (c Checkpoint) BelongsTo(profile, name string) bool {
	return !c.IsEmpty() && c.Role == profile && c.Name == name
}
