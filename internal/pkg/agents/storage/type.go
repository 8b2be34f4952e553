// Package storage persists the checkpoint slot of a project.
package storage

import (
	"context"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

// CheckpointStore holds exactly one checkpoint. Save always overwrites the
// slot; there is no merge or versioning. Load returns schema.EmptyCheckpoint
// when nothing was ever saved.
type CheckpointStore interface {
	Load(ctx context.Context) (schema.Checkpoint, error)
	Save(ctx context.Context, checkpoint schema.Checkpoint) error
}

// CheckpointPeeker is implemented by stores whose Load has side effects. Peek
// reads the slot and never writes.
type CheckpointPeeker interface {
	Peek(ctx context.Context) (schema.Checkpoint, error)
}

// Peek reads store without side effects when it supports that, and falls
// back to Load otherwise.
func Peek(ctx context.Context, store CheckpointStore) (schema.Checkpoint, error) {
	if peeker, ok := store.(CheckpointPeeker); ok {
		return peeker.Peek(ctx)
	}
	return store.Load(ctx)
}

// Location names where store keeps the slot, for error reports.
func Location(store CheckpointStore) string {
	if located, ok := store.(interface{ Path() string }); ok {
		return located.Path()
	}
	return "checkpoint"
}
