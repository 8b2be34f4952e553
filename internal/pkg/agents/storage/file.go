package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/utils"
)

const StateFileName = "state.json"

// FileCheckpointStore keeps the checkpoint in <project>/state.json. The
// mutex serializes read-modify-write cycles within the process.
type FileCheckpointStore struct {
	mu   sync.Mutex
	path string
}

var _ CheckpointStore = (*FileCheckpointStore)(nil)

func NewFileCheckpointStore(projectPath string) *FileCheckpointStore {
	return &FileCheckpointStore{path: filepath.Join(projectPath, StateFileName)}
}

func (s *FileCheckpointStore) Path() string {
	return s.path
}

func (s *FileCheckpointStore) Load(_ context.Context) (schema.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkpoint, missing, err := s.read()
	if err != nil {
		return schema.Checkpoint{}, err
	}
	if missing {
		slog.Info("CheckpointStore: no state file, initializing empty checkpoint", "path", s.path)
		if err := s.write(checkpoint); err != nil {
			return schema.Checkpoint{}, err
		}
	}
	return checkpoint, nil
}

// Peek reads the slot without creating state.json when it is missing.
func (s *FileCheckpointStore) Peek(_ context.Context) (schema.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkpoint, _, err := s.read()
	return checkpoint, err
}

func (s *FileCheckpointStore) read() (schema.Checkpoint, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return schema.EmptyCheckpoint(), true, nil
	}
	if err != nil {
		slog.Error("CheckpointStore: failed to read state file", "path", s.path, "error", err)
		return schema.Checkpoint{}, false, fmt.Errorf("read checkpoint %s: %w", s.path, err)
	}

	var checkpoint schema.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		slog.Error("CheckpointStore: state file is corrupt", "path", s.path, "error", err)
		return schema.Checkpoint{}, false, &schema.CorruptStateError{Path: s.path, Err: err}
	}
	return checkpoint, false, nil
}

func (s *FileCheckpointStore) Save(_ context.Context, checkpoint schema.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(checkpoint); err != nil {
		return err
	}
	slog.Debug("CheckpointStore: saved checkpoint",
		"role", checkpoint.Role, "name", checkpoint.Name,
		"action", checkpoint.ActionName, "finished", checkpoint.Finished)
	return nil
}

func (s *FileCheckpointStore) write(checkpoint schema.Checkpoint) error {
	if len(checkpoint.Action) == 0 {
		checkpoint.Action = json.RawMessage(`""`)
	}
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := utils.WriteFileAtomic(s.path, data, 0o644); err != nil {
		slog.Error("CheckpointStore: failed to write state file", "path", s.path, "error", err)
		return err
	}
	return nil
}
