// Package memory implements a role's durable message log. Every mutation
// rewrites the whole file, which keeps the on-disk copy in lockstep with the
// in-memory copy.
package memory

import (
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

const (
	DirName  = "memory"
	filePerm = 0o644
)

// Log is the ordered, append-only message history of one role instance.
type Log struct {
	mu       sync.RWMutex
	path     string
	messages []schema.Message
}

// FilePath returns memory/<name>_<profile>.json under the project directory.
func FilePath(projectPath, name, profile string) string {
	return filepath.Join(projectPath, DirName, fmt.Sprintf("%s_%s.json", name, profile))
}

// Open loads the log persisted for (name, profile). A missing file starts an
// empty log and writes it out; an unparsable file is a CorruptStateError.
func Open(projectPath, name, profile string) (*Log, error) {
	if err := schema.ValidateRoleName(name); err != nil {
		return nil, err
	}
	path := FilePath(projectPath, name, profile)
	l := &Log{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("Memory: no persisted memory, starting empty", "path", path)
		if err := l.flush(); err != nil {
			return nil, err
		}
		return l, nil
	}
	if err != nil {
		slog.Error("Memory: failed to read memory file", "path", path, "error", err)
		return nil, fmt.Errorf("read memory %s: %w", path, err)
	}

	var records []schema.Message
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Error("Memory: memory file is corrupt", "path", path, "error", err)
		return nil, &schema.CorruptStateError{Path: path, Err: err}
	}
	l.messages = records
	slog.Info("Memory: restored memory", "path", path, "count", len(records))
	return l, nil
}

func (l *Log) Path() string {
	return l.path
}

// Append adds msg and persists the full log before returning. On a write
// failure the message is taken back out so memory never runs ahead of disk.
func (l *Log) Append(msg schema.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, msg.Clone())
	if err := l.flush(); err != nil {
		l.messages = l.messages[:len(l.messages)-1]
		return err
	}
	return nil
}

// DropLast removes the newest message. It is only used while restoring, to
// discard a message that is about to be regenerated.
func (l *Log) DropLast() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.messages) == 0 {
		return nil
	}
	dropped := l.messages[len(l.messages)-1]
	l.messages = l.messages[:len(l.messages)-1]
	if err := l.flush(); err != nil {
		l.messages = append(l.messages, dropped)
		return err
	}
	slog.Info("Memory: dropped newest message", "path", l.path, "cause_by", dropped.CauseBy)
	return nil
}

// Recent returns the last k messages in log order.
func (l *Log) Recent(k int) []schema.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if k <= 0 {
		return nil
	}
	start := max(len(l.messages)-k, 0)
	return schema.CloneMessages(l.messages[start:])
}

// All returns every message in log order.
func (l *Log) All() []schema.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return schema.CloneMessages(l.messages)
}

// Last returns the newest message.
func (l *Log) Last() (schema.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.messages) == 0 {
		return schema.Message{}, false
	}
	return l.messages[len(l.messages)-1].Clone(), true
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Filter returns the messages matching keep, in log order.
func (l *Log) Filter(keep func(schema.Message) bool) []schema.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []schema.Message
	for _, msg := range l.messages {
		if keep(msg) {
			out = append(out, msg.Clone())
		}
	}
	return out
}

// LastOf returns the newest message produced by kind.
func (l *Log) LastOf(kind schema.ActionKind) (schema.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].CauseBy == kind {
			return l.messages[i].Clone(), true
		}
	}
	return schema.Message{}, false
}

// flush must be called with l.mu held.
func (l *Log) flush() error {
	records := l.messages
	if records == nil {
		records = []schema.Message{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode memory %s: %w", l.path, err)
	}
	if err := utils.WriteFileAtomic(l.path, data, filePerm); err != nil {
		slog.Error("Memory: failed to persist memory", "path", l.path, "error", err)
		return err
	}
	return nil
}
