package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

// Entry names one persisted log under a project directory.
type Entry struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

// List returns the logs persisted under projectPath, sorted by name. File
// names are split at the first underscore, so role names must not contain
// one.
func List(projectPath string) ([]Entry, error) {
	files, err := os.ReadDir(filepath.Join(projectPath, DirName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list memory: %w", err)
	}
	var out []Entry
	for _, f := range files {
		base, ok := strings.CutSuffix(f.Name(), ".json")
		if f.IsDir() || !ok {
			continue
		}
		name, profile, ok := strings.Cut(base, "_")
		if !ok || name == "" || profile == "" {
			continue
		}
		out = append(out, Entry{Name: name, Profile: profile})
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Read loads a persisted log without creating it. A missing file reports
// fs.ErrNotExist.
func Read(projectPath, name, profile string) ([]schema.Message, error) {
	if err := schema.ValidateRoleName(name); err != nil {
		return nil, err
	}
	path := FilePath(projectPath, name, profile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []schema.Message
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &schema.CorruptStateError{Path: path, Err: err}
	}
	return records, nil
}
