// Package render writes finished artifacts into the project directory.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/utils"
)

const (
	DocumentDir     = "prd"
	DocumentVersion = "1.0.0"
	PagesDir        = "ui"
)

type Renderer interface {
	// WriteDocument replaces the project requirements document and returns its path.
	WriteDocument(ctx context.Context, content string) (string, error)
	// WritePages stores markup fragments as ui/page-<n>.html and returns the written files.
	WritePages(ctx context.Context, pages []string) ([]string, error)
}

type Screenshotter interface {
	Capture(ctx context.Context, files []string) ([]string, error)
}

type FileRenderer struct {
	projectPath string
	shots       Screenshotter
}

// NewFileRenderer builds a renderer rooted at projectPath. A nil shots
// skips screenshots.
func NewFileRenderer(projectPath string, shots Screenshotter) *FileRenderer {
	return &FileRenderer{projectPath: projectPath, shots: shots}
}

func (r *FileRenderer) DocumentPath() string {
	return filepath.Join(r.projectPath, DocumentDir, DocumentVersion+".md")
}

func (r *FileRenderer) WriteDocument(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := r.DocumentPath()
	if err := utils.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		slog.Error("Renderer: failed to write document", "path", path, "error", err)
		return "", schema.External("write document", err)
	}
	slog.Info("Renderer: document written", "path", path)
	return path, nil
}

func (r *FileRenderer) WritePages(ctx context.Context, pages []string) ([]string, error) {
	files := make([]string, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(r.projectPath, PagesDir, fmt.Sprintf("page-%d.html", i+1))
		if err := utils.WriteFileAtomic(path, []byte(page), 0o644); err != nil {
			slog.Error("Renderer: failed to write page", "path", path, "error", err)
			return nil, schema.External("write page", err)
		}
		files = append(files, path)
	}
	if r.shots == nil || len(files) == 0 {
		return files, nil
	}
	images, err := r.shots.Capture(ctx, files)
	if err != nil {
		slog.Error("Renderer: failed to capture screenshots", "error", err)
		return nil, schema.External("screenshot", err)
	}
	return append(files, images...), nil
}
