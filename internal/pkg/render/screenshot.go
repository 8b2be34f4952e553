package render

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/roackb2/snowdream/internal/pkg/utils"
)

// ImagePath maps ui/page-1.html to ui/page-1.png.
func ImagePath(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + ".png"
}

// ChromeScreenshotter renders each file in a headless browser and saves a
// full page PNG next to it.
type ChromeScreenshotter struct {
	Timeout time.Duration
}

func NewChromeScreenshotter(timeout time.Duration) *ChromeScreenshotter {
	return &ChromeScreenshotter{Timeout: timeout}
}

func allocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
}

func (s *ChromeScreenshotter) Capture(ctx context.Context, files []string) ([]string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	images := make([]string, 0, len(files))
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, err
		}
		var buf []byte
		// Quality 100 keeps the capture in PNG format.
		if err := chromedp.Run(browserCtx,
			chromedp.Navigate("file://"+abs),
			chromedp.FullScreenshot(&buf, 100),
		); err != nil {
			return nil, fmt.Errorf("capture %s: %w", file, err)
		}
		image := ImagePath(file)
		if err := utils.WriteFileAtomic(image, buf, 0o644); err != nil {
			return nil, err
		}
		slog.Info("ChromeScreenshotter: captured", "file", file, "image", image)
		images = append(images, image)
	}
	return images, nil
}
