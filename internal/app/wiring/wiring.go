// Package wiring turns configuration into the collaborators a team or the
// dashboard runs with.
package wiring

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/roackb2/snowdream/config"
	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/storage"
	"github.com/roackb2/snowdream/internal/pkg/humaninput"
	"github.com/roackb2/snowdream/internal/pkg/pubsub"
	"github.com/roackb2/snowdream/internal/pkg/render"
)

const ScreenshotTimeout = 30 * time.Second

var ErrMissingAPIKey = errors.New("openai.api_key is not set")

func DatabaseConfig(cfg config.Configuration) storage.DatabaseConfig {
	return storage.DatabaseConfig{
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		DBName:   cfg.Database.DBName,
	}
}

// OpenStore returns the configured checkpoint backend and its release func.
func OpenStore(ctx context.Context, cfg config.Configuration, projectPath string) (storage.CheckpointStore, func(), error) {
	if cfg.Checkpoint.Backend != config.BackendPostgres {
		return storage.NewFileCheckpointStore(projectPath), func() {}, nil
	}
	pool, err := storage.Connect(ctx, DatabaseConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return storage.NewPostgresCheckpointStore(pool, projectPath), pool.Close, nil
}

func NewGenerator(cfg config.Configuration) (providers.Generator, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAI.APIKey))
	return providers.NewOpenAIGenerator(client, cfg.OpenAI.Model), nil
}

func NewPrompter(cfg config.Configuration, in io.Reader, out io.Writer) humaninput.Prompter {
	if cfg.Input.Mode == config.InputLine {
		return humaninput.NewLinePrompter(in, out)
	}
	return humaninput.NewTUIPrompter(in, out)
}

func NewRenderer(cfg config.Configuration, projectPath string) *render.FileRenderer {
	var shots render.Screenshotter
	if cfg.Render.Screenshots {
		shots = render.NewChromeScreenshotter(ScreenshotTimeout)
	}
	return render.NewFileRenderer(projectPath, shots)
}

// NewPubSub returns Kafka when an address is configured. Without one,
// notifications stay in process.
func NewPubSub(cfg config.Configuration) pubsub.PubSub {
	if cfg.Kafka.Address == "" {
		slog.Debug("Wiring: no kafka address, using in-process pubsub")
		return pubsub.NewChannelPubSub(0)
	}
	return pubsub.NewKafkaPubSub(cfg.Kafka.Address)
}
