package wiring_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/roackb2/snowdream/config"
	"github.com/roackb2/snowdream/internal/app/wiring"
	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/storage"
	"github.com/roackb2/snowdream/internal/pkg/humaninput"
	"github.com/roackb2/snowdream/internal/pkg/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig(t *testing.T) config.Configuration {
	cfg, err := config.Load("missing", t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestOpenStoreDefaultsToFile(t *testing.T) {
	dir := t.TempDir()
	store, release, err := wiring.OpenStore(context.Background(), baseConfig(t), dir)
	require.NoError(t, err)
	defer release()
	assert.IsType(t, &storage.FileCheckpointStore{}, store)
}

func TestNewGeneratorNeedsKey(t *testing.T) {
	cfg := baseConfig(t)
	_, err := wiring.NewGenerator(cfg)
	assert.ErrorIs(t, err, wiring.ErrMissingAPIKey)

	cfg.OpenAI.APIKey = "sk-test"
	gen, err := wiring.NewGenerator(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", gen.(*providers.OpenAIGenerator).Model)
}

func TestNewPrompterFollowsInputMode(t *testing.T) {
	cfg := baseConfig(t)
	assert.IsType(t, &humaninput.TUIPrompter{}, wiring.NewPrompter(cfg, strings.NewReader(""), &bytes.Buffer{}))
	cfg.Input.Mode = config.InputLine
	assert.IsType(t, &humaninput.LinePrompter{}, wiring.NewPrompter(cfg, strings.NewReader(""), &bytes.Buffer{}))
}

func TestNewPubSubWithoutKafka(t *testing.T) {
	ps := wiring.NewPubSub(baseConfig(t))
	defer ps.Close()
	assert.IsType(t, &pubsub.ChannelPubSub{}, ps)
}

func TestDatabaseConfig(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Database.User = "u"
	cfg.Database.DBName = "d"
	assert.Equal(t, "postgres://u:@localhost:5432/d?sslmode=disable", wiring.DatabaseConfig(cfg).URL())
}
