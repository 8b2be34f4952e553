// Package config loads the snowdream configuration from <env>.yaml with
// SNOWDREAM_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "SNOWDREAM"

var Config Configuration

type Configuration struct {
	Mode    string `mapstructure:"mode"`
	Project struct {
		Path      string `mapstructure:"path"`
		MaxRounds int    `mapstructure:"max_rounds"`
	} `mapstructure:"project"`
	OpenAI struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"openai"`
	Input struct {
		Mode string `mapstructure:"mode"`
	} `mapstructure:"input"`
	Render struct {
		Screenshots bool `mapstructure:"screenshots"`
	} `mapstructure:"render"`
	Log   LogConfig `mapstructure:"log"`
	Kafka      struct {
		Address string `mapstructure:"address"`
		Topic   string `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Database struct {
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		DBName   string `mapstructure:"dbname"`
	} `mapstructure:"database"`
	Checkpoint struct {
		Backend string `mapstructure:"backend"`
	} `mapstructure:"checkpoint"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	// File enables a rotated log file next to stderr output.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

const (
	InputTUI  = "tui"
	InputLine = "line"

	BackendFile     = "file"
	BackendPostgres = "postgres"
)

func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", "dev")
	v.SetDefault("project.path", "workspace")
	v.SetDefault("project.max_rounds", 100)
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("input.mode", InputTUI)
	v.SetDefault("render.screenshots", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("kafka.topic", "snowdream.messages")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("checkpoint.backend", BackendFile)
	v.SetDefault("server.port", "8080")
}

// Load reads <env>.yaml from the first of paths containing it. A missing
// file leaves defaults and environment values in place.
func Load(env string, paths ...string) (Configuration, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"config"}
	}
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Configuration
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("Config: failed to read config file", "env", env, "error", err)
			return cfg, fmt.Errorf("read config %s: %w", env, err)
		}
		slog.Debug("Config: no config file, using defaults", "env", env)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("Config: failed to decode config", "env", env, "error", err)
		return cfg, fmt.Errorf("decode config %s: %w", env, err)
	}
	return cfg, cfg.validate()
}

// LoadConfig loads env into the package level Config.
func LoadConfig(env string, paths ...string) error {
	cfg, err := Load(env, paths...)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

func (c Configuration) validate() error {
	switch c.Input.Mode {
	case InputTUI, InputLine:
	default:
		return fmt.Errorf("input.mode must be %q or %q, got %q", InputTUI, InputLine, c.Input.Mode)
	}
	switch c.Checkpoint.Backend {
	case BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("checkpoint.backend must be %q or %q, got %q", BackendFile, BackendPostgres, c.Checkpoint.Backend)
	}
	if c.Project.MaxRounds < 0 {
		return fmt.Errorf("project.max_rounds must not be negative")
	}
	return nil
}
