package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

const (
	loadCheckpointSQL = `SELECT role, name, action_name, action, finished FROM checkpoints WHERE project = $1`
	saveCheckpointSQL = `INSERT INTO checkpoints (project, role, name, action_name, action, finished, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (project) DO UPDATE SET
	role = EXCLUDED.role,
	name = EXCLUDED.name,
	action_name = EXCLUDED.action_name,
	action = EXCLUDED.action,
	finished = EXCLUDED.finished,
	updated_at = EXCLUDED.updated_at`
)

// DBTX is the subset of pgxpool.Pool the relational store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DatabaseConfig locates the Postgres server.
type DatabaseConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	DBName   string
}

func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// URL is the form golang-migrate expects.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Connect opens and pings a pool.
func Connect(ctx context.Context, cfg DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		slog.Error("RelationalStorage: failed to create db pool", "error", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		slog.Error("RelationalStorage: failed to ping db pool", "error", err)
		pool.Close()
		return nil, err
	}
	slog.Info("RelationalStorage: connected", "host", cfg.Host, "dbname", cfg.DBName)
	return pool, nil
}

// PostgresCheckpointStore keeps one checkpoint row per project in the
// checkpoints table created by cmd/migrate.
type PostgresCheckpointStore struct {
	db      DBTX
	project string
}

var _ CheckpointStore = (*PostgresCheckpointStore)(nil)

// NewPostgresCheckpointStore keys the slot by the absolute project path so
// projects sharing a database never share a checkpoint.
func NewPostgresCheckpointStore(db DBTX, projectPath string) *PostgresCheckpointStore {
	return &PostgresCheckpointStore{db: db, project: ProjectKey(projectPath)}
}

// ProjectKey is the row key for a project directory.
func ProjectKey(projectPath string) string {
	if abs, err := filepath.Abs(projectPath); err == nil {
		return abs
	}
	return filepath.Clean(projectPath)
}

func (s *PostgresCheckpointStore) Project() string { return s.project }

// Path names the row in errors.
func (s *PostgresCheckpointStore) Path() string { return "checkpoints#" + s.project }

func (s *PostgresCheckpointStore) Load(ctx context.Context) (schema.Checkpoint, error) {
	var (
		checkpoint schema.Checkpoint
		action     []byte
		actionName string
	)
	err := s.db.QueryRow(ctx, loadCheckpointSQL, s.project).Scan(
		&checkpoint.Role, &checkpoint.Name, &actionName, &action, &checkpoint.Finished,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		slog.Info("RelationalStorage: no checkpoint row, using empty checkpoint", "project", s.project)
		return schema.EmptyCheckpoint(), nil
	}
	if err != nil {
		slog.Error("RelationalStorage: failed to load checkpoint", "project", s.project, "error", err)
		return schema.Checkpoint{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if len(action) > 0 && !json.Valid(action) {
		return schema.Checkpoint{}, &schema.CorruptStateError{Path: s.Path(), Err: errors.New("action is not valid json")}
	}
	checkpoint.ActionName = schema.ActionKind(actionName)
	checkpoint.Action = json.RawMessage(action)
	return checkpoint, nil
}

func (s *PostgresCheckpointStore) Save(ctx context.Context, checkpoint schema.Checkpoint) error {
	action := []byte(checkpoint.Action)
	if len(action) == 0 {
		action = []byte(`""`)
	}
	_, err := s.db.Exec(ctx, saveCheckpointSQL, s.project,
		checkpoint.Role, checkpoint.Name, string(checkpoint.ActionName), action, checkpoint.Finished,
	)
	if err != nil {
		slog.Error("RelationalStorage: failed to save checkpoint", "project", s.project, "error", err)
		return fmt.Errorf("save checkpoint: %w", err)
	}
	slog.Debug("RelationalStorage: saved checkpoint", "role", checkpoint.Role, "name", checkpoint.Name, "action", checkpoint.ActionName, "finished", checkpoint.Finished)
	return nil
}
