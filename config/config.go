// Package config loads YAML settings for logging and the run journal and
// turns them into graph options.
//
//	graph_id: canvas-1
//	log:
//	  level: debug
//	journal:
//	  backend: sqlite
//	  sqlite:
//	    path: runs.db
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/smallnest/nodegraphgo/graph"
	"github.com/smallnest/nodegraphgo/log"
	"github.com/smallnest/nodegraphgo/store"
	"github.com/smallnest/nodegraphgo/store/file"
	"github.com/smallnest/nodegraphgo/store/memory"
	"github.com/smallnest/nodegraphgo/store/postgres"
	"github.com/smallnest/nodegraphgo/store/redis"
	"github.com/smallnest/nodegraphgo/store/sqlite"
	"gopkg.in/yaml.v3"
)

// Journal backends.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level document.
type Config struct {
	GraphID string        `yaml:"graph_id"`
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`
}

// LogConfig selects the log level. Output goes to stderr.
type LogConfig struct {
	Level string `yaml:"level"`
}

// JournalConfig selects a run journal backend and its settings.
type JournalConfig struct {
	Backend  string         `yaml:"backend"`
	File     FileConfig     `yaml:"file"`
	Redis    RedisConfig    `yaml:"redis"`
	Sqlite   SqliteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type FileConfig struct {
	Dir string `yaml:"dir"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type SqliteConfig struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table"`
}

type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
	// InitSchema creates the table on open
	InitSchema bool `yaml:"init_schema"`
}

// Load reads and parses a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, rejecting unknown fields, and validates the result.
// An empty document is valid and means Info logging with no journal.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the log level and the selected backend's required fields.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}

	j := c.Journal
	var missing string
	switch c.backend() {
	case BackendNone, BackendMemory:
	case BackendFile:
		if j.File.Dir == "" {
			missing = "journal.file.dir"
		}
	case BackendRedis:
		if j.Redis.Addr == "" {
			missing = "journal.redis.addr"
		}
	case BackendSqlite:
		if j.Sqlite.Path == "" {
			missing = "journal.sqlite.path"
		}
	case BackendPostgres:
		if j.Postgres.ConnString == "" {
			missing = "journal.postgres.conn_string"
		}
	default:
		return fmt.Errorf("%w: unknown journal backend %q", ErrInvalidConfig, j.Backend)
	}
	if missing != "" {
		return fmt.Errorf("%w: %s is required for backend %s", ErrInvalidConfig, missing, c.backend())
	}
	return nil
}

func (c *Config) backend() string {
	b := strings.ToLower(strings.TrimSpace(c.Journal.Backend))
	if b == "" {
		return BackendNone
	}
	return b
}

// Logger builds a golog-backed logger at the configured level.
func (c *Config) Logger() (log.Logger, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.NewDefaultLogger(level), nil
}

func noClose() error { return nil }

// OpenJournal opens the configured backend. The returned close function
// releases its connections; it is never nil. Backend none yields a nil store.
func (c *Config) OpenJournal(ctx context.Context) (store.RunStore, func() error, error) {
	j := c.Journal
	switch c.backend() {
	case BackendNone:
		return nil, noClose, nil
	case BackendMemory:
		return memory.NewMemoryRunStore(), noClose, nil
	case BackendFile:
		s, err := file.NewFileRunStore(j.File.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, noClose, nil
	case BackendRedis:
		s := redis.NewRedisRunStore(redis.RedisOptions{
			Addr:     j.Redis.Addr,
			Password: j.Redis.Password,
			DB:       j.Redis.DB,
			Prefix:   j.Redis.Prefix,
			TTL:      j.Redis.TTL,
		})
		return s, s.Close, nil
	case BackendSqlite:
		s, err := sqlite.NewSqliteRunStore(sqlite.SqliteOptions{
			Path:      j.Sqlite.Path,
			TableName: j.Sqlite.Table,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case BackendPostgres:
		s, err := postgres.NewPostgresRunStore(ctx, postgres.PostgresOptions{
			ConnString: j.Postgres.ConnString,
			TableName:  j.Postgres.Table,
		})
		if err != nil {
			return nil, nil, err
		}
		if j.Postgres.InitSchema {
			if err := s.InitSchema(ctx); err != nil {
				s.Close()
				return nil, nil, err
			}
		}
		return s, func() error { s.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown journal backend %q", ErrInvalidConfig, j.Backend)
	}
}

// GraphOptions builds the logger, journal and graph id options for
// graph.NewGraph. Call the returned function when the graph is done.
func (c *Config) GraphOptions(ctx context.Context) ([]graph.Option, func() error, error) {
	logger, err := c.Logger()
	if err != nil {
		return nil, nil, err
	}
	journal, closeFn, err := c.OpenJournal(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []graph.Option{graph.WithLogger(logger), graph.WithGraphID(c.GraphID)}
	if journal != nil {
		opts = append(opts, graph.WithJournal(journal))
	}
	return opts, closeFn, nil
}
