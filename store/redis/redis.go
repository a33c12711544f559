package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/nodegraphgo/store"
)

// RedisRunStore implements store.RunStore using Redis
type RedisRunStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.RunStore = (*RedisRunStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "nodegraph:"
	TTL      time.Duration // Expiration for records, default 0 (no expiration)
}

// NewRedisRunStore creates a new Redis run store
func NewRedisRunStore(opts RedisOptions) *RedisRunStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisRunStoreWithClient(client, opts.Prefix, opts.TTL)
}

// NewRedisRunStoreWithClient wraps an existing client.
func NewRedisRunStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisRunStore {
	if prefix == "" {
		prefix = "nodegraph:"
	}
	return &RedisRunStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Close closes the underlying client
func (s *RedisRunStore) Close() error {
	return s.client.Close()
}

func (s *RedisRunStore) runKey(id string) string {
	return fmt.Sprintf("%srun:%s", s.prefix, id)
}

func (s *RedisRunStore) graphKey(id string) string {
	return fmt.Sprintf("%sgraph:%s:runs", s.prefix, id)
}

// Save stores a record and indexes it under its graph
func (s *RedisRunStore) Save(ctx context.Context, record *store.RunRecord) error {
	if err := store.CheckRecord(record); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.runKey(record.ID), data, s.ttl)
	if record.GraphID != "" {
		graphKey := s.graphKey(record.GraphID)
		pipe.SAdd(ctx, graphKey, record.ID)
		if s.ttl > 0 {
			pipe.Expire(ctx, graphKey, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run record to redis: %w", err)
	}
	return nil
}

// Load retrieves a record by ID
func (s *RedisRunStore) Load(ctx context.Context, runID string) (*store.RunRecord, error) {
	data, err := s.client.Get(ctx, s.runKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to load run record from redis: %w", err)
	}

	var rec store.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	return &rec, nil
}

// List returns the records of a graph ordered by start time. Index entries
// whose record expired are skipped.
func (s *RedisRunStore) List(ctx context.Context, graphID string) ([]*store.RunRecord, error) {
	ids, err := s.client.SMembers(ctx, s.graphKey(graphID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for graph %s: %w", graphID, err)
	}
	if len(ids) == 0 {
		return []*store.RunRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.runKey(id)
	}
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch run records: %w", err)
	}

	records := make([]*store.RunRecord, 0, len(results))
	for _, result := range results {
		raw, ok := result.(string)
		if !ok {
			continue
		}
		var rec store.RunRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
		}
		records = append(records, &rec)
	}
	store.SortByStart(records)
	return records, nil
}

// Delete removes a record and its index entry
func (s *RedisRunStore) Delete(ctx context.Context, runID string) error {
	rec, err := s.Load(ctx, runID)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.runKey(runID))
	if rec.GraphID != "" {
		pipe.SRem(ctx, s.graphKey(rec.GraphID), runID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	return nil
}

// Clear removes every record of a graph and the graph index
func (s *RedisRunStore) Clear(ctx context.Context, graphID string) error {
	graphKey := s.graphKey(graphID)
	ids, err := s.client.SMembers(ctx, graphKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get runs for clearing: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.runKey(id))
	}
	pipe.Del(ctx, graphKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}
	return nil
}
