package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// HistoryStore keeps the topics already narrated for each browser session so
// suggestions can avoid repeating them.
type HistoryStore interface {
	Get(ctx context.Context, sessionID string) ([]string, error)
	Append(ctx context.Context, sessionID string, topics ...string) error
}

type MemoryHistory struct {
	mu       sync.RWMutex
	sessions map[string][]string
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{sessions: make(map[string][]string)}
}

// Get returns a copy, callers may keep it across requests.
func (m *MemoryHistory) Get(_ context.Context, sessionID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.sessions[sessionID]...), nil
}

func (m *MemoryHistory) Append(_ context.Context, sessionID string, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], topics...)
	return nil
}

const historyKeyPrefix = "bitecast:history:"

// RedisHistory stores each session's history as a Redis list so it survives
// restarts and is shared between instances.
type RedisHistory struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisHistory connects using a redis:// URL and verifies the connection.
func NewRedisHistory(ctx context.Context, url string, ttl time.Duration) (*RedisHistory, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisHistory{rdb: rdb, ttl: ttl}, nil
}

func (r *RedisHistory) Get(ctx context.Context, sessionID string) ([]string, error) {
	topics, err := r.rdb.LRange(ctx, historyKeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return topics, nil
}

func (r *RedisHistory) Append(ctx context.Context, sessionID string, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	key := historyKeyPrefix + sessionID
	values := make([]interface{}, len(topics))
	for i, t := range topics {
		values[i] = t
	}
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *RedisHistory) Close() error {
	return r.rdb.Close()
}
