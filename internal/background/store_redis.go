package background

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-parser/internal/config"
	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
)

const redisTaskKeyPrefix = "resume-parser:task:"

// RedisTaskStore implements TaskStore on Redis. Entries expire after the
// configured maximum task age, so Cleanup only has to catch stragglers.
type RedisTaskStore struct {
	client *redis.Client
	ttl    time.Duration
	logger types.Logger
}

// storedTask mirrors TaskResult with the payload kept raw until the type is known
type storedTask struct {
	TaskResult
	Data json.RawMessage `json:"data,omitempty"`
}

// NewRedisTaskStore creates a task store from the redis config section
func NewRedisTaskStore(cfg *config.Config) *RedisTaskStore {
	logger := logging.GetGlobalLogger()

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Invalid Redis URL, falling back to localhost", map[string]interface{}{
			"error": err.Error(),
		})
		opts = &redis.Options{
			Addr: "localhost:6379",
		}
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	timeout := cfg.Redis.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	return NewRedisTaskStoreWithClient(redis.NewClient(opts), cfg.BackgroundTasks.MaxTaskAge)
}

// NewRedisTaskStoreWithClient wraps an existing client
func NewRedisTaskStoreWithClient(client *redis.Client, ttl time.Duration) *RedisTaskStore {
	return &RedisTaskStore{
		client: client,
		ttl:    ttl,
		logger: logging.GetGlobalLogger().WithField("component", "redis_task_store"),
	}
}

// Ping tests the Redis connection
func (s *RedisTaskStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisTaskStore) Close() error {
	return s.client.Close()
}

// Store records a new task result
func (s *RedisTaskStore) Store(ctx context.Context, result *TaskResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal task result: %w", err)
	}

	created, err := s.client.SetNX(ctx, taskKey(result.ProcessID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store task result: %w", err)
	}
	if !created {
		return ErrTaskExists
	}
	return nil
}

// Get retrieves a task result by process ID
func (s *RedisTaskStore) Get(ctx context.Context, processID string) (*TaskResult, error) {
	payload, err := s.client.Get(ctx, taskKey(processID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task result: %w", err)
	}

	return decodeTask(payload)
}

// Update updates a task result; the task must already exist
func (s *RedisTaskStore) Update(ctx context.Context, result *TaskResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal task result: %w", err)
	}

	updated, err := s.client.SetXX(ctx, taskKey(result.ProcessID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to update task result: %w", err)
	}
	if !updated {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task result
func (s *RedisTaskStore) Delete(ctx context.Context, processID string) error {
	removed, err := s.client.Del(ctx, taskKey(processID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete task result: %w", err)
	}
	if removed == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Cleanup removes finished tasks ahead of their TTL, for when maxAge is shorter than the key TTL
func (s *RedisTaskStore) Cleanup(ctx context.Context, maxAge time.Duration) error {
	results, err := s.List(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, result := range results {
		if result.expiredBefore(cutoff) {
			if err := s.client.Del(ctx, taskKey(result.ProcessID)).Err(); err != nil {
				return fmt.Errorf("failed to delete expired task: %w", err)
			}
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("Removed expired tasks", map[string]interface{}{
			"removed": removed,
		})
	}
	return nil
}

// List returns all task results, newest first
func (s *RedisTaskStore) List(ctx context.Context) ([]*TaskResult, error) {
	var results []*TaskResult

	iter := s.client.Scan(ctx, 0, redisTaskKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		payload, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			// expired between SCAN and GET
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get task result: %w", err)
		}

		result, err := decodeTask(payload)
		if err != nil {
			s.logger.Warn("Skipping undecodable task entry", map[string]interface{}{
				"key":   iter.Val(),
				"error": err.Error(),
			})
			continue
		}
		results = append(results, result)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan task results: %w", err)
	}

	sortNewestFirst(results)
	return results, nil
}

func decodeTask(payload []byte) (*TaskResult, error) {
	var stored storedTask
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task result: %w", err)
	}

	result := stored.TaskResult
	if len(stored.Data) > 0 && string(stored.Data) != "null" {
		switch result.Type {
		case TaskTypeParse:
			var data ParseTaskData
			if err := json.Unmarshal(stored.Data, &data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal parse task data: %w", err)
			}
			result.Data = &data
		default:
			var data interface{}
			if err := json.Unmarshal(stored.Data, &data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal task data: %w", err)
			}
			result.Data = data
		}
	}

	return &result, nil
}

func taskKey(processID string) string {
	return redisTaskKeyPrefix + processID
}
