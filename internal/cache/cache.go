// Package cache mirrors per-owner task lists in Redis using the cache-aside
// pattern. Entries are advisory: the sqlite store stays the source of truth
// and every mutation deletes whole keys instead of patching them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tasknest/internal/models"
)

// entryTTL bounds staleness when an invalidation is lost.
const entryTTL = 100 * time.Second

// TaskCache stores serialized task lists keyed per owner.
type TaskCache struct {
	client *redis.Client
}

// New wraps an existing Redis client.
func New(client *redis.Client) *TaskCache {
	return &TaskCache{client: client}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr, password string) (*TaskCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return New(client), nil
}

// Close releases the Redis connection.
func (c *TaskCache) Close() error {
	return c.client.Close()
}

func tasksKey(ownerID string) string {
	return ownerID + "_tasks"
}

func vitalTasksKey(ownerID string) string {
	return ownerID + "_vital_tasks"
}

// GetTasks returns the cached full task list for an owner. The second return
// value reports a hit.
func (c *TaskCache) GetTasks(ctx context.Context, ownerID string) ([]models.TaskView, bool, error) {
	return c.get(ctx, tasksKey(ownerID))
}

// GetVitalTasks returns the cached vital task list for an owner.
func (c *TaskCache) GetVitalTasks(ctx context.Context, ownerID string) ([]models.TaskView, bool, error) {
	return c.get(ctx, vitalTasksKey(ownerID))
}

func (c *TaskCache) get(ctx context.Context, key string) ([]models.TaskView, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var views []models.TaskView
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return views, true, nil
}

// SetTasks replaces the cached full task list for an owner.
func (c *TaskCache) SetTasks(ctx context.Context, ownerID string, views []models.TaskView) error {
	return c.set(ctx, tasksKey(ownerID), views)
}

// SetVitalTasks replaces the cached vital task list for an owner.
func (c *TaskCache) SetVitalTasks(ctx context.Context, ownerID string, views []models.TaskView) error {
	return c.set(ctx, vitalTasksKey(ownerID), views)
}

func (c *TaskCache) set(ctx context.Context, key string, views []models.TaskView) error {
	data, err := json.Marshal(views)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, entryTTL).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops both of the owner's cached views. Deleting absent keys is
// a no-op.
func (c *TaskCache) Invalidate(ctx context.Context, ownerID string) error {
	if err := c.client.Del(ctx, tasksKey(ownerID), vitalTasksKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", ownerID, err)
	}
	return nil
}

// InvalidateTasks drops only the full task list. Complete uses this: archived
// tasks are never vital, so the vital view cannot have changed.
func (c *TaskCache) InvalidateTasks(ctx context.Context, ownerID string) error {
	if err := c.client.Del(ctx, tasksKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate tasks %s: %w", ownerID, err)
	}
	return nil
}
