// Package tasks implements the task lifecycle: creation, edits, status
// transitions, completion with bounded archival, search and deletion, with a
// cache-aside Redis mirror over the sqlite store.
package tasks

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"tasknest/internal/images"
	"tasknest/internal/jobs"
	"tasknest/internal/models"
	"tasknest/internal/storage/sqlite"
)

// Cache is the task-list mirror consumed by the engine. Implemented by
// cache.TaskCache; tests substitute an in-memory fake.
type Cache interface {
	GetTasks(ctx context.Context, ownerID string) ([]models.TaskView, bool, error)
	GetVitalTasks(ctx context.Context, ownerID string) ([]models.TaskView, bool, error)
	SetTasks(ctx context.Context, ownerID string, views []models.TaskView) error
	SetVitalTasks(ctx context.Context, ownerID string, views []models.TaskView) error
	Invalidate(ctx context.Context, ownerID string) error
	InvalidateTasks(ctx context.Context, ownerID string) error
}

// Engine coordinates the store, the cache mirror, image files and background
// jobs. The store is the single source of truth; cache and image failures
// never fail a request.
type Engine struct {
	store   *sqlite.Store
	cache   Cache
	images  *images.Store
	jobs    *jobs.Runner
	logger  *slog.Logger
	baseURL string
}

// NewEngine wires the lifecycle engine.
func NewEngine(store *sqlite.Store, cache Cache, imgStore *images.Store, runner *jobs.Runner, logger *slog.Logger, baseURL string) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		cache:   cache,
		images:  imgStore,
		jobs:    runner,
		logger:  logger,
		baseURL: baseURL,
	}
}

// Create inserts a task and optionally attaches an image. The image write is
// best-effort: a failure is logged, the created task stands.
func (e *Engine) Create(ctx context.Context, ownerID string, task models.Task, img io.Reader) (int64, error) {
	task.OwnerID = ownerID
	id, err := e.store.CreateTask(ctx, task)
	if err != nil {
		return 0, err
	}

	if img != nil {
		if err := e.images.SaveTaskImage(id, ownerID, img); err != nil {
			e.logger.Warn("task image write failed",
				slog.Int64("task_id", id), slog.String("error", err.Error()))
		}
	}

	e.scheduleInvalidate(ownerID)
	return id, nil
}

// List returns the owner's full task history: archived tasks first, then
// active ones. Cache-aside: a hit is returned as-is, a miss reads the store
// and schedules the cache write for after the response.
func (e *Engine) List(ctx context.Context, ownerID string) ([]models.TaskView, error) {
	if views, ok := e.cacheGet(ctx, ownerID, false); ok {
		return views, nil
	}

	completed, err := e.store.ListCompletedTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	active, err := e.store.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]models.TaskView, 0, len(completed)+len(active))
	for _, t := range completed {
		views = append(views, e.serializeCompleted(t))
	}
	for _, t := range active {
		views = append(views, e.serializeTask(t))
	}

	e.scheduleCacheSet(ownerID, views, false)
	return views, nil
}

// ListVital returns active tasks with Extreme priority, cache-aside against
// the owner's vital key.
func (e *Engine) ListVital(ctx context.Context, ownerID string) ([]models.TaskView, error) {
	if views, ok := e.cacheGet(ctx, ownerID, true); ok {
		return views, nil
	}

	vital, err := e.store.ListVitalTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]models.TaskView, 0, len(vital))
	for _, t := range vital {
		views = append(views, e.serializeTask(t))
	}

	e.scheduleCacheSet(ownerID, views, true)
	return views, nil
}

// Start moves a task to In Progress.
func (e *Engine) Start(ctx context.Context, ownerID string, taskID int64) error {
	if err := e.store.SetTaskStatus(ctx, ownerID, taskID, models.StatusInProgress); err != nil {
		return err
	}
	e.scheduleInvalidate(ownerID)
	return nil
}

// Edit applies a partial update and optionally replaces the task image.
func (e *Engine) Edit(ctx context.Context, ownerID string, taskID int64, patch models.TaskPatch, img io.Reader) error {
	if err := e.store.UpdateTask(ctx, ownerID, taskID, patch); err != nil {
		return err
	}

	if img != nil {
		if err := e.images.SaveTaskImage(taskID, ownerID, img); err != nil {
			e.logger.Warn("task image write failed",
				slog.Int64("task_id", taskID), slog.String("error", err.Error()))
		}
	}

	e.scheduleInvalidate(ownerID)
	return nil
}

// Complete archives a task atomically. When the retention cap evicts the
// oldest archive entry, its image file is cleaned up in the background. Only
// the full-list key is invalidated: archived tasks are never vital.
func (e *Engine) Complete(ctx context.Context, ownerID string, taskID int64) (evicted bool, evictedID int64, err error) {
	evicted, evictedID, err = e.store.CompleteTask(ctx, ownerID, taskID)
	if err != nil {
		return false, 0, err
	}

	if evicted {
		e.scheduleImageCleanup(ownerID, evictedID)
	}
	e.jobs.Submit("cache.invalidate_tasks", func(ctx context.Context) error {
		return e.cache.InvalidateTasks(ctx, ownerID)
	})
	return evicted, evictedID, nil
}

// Search matches active task titles case-insensitively. An empty query
// returns an empty result without touching the store.
func (e *Engine) Search(ctx context.Context, ownerID, query string) ([]models.TaskView, error) {
	if strings.TrimSpace(query) == "" {
		return []models.TaskView{}, nil
	}

	found, err := e.store.SearchTasks(ctx, ownerID, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}

	views := make([]models.TaskView, 0, len(found))
	for _, t := range found {
		views = append(views, e.serializeTask(t))
	}
	return views, nil
}

// Delete removes a task from whichever table holds it and schedules image
// cleanup.
func (e *Engine) Delete(ctx context.Context, ownerID string, taskID int64) error {
	if _, err := e.store.DeleteTask(ctx, ownerID, taskID); err != nil {
		return err
	}

	e.scheduleImageCleanup(ownerID, taskID)
	e.scheduleInvalidate(ownerID)
	return nil
}

// cacheGet reads one of the owner's cached views. Errors degrade to a miss.
func (e *Engine) cacheGet(ctx context.Context, ownerID string, vital bool) ([]models.TaskView, bool) {
	var (
		views []models.TaskView
		ok    bool
		err   error
	)
	if vital {
		views, ok, err = e.cache.GetVitalTasks(ctx, ownerID)
	} else {
		views, ok, err = e.cache.GetTasks(ctx, ownerID)
	}
	if err != nil {
		e.logger.Warn("cache read failed", slog.String("owner", ownerID), slog.String("error", err.Error()))
		return nil, false
	}
	return views, ok
}

func (e *Engine) scheduleCacheSet(ownerID string, views []models.TaskView, vital bool) {
	name := "cache.set_tasks"
	if vital {
		name = "cache.set_vital_tasks"
	}
	e.jobs.Submit(name, func(ctx context.Context) error {
		if vital {
			return e.cache.SetVitalTasks(ctx, ownerID, views)
		}
		return e.cache.SetTasks(ctx, ownerID, views)
	})
}

func (e *Engine) scheduleInvalidate(ownerID string) {
	e.jobs.Submit("cache.invalidate", func(ctx context.Context) error {
		return e.cache.Invalidate(ctx, ownerID)
	})
}

func (e *Engine) scheduleImageCleanup(ownerID string, taskID int64) {
	e.jobs.Submit("images.cleanup", func(_ context.Context) error {
		return e.images.DeleteTaskImage(taskID, ownerID)
	})
}

// serializeTask is the single enum-to-wire boundary for active tasks. The
// image URL is synthesized whether or not an image was uploaded; a dangling
// link is accepted behavior inherited from the original API.
func (e *Engine) serializeTask(t models.Task) models.TaskView {
	return models.TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Deadline:    t.Deadline.String(),
		TaskImg:     images.TaskImageURL(e.baseURL, t.ID, t.OwnerID),
	}
}

// serializeCompleted renders an archive entry; status is Done by definition.
func (e *Engine) serializeCompleted(t models.CompletedTask) models.TaskView {
	return models.TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(models.StatusDone),
		Priority:    string(t.Priority),
		Deadline:    t.Deadline.String(),
		TaskImg:     images.TaskImageURL(e.baseURL, t.ID, t.OwnerID),
	}
}
