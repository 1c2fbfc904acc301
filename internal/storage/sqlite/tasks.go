package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tasknest/internal/models"
)

// archiveLimit caps the number of completed tasks kept per owner.
const archiveLimit = 5

const taskColumns = `id, owner_id, title, description, status, priority, deadline, created_at, updated_at`

// CreateTask inserts a new task for an owner and returns the assigned id.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (int64, error) {
	if strings.TrimSpace(t.Title) == "" {
		return 0, fmt.Errorf("task title must not be empty")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(owner_id, title, description, status, priority, deadline) VALUES(?, ?, ?, ?, ?, ?)`,
		t.OwnerID, strings.TrimSpace(t.Title), t.Description, string(t.Status), string(t.Priority), t.Deadline)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("task id: %w", err)
	}
	return id, nil
}

// GetTask fetches a single owner-scoped task.
func (s *Store) GetTask(ctx context.Context, ownerID string, taskID int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? AND id = ?`, ownerID, taskID)
	return scanTask(row)
}

// ListTasks returns the owner's active tasks ordered by creation date.
func (s *Store) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListVitalTasks returns the owner's active tasks with Extreme priority.
func (s *Store) ListVitalTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? AND priority = ? ORDER BY created_at ASC, id ASC`,
		ownerID, string(models.PriorityExtreme))
	if err != nil {
		return nil, fmt.Errorf("list vital tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// SearchTasks performs a case-insensitive substring match on active task
// titles. The archive is not searched.
func (s *Store) SearchTasks(ctx context.Context, ownerID, query string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? AND lower(title) LIKE '%' || lower(?) || '%' ORDER BY created_at ASC, id ASC`,
		ownerID, query)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListCompletedTasks returns the owner's archive ordered by creation date.
func (s *Store) ListCompletedTasks(ctx context.Context, ownerID string) ([]models.CompletedTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, description, priority, deadline, created_at, updated_at
         FROM completed_tasks WHERE owner_id = ? ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.CompletedTask
	for rows.Next() {
		var t models.CompletedTask
		var priority string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &priority, &t.Deadline, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan completed task: %w", err)
		}
		t.Priority = models.TaskPriority(priority)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a partial update to an owner's task. Absent patch fields
// leave the column untouched.
func (s *Store) UpdateTask(ctx context.Context, ownerID string, taskID int64, patch models.TaskPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("empty task patch")
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 8)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*patch.Title))
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*patch.Priority))
	}
	if patch.Deadline != nil {
		sets = append(sets, "deadline = ?")
		args = append(args, *patch.Deadline)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, ownerID, taskID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE owner_id = ? AND id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// SetTaskStatus moves an owner's task to the given status.
func (s *Store) SetTaskStatus(ctx context.Context, ownerID string, taskID int64, status models.TaskStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE owner_id = ? AND id = ?`,
		string(status), ownerID, taskID)
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// CompleteTask moves an owner's task into the archive inside one transaction:
// evict the oldest archived task when the retention cap is reached, insert the
// archive row under the original task id, then drop the active row. Either all
// three happen or none do.
func (s *Store) CompleteTask(ctx context.Context, ownerID string, taskID int64) (evicted bool, evictedID int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin complete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? AND id = ?`, ownerID, taskID)
	task, err := scanTask(row)
	if err != nil {
		return false, 0, err
	}

	var count int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completed_tasks WHERE owner_id = ?`, ownerID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("count archive: %w", err)
	}

	if count >= archiveLimit {
		if err = tx.QueryRowContext(ctx,
			`SELECT id FROM completed_tasks WHERE owner_id = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
			ownerID).Scan(&evictedID); err != nil {
			return false, 0, fmt.Errorf("select eviction candidate: %w", err)
		}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM completed_tasks WHERE owner_id = ? AND id = ?`, ownerID, evictedID); err != nil {
			return false, 0, fmt.Errorf("evict archived task: %w", err)
		}
		evicted = true
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO completed_tasks(id, owner_id, title, description, priority, deadline, created_at, updated_at)
         VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		task.ID, task.OwnerID, task.Title, task.Description, string(task.Priority), task.Deadline, task.CreatedAt); err != nil {
		return false, 0, fmt.Errorf("archive task: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM tasks WHERE owner_id = ? AND id = ?`, ownerID, taskID); err != nil {
		return false, 0, fmt.Errorf("remove active task: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit complete: %w", err)
	}
	return evicted, evictedID, nil
}

// DeleteTask removes a task wherever it lives: the active table first, then
// the archive. The returned flag reports whether the archive row was the one
// removed.
func (s *Store) DeleteTask(ctx context.Context, ownerID string, taskID int64) (fromArchive bool, err error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE owner_id = ? AND id = ?`, ownerID, taskID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return false, nil
	}

	res, err = s.db.ExecContext(ctx,
		`DELETE FROM completed_tasks WHERE owner_id = ? AND id = ?`, ownerID, taskID)
	if err != nil {
		return false, fmt.Errorf("delete completed task: %w", err)
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, ErrTaskNotFound
	}
	return true, nil
}

// CountCompletedTasks reports the archive size for an owner.
func (s *Store) CountCompletedTasks(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completed_tasks WHERE owner_id = ?`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed tasks: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var status, priority string
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &status, &priority, &t.Deadline, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.Status = models.TaskStatus(status)
	t.Priority = models.TaskPriority(priority)
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
