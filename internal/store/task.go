package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/repository"
)

// TaskRepository implements task.Repository
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, project_id, name, description, assignee_id, start_date, end_date,
	progress, status, created_at, updated_at`

func scanTask(row rowScanner, t *task.Task) error {
	var assignee sql.NullString
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description, &assignee,
		&t.StartDate, &t.EndDate, &t.Progress, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return err
	}
	if assignee.Valid {
		t.AssigneeID = &assignee.String
	}
	t.Dependencies = []string{}
	return nil
}

// Create inserts a task and its dependencies
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	return r.db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, project_id, name, description, assignee_id, start_date, end_date,
				progress, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ProjectID, t.Name, t.Description, t.AssigneeID, t.StartDate, t.EndDate,
			t.Progress, t.Status, t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return mapError("failed to create task", err)
		}
		return writeDependencies(ctx, tx, t.ID, t.Dependencies)
	})
}

func writeDependencies(ctx context.Context, tx *Tx, taskID string, deps []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("failed to clear dependencies: %w", err)
	}
	for _, dep := range deps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_dependencies (task_id, depends_on) VALUES (?, ?)`, taskID, dep,
		); err != nil {
			return mapError("failed to add dependency", err)
		}
	}
	return nil
}

// Get retrieves a task by ID
func (r *TaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if err := r.loadDependencies(ctx, []*task.Task{&t}); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByProject returns a project's tasks ordered by start date.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]task.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY start_date, name, id`, projectID)
}

// ListByAssignee returns the tasks assigned to personID across projects.
func (r *TaskRepository) ListByAssignee(ctx context.Context, personID string) ([]task.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assignee_id = ? ORDER BY start_date, name, id`, personID)
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]task.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	tasks := []task.Task{}
	for rows.Next() {
		var t task.Task
		if err := scanTask(rows, &t); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	ptrs := make([]*task.Task, len(tasks))
	for i := range tasks {
		ptrs[i] = &tasks[i]
	}
	if err := r.loadDependencies(ctx, ptrs); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) loadDependencies(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[string]*task.Task, len(tasks))
	args := make([]any, len(tasks))
	for i, t := range tasks {
		byID[t.ID] = t
		args[i] = t.ID
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, depends_on FROM task_dependencies
		WHERE task_id IN (`+placeholders(len(args))+`)
		ORDER BY task_id, depends_on`, args...)
	if err != nil {
		return fmt.Errorf("failed to load dependencies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID, dep string
		if err := rows.Scan(&taskID, &dep); err != nil {
			return fmt.Errorf("failed to scan dependency: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			t.Dependencies = append(t.Dependencies, dep)
		}
	}
	return rows.Err()
}

// Update stores every editable field and replaces the dependency set
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	return r.db.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET name = ?, description = ?, assignee_id = ?, start_date = ?, end_date = ?,
				progress = ?, status = ?, updated_at = ?
			WHERE id = ?`,
			t.Name, t.Description, t.AssigneeID, t.StartDate, t.EndDate,
			t.Progress, t.Status, t.UpdatedAt, t.ID,
		)
		if err != nil {
			return mapError("failed to update task", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n == 0 {
			return repository.ErrNotFound
		}
		return writeDependencies(ctx, tx, t.ID, t.Dependencies)
	})
}

// UpdateProgress writes only progress and status
func (r *TaskRepository) UpdateProgress(ctx context.Context, id string, progress int, status task.Status, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET progress = ?, status = ?, updated_at = ? WHERE id = ?`,
		progress, status, updatedAt, id,
	)
	if err != nil {
		return mapError("failed to update progress", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a task. Dependency rows cascade.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return mapError("failed to delete task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
