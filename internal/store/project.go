package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/repository"
	"github.com/rpggio/gantry/internal/timeline"
)

// ProjectRepository implements project.Repository
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `p.id, p.name, p.description, p.owner_id, p.start_date, p.end_date, p.created_at, p.updated_at`

func scanProject(row rowScanner, p *project.Project) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID,
		&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
}

// Create inserts a new project together with the owner's membership
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	return r.db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, description, owner_id, start_date, end_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			proj.ID, proj.Name, proj.Description, proj.OwnerID,
			proj.StartDate, proj.EndDate, proj.CreatedAt, proj.UpdatedAt,
		)
		if err != nil {
			return mapError("failed to create project", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_members (project_id, person_id, joined_at) VALUES (?, ?, ?)`,
			proj.ID, proj.OwnerID, proj.CreatedAt,
		)
		return mapError("failed to add owner membership", err)
	})
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	var p project.Project
	err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// ListVisible returns the projects actorID owns or belongs to, with counts.
func (r *ProjectRepository) ListVisible(ctx context.Context, actorID string) ([]project.Summary, error) {
	query := `
		SELECT ` + projectColumns + `,
			(SELECT COUNT(*) FROM project_members m WHERE m.project_id = p.id),
			(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id),
			(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.status = 'completed')
		FROM projects p
		WHERE p.owner_id = ?
		   OR p.id IN (SELECT project_id FROM project_members WHERE person_id = ?)
		ORDER BY p.created_at DESC, p.id
	`
	rows, err := r.db.QueryContext(ctx, query, actorID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	summaries := []project.Summary{}
	for rows.Next() {
		var s project.Summary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.OwnerID,
			&s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt,
			&s.MemberCount, &s.TaskCount, &s.CompletedTasks,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		s.Progress = project.CompletionPercent(s.CompletedTasks, s.TaskCount)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return summaries, nil
}

// ListOwned returns the projects owned by ownerID, oldest first.
func (r *ProjectRepository) ListOwned(ctx context.Context, ownerID string) ([]project.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.owner_id = ? ORDER BY p.created_at, p.id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		var p project.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// Update stores name, description and dates. With clampTasks set, tasks
// falling outside the new range are pulled inside it.
func (r *ProjectRepository) Update(ctx context.Context, proj *project.Project, clampTasks bool) error {
	return r.db.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE projects
			SET name = ?, description = ?, start_date = ?, end_date = ?, updated_at = ?
			WHERE id = ?`,
			proj.Name, proj.Description, proj.StartDate, proj.EndDate, proj.UpdatedAt, proj.ID,
		)
		if err != nil {
			return mapError("failed to update project", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n == 0 {
			return repository.ErrNotFound
		}
		if !clampTasks {
			return nil
		}
		return clampProjectTasks(ctx, tx, proj.ID, proj.Range(), proj.UpdatedAt)
	})
}

func clampProjectTasks(ctx context.Context, tx *Tx, projectID string, bounds timeline.DateRange, now time.Time) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, start_date, end_date FROM tasks
		WHERE project_id = ? AND (start_date < ? OR end_date > ?)`,
		projectID, bounds.Start, bounds.End)
	if err != nil {
		return fmt.Errorf("failed to find tasks to clamp: %w", err)
	}
	type clamp struct {
		id string
		r  timeline.DateRange
	}
	var pending []clamp
	for rows.Next() {
		var c clamp
		if err := rows.Scan(&c.id, &c.r.Start, &c.r.End); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan task: %w", err)
		}
		c.r = c.r.ClampTo(bounds)
		pending = append(pending, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating task rows: %w", err)
	}

	for _, c := range pending {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
			c.r.Start, c.r.End, now, c.id,
		); err != nil {
			return mapError("failed to clamp task", err)
		}
	}
	return nil
}

// Delete removes a project. Memberships and tasks cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return mapError("failed to delete project", err)
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

// CountTasksOutside counts the project's tasks not contained in rng.
func (r *ProjectRepository) CountTasksOutside(ctx context.Context, projectID string, rng timeline.DateRange) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tasks
		WHERE project_id = ? AND (start_date < ? OR end_date > ?)`,
		projectID, rng.Start, rng.End,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// IsMember reports whether personID belongs to the project.
func (r *ProjectRepository) IsMember(ctx context.Context, projectID, personID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM project_members WHERE project_id = ? AND person_id = ?`,
		projectID, personID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// ListMembers returns the project's members, owner first and then by name.
func (r *ProjectRepository) ListMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	query := `
		SELECT m.project_id, m.joined_at, CASE WHEN pr.owner_id = m.person_id THEN 1 ELSE 0 END,
			pe.id, pe.email, pe.full_name, pe.created_at, pe.updated_at
		FROM project_members m
		JOIN projects pr ON pr.id = m.project_id
		JOIN persons pe ON pe.id = m.person_id
		WHERE m.project_id = ?
		ORDER BY CASE WHEN pr.owner_id = m.person_id THEN 0 ELSE 1 END,
			LOWER(COALESCE(NULLIF(TRIM(pe.full_name), ''), pe.email)), pe.email
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []project.Member{}
	for rows.Next() {
		var (
			m        project.Member
			owner    int
			fullName sql.NullString
		)
		if err := rows.Scan(&m.ProjectID, &m.JoinedAt, &owner,
			&m.Person.ID, &m.Person.Email, &fullName, &m.Person.CreatedAt, &m.Person.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.IsOwner = owner == 1
		if fullName.Valid {
			m.Person.FullName = &fullName.String
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

// AddMember inserts a membership. An existing membership is ErrConflict.
func (r *ProjectRepository) AddMember(ctx context.Context, projectID, personID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, person_id, joined_at) VALUES (?, ?, ?)`,
		projectID, personID, time.Now().UTC(),
	)
	return mapError("failed to add member", err)
}

// RemoveMember deletes the membership and unassigns the person's tasks in
// the project.
func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, personID string) error {
	return r.db.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM project_members WHERE project_id = ? AND person_id = ?`, projectID, personID)
		if err != nil {
			return mapError("failed to remove member", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE tasks SET assignee_id = NULL, updated_at = ? WHERE project_id = ? AND assignee_id = ?`,
			time.Now().UTC(), projectID, personID)
		return mapError("failed to unassign tasks", err)
	})
}
