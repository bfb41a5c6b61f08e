package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/repository"
)

// PersonRepository implements person.Repository
type PersonRepository struct {
	db *DB
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(db *DB) *PersonRepository {
	return &PersonRepository{db: db}
}

const personColumns = `id, email, full_name, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner, p *person.Person) error {
	var fullName sql.NullString
	if err := row.Scan(&p.ID, &p.Email, &fullName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	return nil
}

// Register inserts a new person and redeems the invites pending for their
// email in the same transaction. It returns the number of memberships created.
func (r *PersonRepository) Register(ctx context.Context, p *person.Person) (int, error) {
	joined := 0
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO persons (id, email, full_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Email, p.FullName, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return mapError("failed to create person", err)
		}
		joined, err = redeemInvites(ctx, tx, p.ID, p.Email)
		return err
	})
	if err != nil {
		return 0, err
	}
	return joined, nil
}

// Get retrieves a person by ID
func (r *PersonRepository) Get(ctx context.Context, id string) (*person.Person, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves a person by lower-cased email
func (r *PersonRepository) GetByEmail(ctx context.Context, email string) (*person.Person, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PersonRepository) getBy(ctx context.Context, column, value string) (*person.Person, error) {
	var p person.Person
	err := scanPerson(r.db.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE `+column+` = ?`, value), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &p, nil
}

// displayOrder sorts people by name, falling back to email.
const displayOrder = `LOWER(COALESCE(NULLIF(TRIM(full_name), ''), email)), email`

func (r *PersonRepository) query(ctx context.Context, query string, args ...any) ([]person.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	people := []person.Person{}
	for rows.Next() {
		var p person.Person
		if err := scanPerson(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating person rows: %w", err)
	}
	return people, nil
}

// CreateInvite records a pending invitation
func (r *PersonRepository) CreateInvite(ctx context.Context, inv *person.Invite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invites (email, invited_by, project_id, created_at) VALUES (?, ?, ?, ?)`,
		inv.Email, inv.InvitedBy, inv.ProjectID, inv.CreatedAt,
	)
	return mapError("failed to create invite", err)
}

// ListInvites returns pending invitations for an email
func (r *PersonRepository) ListInvites(ctx context.Context, email string) ([]person.Invite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT email, invited_by, project_id, created_at FROM invites WHERE email = ? ORDER BY created_at`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	invites := []person.Invite{}
	for rows.Next() {
		var inv person.Invite
		var projectID sql.NullString
		if err := rows.Scan(&inv.Email, &inv.InvitedBy, &projectID, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		if projectID.Valid {
			inv.ProjectID = &projectID.String
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

type pendingInvite struct {
	inviter   string
	projectID sql.NullString
}

// redeemInvites joins personID to the invited project, or to every project
// the inviter owns for a team-wide invite, then clears the invites.
func redeemInvites(ctx context.Context, tx *Tx, personID, email string) (int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT invited_by, project_id FROM invites WHERE email = ?`, email)
	if err != nil {
		return 0, fmt.Errorf("failed to read invites: %w", err)
	}
	var pending []pendingInvite
	for rows.Next() {
		var inv pendingInvite
		if err := rows.Scan(&inv.inviter, &inv.projectID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan invite: %w", err)
		}
		pending = append(pending, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating invites: %w", err)
	}

	joined := 0
	for _, inv := range pending {
		query := `
			INSERT INTO project_members (project_id, person_id)
			SELECT id, ? FROM projects WHERE owner_id = ?
			ON CONFLICT DO NOTHING`
		args := []any{personID, inv.inviter}
		if inv.projectID.Valid {
			query = `
				INSERT INTO project_members (project_id, person_id)
				SELECT id, ? FROM projects WHERE owner_id = ? AND id = ?
				ON CONFLICT DO NOTHING`
			args = append(args, inv.projectID.String)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, mapError("failed to redeem invite", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		joined += int(n)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM invites WHERE email = ?`, email); err != nil {
		return 0, fmt.Errorf("failed to clear invites: %w", err)
	}
	return joined, nil
}
