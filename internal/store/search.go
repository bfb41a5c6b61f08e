package store

import (
	"context"
	"strings"

	"github.com/rpggio/gantry/internal/domain/person"
)

const personMatch = `(LOWER(COALESCE(full_name, '')) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`

// Search matches people whose name or email contains query, ignoring case.
// An empty query matches everyone.
func (r *PersonRepository) Search(ctx context.Context, query string, limit int) ([]person.Person, error) {
	pattern := likePattern(query)
	return r.search(ctx, `WHERE `+personMatch, []any{pattern, pattern}, limit)
}

// SearchTeammates is Search restricted to people who share a project with
// actorID, the actor included.
func (r *PersonRepository) SearchTeammates(ctx context.Context, actorID, query string, limit int) ([]person.Person, error) {
	pattern := likePattern(query)
	where := `
		WHERE id IN (
			SELECT theirs.person_id
			FROM project_members mine
			JOIN project_members theirs ON theirs.project_id = mine.project_id
			WHERE mine.person_id = ?
		)
		AND ` + personMatch
	return r.search(ctx, where, []any{actorID, pattern, pattern}, limit)
}

func (r *PersonRepository) search(ctx context.Context, where string, args []any, limit int) ([]person.Person, error) {
	sqlQuery := `SELECT ` + personColumns + ` FROM persons ` + where + ` ORDER BY ` + displayOrder
	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}
	return r.query(ctx, sqlQuery, args...)
}

func likePattern(query string) string {
	return "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
