package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/gantry/internal/repository"
)

// ErrInvalidToken is returned when a bearer token matches no API key.
var ErrInvalidToken = errors.New("unauthorized: invalid token")

// APIKeyRepository issues API keys and resolves bearer tokens to people.
// Only the SHA-256 of a key is stored.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create issues a new key for personID and returns the plaintext token.
func (r *APIKeyRepository) Create(ctx context.Context, personID, description string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	token := "gnt_" + hex.EncodeToString(buf)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, person_id, description, created_at) VALUES (?, ?, ?, ?)`,
		HashToken(token), personID, description, time.Now().UTC(),
	)
	if err != nil {
		return "", mapError("failed to store api key", err)
	}
	return token, nil
}

// ResolveActor returns the person a token belongs to and records its use.
func (r *APIKeyRepository) ResolveActor(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)
	var personID string
	err := r.db.QueryRowContext(ctx, `SELECT person_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&personID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && personID == "") {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash,
	); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return personID, nil
}

// Revoke deletes every key of personID.
func (r *APIKeyRepository) Revoke(ctx context.Context, personID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE person_id = ?`, personID)
	if err != nil {
		return fmt.Errorf("failed to revoke api keys: %w", err)
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

// HashToken returns the hex SHA-256 of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
