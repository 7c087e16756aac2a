package sqlite

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/plantree/internal/repository"
)

const tokenPrefix = "pt_"

// APIKeyRepository issues bearer tokens and resolves them to user IDs.
// Only the sha256 of a token is stored.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Issue creates a random token for userID and returns it in clear text.
func (r *APIKeyRepository) Issue(ctx context.Context, userID, description string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := tokenPrefix + hex.EncodeToString(buf)
	if err := r.Register(ctx, userID, token, description); err != nil {
		return "", err
	}
	return token, nil
}

// Register stores a caller-chosen token for userID.
func (r *APIKeyRepository) Register(ctx context.Context, userID, token, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, user_id, description, created_at) VALUES (?, ?, ?, ?)`,
		HashToken(token), userID, description, time.Now().UTC())
	if err != nil {
		return writeError("register api key", err)
	}
	return nil
}

// ResolveUser returns the user owning token and records its use.
func (r *APIKeyRepository) ResolveUser(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)
	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}
	_, _ = r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash)
	return userID, nil
}

// HashToken returns the stored form of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
