package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

// TokenRepository implements persistence.ProviderTokenRepository using SQLite.
// The table holds a single row; concurrent refreshes race benignly and the
// last writer wins.
type TokenRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewTokenRepository creates a SQLite provider-token repository.
func NewTokenRepository(pool *ConnectionPool, now func() time.Time) *TokenRepository {
	if now == nil {
		now = time.Now
	}
	return &TokenRepository{pool: pool, now: now}
}

// GetProviderToken returns the cached token row or persistence.ErrNotFound.
func (r *TokenRepository) GetProviderToken(ctx context.Context) (persistence.ProviderToken, error) {
	var (
		token     persistence.ProviderToken
		expiresAt string
		updatedAt string
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT access_token, api_base_url, expires_at, updated_at
		FROM provider_token WHERE singleton = 1`).Scan(
		&token.AccessToken,
		&token.APIBaseURL,
		&expiresAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.ProviderToken{}, mapError(err)
	}
	if token.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return persistence.ProviderToken{}, fmt.Errorf("sqlite: parse token expires_at: %w", err)
	}
	if token.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.ProviderToken{}, fmt.Errorf("sqlite: parse token updated_at: %w", err)
	}
	return token, nil
}

// UpsertProviderToken replaces the cached token row.
func (r *TokenRepository) UpsertProviderToken(ctx context.Context, token persistence.ProviderToken) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO provider_token (singleton, access_token, api_base_url, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET
			access_token = excluded.access_token,
			api_base_url = excluded.api_base_url,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		token.AccessToken,
		token.APIBaseURL,
		token.ExpiresAt.UTC().Format(time.RFC3339),
		r.now().UTC().Format(time.RFC3339),
	)
	return mapError(err)
}
