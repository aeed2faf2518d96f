package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

// IdentityRepository implements persistence.IdentityRepository using SQLite.
type IdentityRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewIdentityRepository creates a SQLite identity repository.
func NewIdentityRepository(pool *ConnectionPool, now func() time.Time) *IdentityRepository {
	if now == nil {
		now = time.Now
	}
	return &IdentityRepository{pool: pool, now: now}
}

// CreateIdentity inserts a new identity row.
func (r *IdentityRepository) CreateIdentity(ctx context.Context, identity persistence.Identity) error {
	if identity.ID == "" {
		return fmt.Errorf("sqlite: identity id is required")
	}

	now := r.now().UTC()
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, display_name, timezone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		identity.ID,
		strings.ToLower(strings.TrimSpace(identity.Email)),
		identity.DisplayName,
		nullString(identity.Timezone),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	return mapError(err)
}

// GetIdentity retrieves an identity by id.
func (r *IdentityRepository) GetIdentity(ctx context.Context, id string) (persistence.Identity, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, timezone, created_at, updated_at
		FROM identities WHERE id = ?`, id)
	return scanIdentity(row)
}

// GetIdentityByEmail retrieves an identity by its (case-insensitive) email.
func (r *IdentityRepository) GetIdentityByEmail(ctx context.Context, email string) (persistence.Identity, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, timezone, created_at, updated_at
		FROM identities WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	return scanIdentity(row)
}

// CreateInstructorProfile inserts a secondary instructor record.
func (r *IdentityRepository) CreateInstructorProfile(ctx context.Context, profile persistence.InstructorProfile) error {
	if profile.ID == "" {
		return fmt.Errorf("sqlite: instructor profile id is required")
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO instructor_profiles (id, identity_id, email, display_name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		profile.ID,
		profile.IdentityID,
		strings.ToLower(strings.TrimSpace(profile.Email)),
		profile.DisplayName,
		r.now().UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetInstructorProfile looks up the secondary instructor record by identity id.
func (r *IdentityRepository) GetInstructorProfile(ctx context.Context, identityID string) (persistence.InstructorProfile, error) {
	var (
		profile   persistence.InstructorProfile
		createdAt string
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, identity_id, email, display_name, created_at
		FROM instructor_profiles WHERE identity_id = ?`, identityID).Scan(
		&profile.ID,
		&profile.IdentityID,
		&profile.Email,
		&profile.DisplayName,
		&createdAt,
	)
	if err != nil {
		return persistence.InstructorProfile{}, mapError(err)
	}
	if profile.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.InstructorProfile{}, fmt.Errorf("sqlite: parse profile created_at: %w", err)
	}
	return profile, nil
}

func scanIdentity(row rowScanner) (persistence.Identity, error) {
	var (
		identity  persistence.Identity
		timezone  sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.DisplayName,
		&timezone,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Identity{}, mapError(err)
	}

	identity.Timezone = stringPtr(timezone)
	if identity.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Identity{}, fmt.Errorf("sqlite: parse identity created_at: %w", err)
	}
	if identity.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Identity{}, fmt.Errorf("sqlite: parse identity updated_at: %w", err)
	}
	return identity, nil
}
