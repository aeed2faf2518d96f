package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

// CatalogRepository implements persistence.ClassTypeRepository using SQLite.
type CatalogRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewCatalogRepository creates a SQLite class-type catalog repository.
func NewCatalogRepository(pool *ConnectionPool, now func() time.Time) *CatalogRepository {
	if now == nil {
		now = time.Now
	}
	return &CatalogRepository{pool: pool, now: now}
}

// CreateClassType inserts a catalog entry.
func (r *CatalogRepository) CreateClassType(ctx context.Context, classType persistence.ClassType) error {
	if classType.ID == "" {
		return fmt.Errorf("sqlite: class type id is required")
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO class_types (id, label, created_at)
		VALUES (?, ?, ?)`,
		classType.ID,
		classType.Label,
		r.now().UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetClassType retrieves a catalog entry by id.
func (r *CatalogRepository) GetClassType(ctx context.Context, id string) (persistence.ClassType, error) {
	var (
		classType persistence.ClassType
		createdAt string
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, label, created_at FROM class_types WHERE id = ?`, id).Scan(
		&classType.ID,
		&classType.Label,
		&createdAt,
	)
	if err != nil {
		return persistence.ClassType{}, mapError(err)
	}
	if classType.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.ClassType{}, fmt.Errorf("sqlite: parse class type created_at: %w", err)
	}
	return classType, nil
}
