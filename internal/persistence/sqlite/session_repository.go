package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewSessionRepository creates a SQLite session repository. A nil now falls
// back to time.Now.
func NewSessionRepository(pool *ConnectionPool, now func() time.Time) *SessionRepository {
	if now == nil {
		now = time.Now
	}
	return &SessionRepository{pool: pool, now: now}
}

const sessionColumns = `id, date, start_time, end_time, timezone, class_type_id, instructor_id,
	rate_id, rate_amount, meeting_id, meeting_join_url, meeting_host_url,
	meeting_access_code, meeting_created_at, created_at, updated_at`

// CreateSession inserts a new session row.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return fmt.Errorf("sqlite: session id is required")
	}

	now := r.now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	var meetingCreatedAt sql.NullString
	if session.MeetingCreatedAt != nil {
		meetingCreatedAt = sql.NullString{String: session.MeetingCreatedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.Date,
		session.StartTime,
		session.EndTime,
		session.Timezone,
		session.ClassTypeID,
		session.InstructorID,
		nullString(session.RateID),
		nullFloat(session.RateAmount),
		nullString(session.MeetingID),
		nullString(session.MeetingJoinURL),
		nullString(session.MeetingHostURL),
		nullString(session.MeetingAccessCode),
		meetingCreatedAt,
		session.CreatedAt.Format(time.RFC3339),
		session.UpdatedAt.Format(time.RFC3339),
	)
	return mapError(err)
}

// GetSession retrieves a session by id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// ListSessions returns sessions matching the filter ordered by date then id.
func (r *SessionRepository) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	args := make([]any, 0, 2)

	if filter.DateFrom != "" {
		query += ` AND date >= ?`
		args = append(args, filter.DateFrom)
	}
	if filter.DateUntil != "" {
		query += ` AND date <= ?`
		args = append(args, filter.DateUntil)
	}
	if filter.InstructorID != "" {
		query += ` AND instructor_id = ?`
		args = append(args, filter.InstructorID)
	}
	if filter.Unprovisioned {
		query += ` AND (meeting_id IS NULL OR meeting_id = '')`
	}
	query += ` ORDER BY date, id`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, mapError(rows.Err())
}

// SetMeetingResource writes provider metadata onto a session exactly once.
func (r *SessionRepository) SetMeetingResource(ctx context.Context, sessionID string, resource persistence.MeetingResource) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var existing sql.NullString
		err := tx.QueryRow(`SELECT meeting_id FROM sessions WHERE id = ?`, sessionID).Scan(&existing)
		if err != nil {
			return mapError(err)
		}
		if existing.Valid && existing.String != "" {
			return persistence.ErrAlreadyProvisioned
		}

		createdAt := resource.CreatedAt
		if createdAt.IsZero() {
			createdAt = r.now()
		}

		_, err = tx.Exec(`
			UPDATE sessions
			SET meeting_id = ?, meeting_join_url = ?, meeting_host_url = ?,
				meeting_access_code = ?, meeting_created_at = ?, updated_at = ?
			WHERE id = ?`,
			resource.MeetingID,
			resource.JoinURL,
			resource.HostURL,
			resource.AccessCode,
			createdAt.UTC().Format(time.RFC3339),
			r.now().UTC().Format(time.RFC3339),
			sessionID,
		)
		return mapError(err)
	})
}

// ClearMeetingResource resets the meeting fields. Administrative use only.
func (r *SessionRepository) ClearMeetingResource(ctx context.Context, sessionID string) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE sessions
		SET meeting_id = NULL, meeting_join_url = NULL, meeting_host_url = NULL,
			meeting_access_code = NULL, meeting_created_at = NULL, updated_at = ?
		WHERE id = ?`,
		r.now().UTC().Format(time.RFC3339),
		sessionID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var (
		session          persistence.Session
		rateID           sql.NullString
		rateAmount       sql.NullFloat64
		meetingID        sql.NullString
		joinURL          sql.NullString
		hostURL          sql.NullString
		accessCode       sql.NullString
		meetingCreatedAt sql.NullString
		createdAt        string
		updatedAt        string
	)

	err := row.Scan(
		&session.ID,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.Timezone,
		&session.ClassTypeID,
		&session.InstructorID,
		&rateID,
		&rateAmount,
		&meetingID,
		&joinURL,
		&hostURL,
		&accessCode,
		&meetingCreatedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	session.RateID = stringPtr(rateID)
	session.RateAmount = floatPtr(rateAmount)
	session.MeetingID = stringPtr(meetingID)
	session.MeetingJoinURL = stringPtr(joinURL)
	session.MeetingHostURL = stringPtr(hostURL)
	session.MeetingAccessCode = stringPtr(accessCode)

	if meetingCreatedAt.Valid {
		t, err := time.Parse(time.RFC3339, meetingCreatedAt.String)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("sqlite: parse meeting_created_at: %w", err)
		}
		session.MeetingCreatedAt = &t
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return session, nil
}
