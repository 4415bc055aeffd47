package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthEvent represents a persisted auth lifecycle event.
type AuthEvent struct {
	ID         string
	EventType  string
	SessionID  string
	UserID     *string
	Provider   *string
	Payload    []byte
	OccurredAt time.Time
	CreatedAt  time.Time
}

// AuditRepository manages the auth event audit trail.
type AuditRepository interface {
	Create(ctx context.Context, event *AuthEvent) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]AuthEvent, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository constructs repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, event *AuthEvent) error {
	const query = `
        INSERT INTO auth_events (event_type, session_id, user_id, provider, payload, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		event.EventType,
		event.SessionID,
		event.UserID,
		event.Provider,
		event.Payload,
		event.OccurredAt,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *auditRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]AuthEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, event_type, session_id, user_id, provider, payload, occurred_at, created_at
        FROM auth_events WHERE session_id=$1
        ORDER BY occurred_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AuthEvent
	for rows.Next() {
		var event AuthEvent
		if err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.SessionID,
			&event.UserID,
			&event.Provider,
			&event.Payload,
			&event.OccurredAt,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
