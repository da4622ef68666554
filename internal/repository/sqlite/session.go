package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/model"
	"github.com/mkamau/blogapi/internal/repository"
)

var _ repository.SessionRepository = (*DB)(nil)

// CreateSession inserts a session row. The caller supplies the opaque ID
// (a uuid) and expiry; a user may hold several live sessions at once.
func (db *DB) CreateSession(ctx context.Context, session *model.Session) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, revoked or not — the caller decides
// whether it is still usable via Session.Active.
func (db *DB) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	var revoked sql.NullTime

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at, revoked_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &revoked)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}
	if revoked.Valid {
		s.RevokedAt = &revoked.Time
	}
	return &s, nil
}

// RevokeSession marks a session unusable. Revoking an already-revoked or
// unknown session is not an error — logout is idempotent.
func (db *DB) RevokeSession(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND revoked_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: revoking session %s: %w", id, err)
	}
	return nil
}
