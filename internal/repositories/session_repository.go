package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/flyasher/fiora/internal/models"
)

// SessionRepository tracks live realtime connections.
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
	ListGroupOnlineMembers(ctx context.Context, groupID string) ([]models.OnlineMember, error)
}

// SessionRepo is a sqlx-backed implementation.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs a SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// CreateSession records a connection.
func (r *SessionRepo) CreateSession(ctx context.Context, session models.Session) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO sessions (id, user_id, os, browser, environment) VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UserID, session.OS, session.Browser, session.Environment)
	return err
}

// DeleteSession removes a connection record.
func (r *SessionRepo) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, sessionID)
	return err
}

// ListGroupOnlineMembers returns the group members that currently hold at
// least one session, one entry per user.
func (r *SessionRepo) ListGroupOnlineMembers(ctx context.Context, groupID string) ([]models.OnlineMember, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT DISTINCT ON (u.id) u.id, u.username, u.avatar, s.os, s.browser, s.environment
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		JOIN group_members gm ON gm.user_id = u.id
		WHERE gm.group_id=$1
		ORDER BY u.id, s.connected_at DESC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.OnlineMember
	for rows.Next() {
		var m models.OnlineMember
		if err := rows.Scan(&m.User.ID, &m.User.Username, &m.User.Avatar, &m.OS, &m.Browser, &m.Environment); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
