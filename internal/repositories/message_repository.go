package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flyasher/fiora/internal/models"
)

// MessageRepository defines interactions for persisted messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, fromUser, toGroup string, msgType models.MessageType, content string) (models.StoredMessage, error)
	ListGroupMessages(ctx context.Context, groupID string, limit int) ([]models.MessagePayload, error)
}

// MessageRepo is a sqlx-backed implementation.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage persists a message. The database assigns the canonical create
// time; the id is generated here.
func (r *MessageRepo) CreateMessage(ctx context.Context, fromUser, toGroup string, msgType models.MessageType, content string) (models.StoredMessage, error) {
	var msg models.StoredMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (id, from_user, to_group, type, content) VALUES ($1, $2, $3, $4, $5) RETURNING id, from_user, to_group, type, content, create_time`, uuid.NewString(), fromUser, toGroup, msgType, content).
		Scan(&msg.ID, &msg.FromUser, &msg.ToGroup, &msg.Type, &msg.Content, &msg.CreateTime)
	return msg, err
}

// ListGroupMessages returns the most recent messages of a group in
// chronological order, with the sender identity denormalized per row.
func (r *MessageRepo) ListGroupMessages(ctx context.Context, groupID string, limit int) ([]models.MessagePayload, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT m.id, m.to_group, m.type, m.content, m.create_time, u.id, u.username, u.avatar
		FROM (SELECT * FROM messages WHERE to_group=$1 ORDER BY create_time DESC LIMIT $2) m
		JOIN users u ON u.id = m.from_user
		ORDER BY m.create_time ASC`, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.MessagePayload
	for rows.Next() {
		var msg models.MessagePayload
		if err := rows.Scan(&msg.ID, &msg.ToGroup, &msg.Type, &msg.Content, &msg.CreateTime, &msg.From.ID, &msg.From.Username, &msg.From.Avatar); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
