package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flyasher/fiora/internal/models"
)

// GroupRepository defines interactions for groups and their membership.
type GroupRepository interface {
	GetGroup(ctx context.Context, groupID string) (models.Group, error)
	CreateGroup(ctx context.Context, creatorID, name string) (models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)
	UpdateGroupAvatar(ctx context.Context, groupID, avatar string) error
}

// GroupRepo is a sqlx-backed implementation.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// GetGroup fetches a single group.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT id, name, avatar, creator, create_time FROM groups WHERE id=$1`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// CreateGroup persists a group with the creator as its sole member. The group
// name is unique; a clash reports ErrGroupExists.
func (r *GroupRepo) CreateGroup(ctx context.Context, creatorID, name string) (models.Group, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM groups WHERE name=$1)`, name); err != nil {
		return models.Group{}, err
	}
	if exists {
		return models.Group{}, ErrGroupExists
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Group{}, err
	}
	defer tx.Rollback()

	var group models.Group
	err = tx.QueryRowxContext(ctx, `INSERT INTO groups (id, name, creator) VALUES ($1, $2, $3) RETURNING id, name, avatar, creator, create_time`, uuid.NewString(), name, creatorID).
		Scan(&group.ID, &group.Name, &group.Avatar, &group.Creator, &group.CreateTime)
	if err != nil {
		return models.Group{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`, group.ID, creatorID); err != nil {
		return models.Group{}, err
	}
	return group, tx.Commit()
}

// ListGroupsForUser returns the groups the user is a member of.
func (r *GroupRepo) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.SelectContext(ctx, &groups, `SELECT g.id, g.name, g.avatar, g.creator, g.create_time FROM groups g JOIN group_members gm ON gm.group_id = g.id WHERE gm.user_id=$1 ORDER BY g.create_time ASC`, userID)
	return groups, err
}

// UpdateGroupAvatar replaces the group avatar.
func (r *GroupRepo) UpdateGroupAvatar(ctx context.Context, groupID, avatar string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE groups SET avatar=$1 WHERE id=$2`, avatar, groupID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrGroupNotFound
	}
	return nil
}
