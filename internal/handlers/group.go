package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/flyasher/fiora/internal/models"
	"github.com/flyasher/fiora/internal/observability"
	"github.com/flyasher/fiora/internal/repositories"
	"github.com/flyasher/fiora/internal/telemetry"
	"github.com/flyasher/fiora/internal/transport"
)

const maxGroupNameLength = 24

const historyLimit = 30

// GroupHandler dispatches group administration events.
type GroupHandler struct {
	groupRepo   repositories.GroupRepository
	messageRepo repositories.MessageRepository
	sessionRepo repositories.SessionRepository
	hub         roomRegistry
	audit       *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groupRepo repositories.GroupRepository, messageRepo repositories.MessageRepository, sessionRepo repositories.SessionRepository, hub roomRegistry, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{
		groupRepo:   groupRepo,
		messageRepo: messageRepo,
		sessionRepo: sessionRepo,
		hub:         hub,
		audit:       audit,
	}
}

// CreateGroup creates a group with the caller as creator and sole member and
// joins the caller's connection to the new room.
func (h *GroupHandler) CreateGroup(ctx context.Context, conn *transport.Conn, data json.RawMessage) (any, error) {
	observability.IncWSEvent("createGroup")

	var req models.CreateGroupRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, transport.Errorf("invalid payload")
	}
	if req.Name == "" {
		return nil, transport.Errorf("group name is required")
	}
	if len(req.Name) > maxGroupNameLength {
		return nil, transport.Errorf("group name exceeds length limit")
	}

	group, err := h.groupRepo.CreateGroup(ctx, conn.UserID(), req.Name)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupExists) {
			return nil, transport.Errorf("group already exists")
		}
		return nil, err
	}

	h.hub.Join(conn, group.ID)
	h.audit.Emit(ctx, "INFO", "group created", conn.UserID())
	return models.GroupSummary{
		ID:         group.ID,
		Name:       group.Name,
		Avatar:     group.Avatar,
		CreateTime: group.CreateTime,
		Messages:   []models.MessagePayload{},
	}, nil
}

// GetGroupOnlineMembers returns the distinct group members that currently
// hold a live connection.
func (h *GroupHandler) GetGroupOnlineMembers(ctx context.Context, conn *transport.Conn, data json.RawMessage) (any, error) {
	observability.IncWSEvent("getGroupOnlineMembers")

	var req models.GetGroupOnlineMembersRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, transport.Errorf("invalid payload")
	}

	if _, err := h.groupRepo.GetGroup(ctx, req.GroupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, transport.Errorf("group does not exist")
		}
		return nil, err
	}

	members, err := h.sessionRepo.ListGroupOnlineMembers(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []models.OnlineMember{}
	}
	return members, nil
}

// ChangeGroupAvatar replaces the group avatar.
func (h *GroupHandler) ChangeGroupAvatar(ctx context.Context, conn *transport.Conn, data json.RawMessage) (any, error) {
	observability.IncWSEvent("changeGroupAvatar")

	var req models.ChangeGroupAvatarRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, transport.Errorf("invalid payload")
	}
	if req.Avatar == "" {
		return nil, transport.Errorf("avatar url is required")
	}

	if err := h.groupRepo.UpdateGroupAvatar(ctx, req.GroupID, req.Avatar); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, transport.Errorf("group does not exist")
		}
		return nil, err
	}

	h.audit.Emit(ctx, "INFO", "group avatar changed", conn.UserID())
	return struct{}{}, nil
}

// GetGroupMessages returns the recent message history of a group.
func (h *GroupHandler) GetGroupMessages(ctx context.Context, conn *transport.Conn, data json.RawMessage) (any, error) {
	observability.IncWSEvent("getGroupMessages")

	var req models.GetGroupMessagesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, transport.Errorf("invalid payload")
	}

	if _, err := h.groupRepo.GetGroup(ctx, req.GroupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, transport.Errorf("group does not exist")
		}
		return nil, err
	}

	msgs, err := h.messageRepo.ListGroupMessages(ctx, req.GroupID, historyLimit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.MessagePayload{}
	}
	return msgs, nil
}
