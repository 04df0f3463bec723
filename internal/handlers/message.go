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

// MessageEvent is the push event delivered to the other members of a group
// when a message is confirmed.
const MessageEvent = "message"

const maxContentLength = 2048

// roomRegistry is the slice of the hub the handlers need.
type roomRegistry interface {
	Join(conn *transport.Conn, groupID string)
	Broadcast(groupID string, exclude *transport.Conn, event string, payload any)
}

// MessageHandler dispatches inbound message sends.
type MessageHandler struct {
	groupRepo   repositories.GroupRepository
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	hub         roomRegistry
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(groupRepo repositories.GroupRepository, messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, hub roomRegistry, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{
		groupRepo:   groupRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		hub:         hub,
		audit:       audit,
	}
}

// SendMessage validates an inbound send, persists it, fans it out to the
// other members of the target group, and resolves the sender's request with
// the authoritative record. Persistence strictly precedes broadcast.
func (h *MessageHandler) SendMessage(ctx context.Context, conn *transport.Conn, data json.RawMessage) (any, error) {
	observability.IncWSEvent("sendMessage")

	var req models.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, transport.Errorf("invalid payload")
	}
	if req.ToGroup == "" {
		return nil, transport.Errorf("toGroup is required")
	}
	if !req.Type.Valid() {
		return nil, transport.Errorf("unsupported message type")
	}
	if req.Content == "" {
		return nil, transport.Errorf("content is required")
	}
	if len(req.Content) > maxContentLength {
		return nil, transport.Errorf("content exceeds length limit")
	}

	if _, err := h.groupRepo.GetGroup(ctx, req.ToGroup); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, transport.Errorf("group does not exist")
		}
		return nil, err
	}

	sender, err := h.userRepo.GetUser(ctx, conn.UserID())
	if err != nil {
		return nil, err
	}

	msg, err := h.messageRepo.CreateMessage(ctx, conn.UserID(), req.ToGroup, req.Type, req.Content)
	if err != nil {
		return nil, err
	}

	payload := models.MessagePayload{
		ID:         msg.ID,
		From:       sender.Public(),
		ToGroup:    msg.ToGroup,
		Type:       msg.Type,
		Content:    msg.Content,
		CreateTime: msg.CreateTime,
	}
	h.hub.Broadcast(req.ToGroup, conn, MessageEvent, payload)

	observability.IncMessage(string(req.Type))
	h.audit.Emit(ctx, "INFO", "message sent", conn.UserID())
	return payload, nil
}
