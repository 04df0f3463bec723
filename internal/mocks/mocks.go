package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/flyasher/fiora/internal/models"
	"github.com/flyasher/fiora/internal/transport"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, creatorID, name string) (models.Group, error) {
	args := m.Called(ctx, creatorID, name)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	var groups []models.Group
	if val := args.Get(0); val != nil {
		groups = val.([]models.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepositoryMock) UpdateGroupAvatar(ctx context.Context, groupID, avatar string) error {
	args := m.Called(ctx, groupID, avatar)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, fromUser, toGroup string, msgType models.MessageType, content string) (models.StoredMessage, error) {
	args := m.Called(ctx, fromUser, toGroup, msgType, content)
	var msg models.StoredMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.StoredMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListGroupMessages(ctx context.Context, groupID string, limit int) ([]models.MessagePayload, error) {
	args := m.Called(ctx, groupID, limit)
	var msgs []models.MessagePayload
	if val := args.Get(0); val != nil {
		msgs = val.([]models.MessagePayload)
	}
	return msgs, args.Error(1)
}

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) CreateSession(ctx context.Context, session models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionRepositoryMock) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *SessionRepositoryMock) ListGroupOnlineMembers(ctx context.Context, groupID string) ([]models.OnlineMember, error) {
	args := m.Called(ctx, groupID)
	var members []models.OnlineMember
	if val := args.Get(0); val != nil {
		members = val.([]models.OnlineMember)
	}
	return members, args.Error(1)
}

type RoomRegistryMock struct {
	mock.Mock
}

func (m *RoomRegistryMock) Join(conn *transport.Conn, groupID string) {
	m.Called(conn, groupID)
}

func (m *RoomRegistryMock) Broadcast(groupID string, exclude *transport.Conn, event string, payload any) {
	m.Called(groupID, exclude, event, payload)
}
