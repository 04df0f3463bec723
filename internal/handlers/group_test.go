package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flyasher/fiora/internal/mocks"
	"github.com/flyasher/fiora/internal/models"
	"github.com/flyasher/fiora/internal/repositories"
)

func newGroupHandler(groupRepo *mocks.GroupRepositoryMock, messageRepo *mocks.MessageRepositoryMock, sessionRepo *mocks.SessionRepositoryMock, registry *mocks.RoomRegistryMock) *GroupHandler {
	return NewGroupHandler(groupRepo, messageRepo, sessionRepo, registry, nil)
}

func TestCreateGroupJoinsCreator(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	registry := new(mocks.RoomRegistryMock)
	handler := newGroupHandler(groupRepo, new(mocks.MessageRepositoryMock), new(mocks.SessionRepositoryMock), registry)

	conn := testConn("u1")
	groupRepo.On("CreateGroup", mock.Anything, "u1", "gophers").
		Return(models.Group{ID: "g9", Name: "gophers", Creator: "u1"}, nil).Once()
	registry.On("Join", conn, "g9").Return().Once()

	result, err := handler.CreateGroup(context.Background(), conn, json.RawMessage(`{"name":"gophers"}`))
	require.NoError(t, err)

	summary, ok := result.(models.GroupSummary)
	require.True(t, ok)
	assert.Equal(t, "g9", summary.ID)
	assert.Equal(t, "gophers", summary.Name)
	assert.NotNil(t, summary.Messages)
	assert.Empty(t, summary.Messages)

	groupRepo.AssertExpectations(t)
	registry.AssertExpectations(t)
}

func TestCreateGroupRequiresName(t *testing.T) {
	handler := newGroupHandler(new(mocks.GroupRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.SessionRepositoryMock), new(mocks.RoomRegistryMock))

	_, err := handler.CreateGroup(context.Background(), testConn("u1"), json.RawMessage(`{}`))
	assertCallError(t, err, "group name is required")
}

func TestCreateGroupRejectsLongName(t *testing.T) {
	handler := newGroupHandler(new(mocks.GroupRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.SessionRepositoryMock), new(mocks.RoomRegistryMock))

	raw, err := json.Marshal(models.CreateGroupRequest{Name: strings.Repeat("g", maxGroupNameLength+1)})
	require.NoError(t, err)

	_, err = handler.CreateGroup(context.Background(), testConn("u1"), raw)
	assertCallError(t, err, "group name exceeds length limit")
}

func TestCreateGroupRejectsDuplicate(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := newGroupHandler(groupRepo, new(mocks.MessageRepositoryMock), new(mocks.SessionRepositoryMock), new(mocks.RoomRegistryMock))

	groupRepo.On("CreateGroup", mock.Anything, "u1", "gophers").
		Return(models.Group{}, repositories.ErrGroupExists).Once()

	_, err := handler.CreateGroup(context.Background(), testConn("u1"), json.RawMessage(`{"name":"gophers"}`))
	assertCallError(t, err, "group already exists")
}

func TestGetGroupOnlineMembers(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	sessionRepo := new(mocks.SessionRepositoryMock)
	handler := newGroupHandler(groupRepo, new(mocks.MessageRepositoryMock), sessionRepo, new(mocks.RoomRegistryMock))

	groupRepo.On("GetGroup", mock.Anything, "g1").Return(models.Group{ID: "g1"}, nil).Once()
	sessionRepo.On("ListGroupOnlineMembers", mock.Anything, "g1").Return([]models.OnlineMember{
		{User: models.Sender{ID: "u2", Username: "bob"}, OS: "Linux", Browser: "Firefox", Environment: "web"},
	}, nil).Once()

	result, err := handler.GetGroupOnlineMembers(context.Background(), testConn("u1"), json.RawMessage(`{"groupId":"g1"}`))
	require.NoError(t, err)

	members, ok := result.([]models.OnlineMember)
	require.True(t, ok)
	require.Len(t, members, 1)
	assert.Equal(t, "bob", members[0].User.Username)
}

func TestGetGroupOnlineMembersUnknownGroup(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := newGroupHandler(groupRepo, new(mocks.MessageRepositoryMock), new(mocks.SessionRepositoryMock), new(mocks.RoomRegistryMock))

	groupRepo.On("GetGroup", mock.Anything, "ghost").Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	_, err := handler.GetGroupOnlineMembers(context.Background(), testConn("u1"), json.RawMessage(`{"groupId":"ghost"}`))
	assertCallError(t, err, "group does not exist")
}

func TestChangeGroupAvatar(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := newGroupHandler(groupRepo, new(mocks.MessageRepositoryMock), new(mocks.SessionRepositoryMock), new(mocks.RoomRegistryMock))

	groupRepo.On("UpdateGroupAvatar", mock.Anything, "g1", "https://cdn/a.png").Return(nil).Once()

	result, err := handler.ChangeGroupAvatar(context.Background(), testConn("u1"), json.RawMessage(`{"groupId":"g1","avatar":"https://cdn/a.png"}`))
	require.NoError(t, err)
	assert.Equal(t, struct{}{}, result)
}

func TestChangeGroupAvatarRequiresAvatar(t *testing.T) {
	handler := newGroupHandler(new(mocks.GroupRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.SessionRepositoryMock), new(mocks.RoomRegistryMock))

	_, err := handler.ChangeGroupAvatar(context.Background(), testConn("u1"), json.RawMessage(`{"groupId":"g1"}`))
	assertCallError(t, err, "avatar url is required")
}

func TestGetGroupMessages(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := newGroupHandler(groupRepo, messageRepo, new(mocks.SessionRepositoryMock), new(mocks.RoomRegistryMock))

	groupRepo.On("GetGroup", mock.Anything, "g1").Return(models.Group{ID: "g1"}, nil).Once()
	messageRepo.On("ListGroupMessages", mock.Anything, "g1", historyLimit).Return([]models.MessagePayload{
		{ID: "m1", ToGroup: "g1", Type: models.TypeText, Content: "hi"},
	}, nil).Once()

	result, err := handler.GetGroupMessages(context.Background(), testConn("u1"), json.RawMessage(`{"groupId":"g1"}`))
	require.NoError(t, err)

	msgs, ok := result.([]models.MessagePayload)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}
