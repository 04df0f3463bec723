package models

import "time"

// Group represents a chat group.
type Group struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Avatar     string    `db:"avatar" json:"avatar"`
	Creator    string    `db:"creator" json:"creator"`
	CreateTime time.Time `db:"create_time" json:"createTime"`
}

// CreateGroupRequest is the payload of the createGroup event.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// GroupSummary is returned to the creator of a freshly created group.
type GroupSummary struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Avatar     string           `json:"avatar"`
	CreateTime time.Time        `json:"createTime"`
	Messages   []MessagePayload `json:"messages"`
}

// ChangeGroupAvatarRequest is the payload of the changeGroupAvatar event.
type ChangeGroupAvatarRequest struct {
	GroupID string `json:"groupId"`
	Avatar  string `json:"avatar"`
}

// GetGroupOnlineMembersRequest is the payload of the getGroupOnlineMembers event.
type GetGroupOnlineMembersRequest struct {
	GroupID string `json:"groupId"`
}

// GetGroupMessagesRequest is the payload of the getGroupMessages event.
type GetGroupMessagesRequest struct {
	GroupID string `json:"groupId"`
}

// OnlineMember is one distinct group member with at least one live session.
type OnlineMember struct {
	User        Sender `json:"user"`
	OS          string `json:"os"`
	Browser     string `json:"browser"`
	Environment string `json:"environment"`
}
