package models

import "time"

// MessageType classifies the semantic payload of a message.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeURL   MessageType = "url"
	TypeImage MessageType = "image"
	TypeCode  MessageType = "code"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case TypeText, TypeURL, TypeImage, TypeCode:
		return true
	}
	return false
}

// MessageState tracks a client-side message record through its lifecycle.
// Confirmed and Failed are terminal.
type MessageState string

const (
	StatePending   MessageState = "pending"
	StateUploading MessageState = "uploading"
	StateConfirmed MessageState = "confirmed"
	StateFailed    MessageState = "failed"
)

// Sender is the denormalized public identity of the authoring user.
type Sender struct {
	ID       string `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Avatar   string `db:"avatar" json:"avatar"`
}

// Message is one chat message as the client sees it. A record starts out
// identified only by LocalID; ServerID is filled in on confirmation.
type Message struct {
	LocalID    string       `json:"localId,omitempty"`
	ServerID   string       `json:"id,omitempty"`
	GroupID    string       `json:"groupId"`
	Type       MessageType  `json:"type"`
	Content    string       `json:"content"`
	From       Sender       `json:"from"`
	CreateTime time.Time    `json:"createTime"`
	State      MessageState `json:"state,omitempty"`
	Percent    int          `json:"percent,omitempty"`
}

// StoredMessage is the persisted server-side record.
type StoredMessage struct {
	ID         string      `db:"id" json:"id"`
	FromUser   string      `db:"from_user" json:"from"`
	ToGroup    string      `db:"to_group" json:"toGroup"`
	Type       MessageType `db:"type" json:"type"`
	Content    string      `db:"content" json:"content"`
	CreateTime time.Time   `db:"create_time" json:"createTime"`
}

// SendMessageRequest is the client payload of the sendMessage event.
type SendMessageRequest struct {
	ToGroup string      `json:"toGroup"`
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
}

// MessagePayload is both the sendMessage ack payload and the body of the
// "message" event pushed to the other group members.
type MessagePayload struct {
	ID         string      `json:"id"`
	From       Sender      `json:"from"`
	ToGroup    string      `json:"toGroup"`
	Type       MessageType `json:"type"`
	Content    string      `json:"content"`
	CreateTime time.Time   `json:"createTime"`
}
