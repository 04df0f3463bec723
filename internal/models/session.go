package models

import "time"

// Session is one live realtime connection of a signed-in user. Sessions are
// ephemeral: created on connect, deleted on disconnect.
type Session struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user"`
	OS          string    `db:"os" json:"os"`
	Browser     string    `db:"browser" json:"browser"`
	Environment string    `db:"environment" json:"environment"`
	ConnectedAt time.Time `db:"connected_at" json:"connectedAt"`
}

// UploadTokenResponse is the payload of a successful uploadToken call.
type UploadTokenResponse struct {
	Token     string `json:"token"`
	URLPrefix string `json:"urlPrefix"`
}
