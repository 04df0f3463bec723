package models

import "time"

// User is a registered account.
type User struct {
	ID         string    `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"`
	Avatar     string    `db:"avatar" json:"avatar"`
	CreateTime time.Time `db:"create_time" json:"createTime"`
}

// Public returns the identity snapshot embedded in messages.
func (u User) Public() Sender {
	return Sender{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
