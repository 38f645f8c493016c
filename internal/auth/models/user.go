package models

import (
	"time"

	id "unique/pkg/domain"
)

// User is the resource owner. CustomID is the login name; PasswordHash is a
// bcrypt hash checked by the login endpoint.
type User struct {
	ID           id.UserID `json:"id"`
	CustomID     string    `json:"custom_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsEnable     bool      `json:"is_enable"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName falls back to the login name when no name is on file.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.CustomID
}
