package models

import (
	"time"

	id "unique/pkg/domain"
)

// DefaultSessionTTL is how long a login session lasts when not configured.
const DefaultSessionTTL = time.Hour

// Session is an authenticated browser session opened by POST /authentication.
type Session struct {
	ID        id.SessionID `json:"id"`
	UserID    id.UserID    `json:"user_id"`
	IP        string       `json:"ip"`
	UserAgent string       `json:"user_agent"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	IsEnable  bool         `json:"is_enable"`
}

// IsActive reports whether the session can authenticate a request at now.
func (s *Session) IsActive(now time.Time) bool {
	return s.IsEnable && now.Before(s.ExpiresAt)
}
