package models

import "time"

// LoginLog is one dashboard sign-in attempt, successful or not. Failed
// attempts carry the submitted email and a zero UserID.
type LoginLog struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	Email     string    `json:"email"`
	Success   bool      `json:"success"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
