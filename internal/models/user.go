package models

import "time"

// User represents an authenticated learner session principal
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Token     string     `json:"-"` // Never serialize
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
}
