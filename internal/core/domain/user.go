package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
	Avatar    *string   `json:"avatar,omitempty"`
	// RefreshToken holds the sha256 digest of the current session's refresh
	// credential, or nil when the user has no active session.
	RefreshToken *string `json:"-"`
	Confirmed    bool    `json:"confirmed"`
}
