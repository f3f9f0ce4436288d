package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a single address-book entry. Every contact belongs to exactly
// one user; all queries against contacts are scoped by UserID.
type Contact struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	BornDate    time.Time `json:"born_date"`
	Description string    `json:"description,omitempty"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      uuid.UUID `json:"user_id"`
}
