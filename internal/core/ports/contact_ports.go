package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/contacts/api/internal/core/domain"
)

// ContactRepository is the ownership-scoped access layer for contacts.
// Lookups that miss return (nil, nil); absence is data, not an error.
// A contact owned by another user is indistinguishable from a missing one.
type ContactRepository interface {
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Contact, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error)
	Create(ctx context.Context, contact *domain.Contact) error
	// Update overwrites first_name, last_name, email, phone_number and
	// born_date of the row matching (contact.ID, contact.UserID).
	// Description and done are untouched.
	Update(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, done bool) (*domain.Contact, error)
	// Delete removes the row and returns its prior state.
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error)
	Search(ctx context.Context, ownerID uuid.UUID, query string) ([]*domain.Contact, error)
	// WithBirthdaysOn returns the owner's contacts whose born_date month-day
	// is one of the given "MM-DD" keys, year ignored.
	WithBirthdaysOn(ctx context.Context, ownerID uuid.UUID, monthDays []string) ([]*domain.Contact, error)
}

type ContactInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	BornDate    string // "2006-01-02"
	Description string
}

type ListContactsInput struct {
	Skip  int
	Limit int
}

type ContactService interface {
	List(ctx context.Context, ownerID uuid.UUID, input ListContactsInput) ([]*domain.Contact, error)
	Get(ctx context.Context, ownerID uuid.UUID, id string) (*domain.Contact, error)
	Create(ctx context.Context, ownerID uuid.UUID, input ContactInput) (*domain.Contact, error)
	Update(ctx context.Context, ownerID uuid.UUID, id string, input ContactInput) (*domain.Contact, error)
	UpdateStatus(ctx context.Context, ownerID uuid.UUID, id string, done bool) (*domain.Contact, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id string) (*domain.Contact, error)
	Search(ctx context.Context, ownerID uuid.UUID, query string) ([]*domain.Contact, error)
	UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID) ([]*domain.Contact, error)
}
