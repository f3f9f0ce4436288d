package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/contacts/api/internal/core/domain"
	"github.com/contacts/api/internal/core/ports"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500

	// birthdayWindowDays is the reminder horizon: today plus the next
	// seven days, inclusive.
	birthdayWindowDays = 7
)

type contactService struct {
	repo ports.ContactRepository
}

func NewContactService(repo ports.ContactRepository) ports.ContactService {
	return &contactService{
		repo: repo,
	}
}

func (s *contactService) List(ctx context.Context, ownerID uuid.UUID, input ports.ListContactsInput) ([]*domain.Contact, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	skip := input.Skip
	if skip < 0 {
		skip = 0
	}

	return s.repo.List(ctx, ownerID, limit, skip)
}

func (s *contactService) Get(ctx context.Context, ownerID uuid.UUID, id string) (*domain.Contact, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidContactID
	}

	contact, err := s.repo.GetByID(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, domain.ErrContactNotFound
	}
	return contact, nil
}

func (s *contactService) Create(ctx context.Context, ownerID uuid.UUID, input ports.ContactInput) (*domain.Contact, error) {
	bornDate, err := validateContactInput(input)
	if err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		BornDate:    bornDate,
		Description: input.Description,
		UserID:      ownerID,
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Update(ctx context.Context, ownerID uuid.UUID, id string, input ports.ContactInput) (*domain.Contact, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidContactID
	}

	bornDate, err := validateContactInput(input)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Contact{
		ID:          contactID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		BornDate:    bornDate,
		UserID:      ownerID,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrContactNotFound
	}
	return updated, nil
}

func (s *contactService) UpdateStatus(ctx context.Context, ownerID uuid.UUID, id string, done bool) (*domain.Contact, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidContactID
	}

	updated, err := s.repo.UpdateStatus(ctx, ownerID, contactID, done)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrContactNotFound
	}
	return updated, nil
}

func (s *contactService) Delete(ctx context.Context, ownerID uuid.UUID, id string) (*domain.Contact, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidContactID
	}

	deleted, err := s.repo.Delete(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, domain.ErrContactNotFound
	}
	return deleted, nil
}

func (s *contactService) Search(ctx context.Context, ownerID uuid.UUID, query string) ([]*domain.Contact, error) {
	// An empty search box must not degrade into a full listing.
	if strings.TrimSpace(query) == "" {
		return []*domain.Contact{}, nil
	}
	return s.repo.Search(ctx, ownerID, query)
}

func (s *contactService) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID) ([]*domain.Contact, error) {
	return s.repo.WithBirthdaysOn(ctx, ownerID, birthdayWindow(time.Now()))
}

// birthdayWindow returns the "MM-DD" keys for from and the following
// birthdayWindowDays days. Working with explicit month-day pairs keeps the
// window correct across month and year boundaries.
func birthdayWindow(from time.Time) []string {
	days := make([]string, 0, birthdayWindowDays+1)
	for i := 0; i <= birthdayWindowDays; i++ {
		days = append(days, from.AddDate(0, 0, i).Format("01-02"))
	}
	return days
}

func validateContactInput(input ports.ContactInput) (time.Time, error) {
	if strings.TrimSpace(input.FirstName) == "" {
		return time.Time{}, fmt.Errorf("%w: first_name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.LastName) == "" {
		return time.Time{}, fmt.Errorf("%w: last_name is required", domain.ErrValidation)
	}
	if !isValidEmail(input.Email) {
		return time.Time{}, fmt.Errorf("%w: email is not a valid address", domain.ErrValidation)
	}
	if !isNumericPhone(input.PhoneNumber) {
		return time.Time{}, fmt.Errorf("%w: phone_number must be a numeric string", domain.ErrValidation)
	}
	bornDate, err := time.Parse("2006-01-02", input.BornDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: born_date must be a date in YYYY-MM-DD format", domain.ErrValidation)
	}
	return bornDate, nil
}

func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
}

func isNumericPhone(phone string) bool {
	if phone == "" {
		return false
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
