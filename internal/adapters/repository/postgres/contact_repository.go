package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/contacts/api/internal/core/domain"
	"github.com/contacts/api/internal/core/ports"
)

const contactColumns = `id, first_name, last_name, email, phone_number, born_date, description, done, created_at, user_id`

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) ports.ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

func (r *ContactRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE id = $1 AND user_id = $2
	`
	contact, err := scanContact(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	query := `
		INSERT INTO contacts (first_name, last_name, email, phone_number, born_date, description, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, done, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PhoneNumber,
		contact.BornDate,
		contact.Description,
		contact.UserID,
	).Scan(&contact.ID, &contact.Done, &contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	query := `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone_number = $4, born_date = $5
		WHERE id = $6 AND user_id = $7
		RETURNING ` + contactColumns + `
	`
	updated, err := scanContact(r.db.QueryRowContext(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PhoneNumber,
		contact.BornDate,
		contact.ID,
		contact.UserID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return updated, nil
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, done bool) (*domain.Contact, error) {
	query := `
		UPDATE contacts
		SET done = $1
		WHERE id = $2 AND user_id = $3
		RETURNING ` + contactColumns + `
	`
	updated, err := scanContact(r.db.QueryRowContext(ctx, query, done, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update contact status: %w", err)
	}
	return updated, nil
}

func (r *ContactRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error) {
	query := `
		DELETE FROM contacts
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns + `
	`
	deleted, err := scanContact(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete contact: %w", err)
	}
	return deleted, nil
}

func (r *ContactRepository) Search(ctx context.Context, ownerID uuid.UUID, q string) ([]*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2)
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, "%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

func (r *ContactRepository) WithBirthdaysOn(ctx context.Context, ownerID uuid.UUID, monthDays []string) ([]*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1 AND to_char(born_date, 'MM-DD') = ANY($2)
		ORDER BY to_char(born_date, 'MM-DD'), id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, pq.Array(monthDays))
	if err != nil {
		return nil, fmt.Errorf("failed to query birthdays: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.PhoneNumber,
		&c.BornDate,
		&c.Description,
		&c.Done,
		&c.CreatedAt,
		&c.UserID,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanContacts(rows *sql.Rows) ([]*domain.Contact, error) {
	contacts := []*domain.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}
