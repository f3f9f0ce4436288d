package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/contacts/api/internal/core/domain"
	"github.com/contacts/api/internal/core/ports"
)

const userColumns = `id, username, email, password, created_at, avatar, refresh_token, confirmed`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetByRefreshTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return r.getOne(ctx, query, hash)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, confirmed
	`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.Password, user.Avatar).
		Scan(&user.ID, &user.CreatedAt, &user.Confirmed)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, userID uuid.UUID, hash *string) error {
	query := `UPDATE users SET refresh_token = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, hash, userID); err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	return nil
}

func (r *UserRepository) SetConfirmed(ctx context.Context, email string) error {
	query := `UPDATE users SET confirmed = TRUE WHERE email = $1`
	result, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetAvatar(ctx context.Context, email, url string) (*domain.User, error) {
	query := `
		UPDATE users
		SET avatar = $1
		WHERE email = $2
		RETURNING ` + userColumns + `
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, url, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to set avatar: %w", err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var avatar, refreshToken sql.NullString
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
		&avatar,
		&refreshToken,
		&u.Confirmed,
	)
	if err != nil {
		return nil, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	return &u, nil
}
