package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/contacts/api/internal/core/domain"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByRefreshTokenHash(ctx context.Context, hash string) (*domain.User, error)
	GetAll(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	// SetRefreshToken overwrites the stored refresh credential digest.
	// A nil hash clears the session.
	SetRefreshToken(ctx context.Context, userID uuid.UUID, hash *string) error
	// SetConfirmed marks the user confirmed. Returns domain.ErrUserNotFound
	// when no user has this email; confirmation never no-ops silently.
	SetConfirmed(ctx context.Context, email string) error
	SetAvatar(ctx context.Context, email, url string) (*domain.User, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ConfirmEmail(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, email, url string) (*domain.User, error)
}

// AvatarResolver looks up a profile image URL for an email address.
// Resolution is best-effort: callers swallow failures.
type AvatarResolver interface {
	Resolve(ctx context.Context, email string) (string, error)
}
