package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/contacts/api/internal/core/domain"
	"github.com/contacts/api/internal/core/ports"
)

type userService struct {
	repo    ports.UserRepository
	avatars ports.AvatarResolver
	logger  *slog.Logger
}

func NewUserService(repo ports.UserRepository, avatars ports.AvatarResolver, logger *slog.Logger) ports.UserService {
	return &userService{
		repo:    repo,
		avatars: avatars,
		logger:  logger,
	}
}

func (s *userService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hash),
	}

	// Avatar resolution is best-effort: registration succeeds with no
	// avatar when the lookup service is unreachable.
	if s.avatars != nil {
		if url, err := s.avatars.Resolve(ctx, input.Email); err != nil {
			s.logger.Warn("avatar lookup failed", "email", input.Email, "error", err)
		} else {
			user.Avatar = &url
		}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *userService) ConfirmEmail(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.Confirmed {
		return nil
	}
	return s.repo.SetConfirmed(ctx, email)
}

func (s *userService) UpdateAvatar(ctx context.Context, email, url string) (*domain.User, error) {
	return s.repo.SetAvatar(ctx, email, url)
}

func validateRegisterInput(input ports.RegisterInput) error {
	if n := len(strings.TrimSpace(input.Username)); n < 5 || n > 16 {
		return fmt.Errorf("%w: username must be 5 to 16 characters", domain.ErrValidation)
	}
	if !isValidEmail(input.Email) {
		return fmt.Errorf("%w: email is not a valid address", domain.ErrValidation)
	}
	if n := len(input.Password); n < 6 || n > 30 {
		return fmt.Errorf("%w: password must be 6 to 30 characters", domain.ErrValidation)
	}
	return nil
}
