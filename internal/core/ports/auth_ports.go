package ports

import (
	"context"

	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type AuthService interface {
	// Login verifies credentials and issues a token pair. The refresh
	// credential digest is stored on the user row, replacing any previous
	// session.
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	// Refresh rotates the pair: the presented refresh token is invalidated
	// and a new one stored.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	// ParseAccessToken validates an access token and returns the subject
	// user id.
	ParseAccessToken(token string) (uuid.UUID, error)
	// EmailToken issues a signed confirmation token carrying the email.
	EmailToken(email string) (string, error)
	ParseEmailToken(token string) (string, error)
}
