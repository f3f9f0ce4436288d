package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/contacts/api/internal/core/domain"
	"github.com/contacts/api/internal/core/ports"
)

const (
	accessTokenTTL = 15 * time.Minute
	emailTokenTTL  = 7 * 24 * time.Hour

	emailTokenScope = "email_confirmation"
)

type authService struct {
	users     ports.UserRepository
	jwtSecret []byte
}

func NewAuthService(users ports.UserRepository, jwtSecret []byte) ports.AuthService {
	return &authService{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Confirmed {
		return nil, domain.ErrEmailNotConfirmed
	}

	return s.issuePair(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	user, err := s.users.GetByRefreshTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}

	// Rotation: the presented token is replaced, so it cannot be replayed.
	return s.issuePair(ctx, user)
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.users.SetRefreshToken(ctx, userID, nil)
}

func (s *authService) ParseAccessToken(tokenStr string) (uuid.UUID, error) {
	claims, err := s.parseClaims(tokenStr)
	if err != nil {
		return uuid.Nil, err
	}
	if scope, _ := claims["scope"].(string); scope == emailTokenScope {
		return uuid.Nil, domain.ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, domain.ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) EmailToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   email,
		"scope": emailTokenScope,
		"exp":   time.Now().Add(emailTokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *authService) ParseEmailToken(tokenStr string) (string, error) {
	claims, err := s.parseClaims(tokenStr)
	if err != nil {
		return "", err
	}
	if scope, _ := claims["scope"].(string); scope != emailTokenScope {
		return "", domain.ErrInvalidToken
	}
	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", domain.ErrInvalidToken
	}
	return email, nil
}

func (s *authService) parseClaims(tokenStr string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) issuePair(ctx context.Context, user *domain.User) (*ports.TokenPair, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	hash := hashToken(refreshToken)
	if err := s.users.SetRefreshToken(ctx, user.ID, &hash); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &ports.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

func (s *authService) generateAccessToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"exp":   time.Now().Add(accessTokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
