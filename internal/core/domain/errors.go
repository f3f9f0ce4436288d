package domain

import "errors"

var (
	ErrContactNotFound    = errors.New("contact not found")
	ErrInvalidContactID   = errors.New("invalid contact id")
	ErrUserNotFound       = errors.New("user not found")
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
