package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contacts/api/internal/core/domain"
	"github.com/contacts/api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	userService ports.UserService
	mail        ports.MailSender
	logger      *slog.Logger
}

func NewAuthHandler(authService ports.AuthService, userService ports.UserService, mail ports.MailSender, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		mail:        mail,
		logger:      logger,
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// Signup godoc
// @Summary      Registers a new user
// @Description  Creates the account unconfirmed and sends a confirmation link by email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      409
// @Failure      422
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Register(r.Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, domain.ErrValidation):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.sendConfirmation(r.Context(), user.Email, user.Username)

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":   user,
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

// Login godoc
// @Summary      Authenticates a user
// @Description  Returns an access/refresh token pair. The email must be confirmed first.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      401
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrEmailNotConfirmed) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Refresh godoc
// @Summary      Rotates the token pair
// @Description  Exchanges a valid refresh token for a new access/refresh pair. The old refresh token is invalidated.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      401
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "missing refresh token", http.StatusBadRequest)
		return
	}

	pair, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Logout godoc
// @Summary      Logs the authenticated user out
// @Description  Clears the stored refresh token.
// @Tags         auth
// @Success      200
// @Failure      401
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ConfirmEmail godoc
// @Summary      Confirms a user's email address
// @Tags         auth
// @Produce      json
// @Param        token  path  string  true  "Confirmation token"
// @Success      200
// @Failure      400
// @Failure      404
// @Router       /auth/confirmed_email/{token} [get]
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.authService.ParseEmailToken(chi.URLParam(r, "token"))
	if err != nil {
		http.Error(w, "invalid confirmation token", http.StatusBadRequest)
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if user != nil && user.Confirmed {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Your email is already confirmed"})
		return
	}

	if err := h.userService.ConfirmEmail(r.Context(), email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email confirmed"})
}

// RequestEmail godoc
// @Summary      Re-sends the confirmation email
// @Description  Always answers 200 so the endpoint cannot be used to probe for accounts.
// @Tags         auth
// @Accept       json
// @Success      200
// @Router       /auth/request_email [post]
func (h *AuthHandler) RequestEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if user != nil && !user.Confirmed {
		h.sendConfirmation(r.Context(), user.Email, user.Username)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Check your email for confirmation."})
}

// sendConfirmation delivers the confirmation link best-effort: failures
// are logged, never surfaced to the caller.
func (h *AuthHandler) sendConfirmation(ctx context.Context, email, username string) {
	if h.mail == nil {
		return
	}
	token, err := h.authService.EmailToken(email)
	if err != nil {
		h.logger.Warn("confirmation token generation failed", "email", email, "error", err)
		return
	}
	if err := h.mail.SendConfirmation(ctx, email, username, token); err != nil {
		h.logger.Warn("confirmation email delivery failed", "email", email, "error", err)
	}
}
