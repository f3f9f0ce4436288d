package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contacts/api/internal/core/domain"
	"github.com/contacts/api/internal/core/ports"
)

const goodToken = "good-access-token"

type stubContactService struct {
	contact  *domain.Contact
	contacts []*domain.Contact
	err      error
}

func (s *stubContactService) List(ctx context.Context, ownerID uuid.UUID, input ports.ListContactsInput) ([]*domain.Contact, error) {
	return s.contacts, s.err
}

func (s *stubContactService) Get(ctx context.Context, ownerID uuid.UUID, id string) (*domain.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.contact, nil
}

func (s *stubContactService) Create(ctx context.Context, ownerID uuid.UUID, input ports.ContactInput) (*domain.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.contact, nil
}

func (s *stubContactService) Update(ctx context.Context, ownerID uuid.UUID, id string, input ports.ContactInput) (*domain.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.contact, nil
}

func (s *stubContactService) UpdateStatus(ctx context.Context, ownerID uuid.UUID, id string, done bool) (*domain.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.contact, nil
}

func (s *stubContactService) Delete(ctx context.Context, ownerID uuid.UUID, id string) (*domain.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.contact, nil
}

func (s *stubContactService) Search(ctx context.Context, ownerID uuid.UUID, query string) ([]*domain.Contact, error) {
	return s.contacts, s.err
}

func (s *stubContactService) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID) ([]*domain.Contact, error) {
	return s.contacts, s.err
}

type stubUserService struct {
	user        *domain.User
	registerErr error
	confirmErr  error
	confirmed   []string
}

func (s *stubUserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.user, nil
}

func (s *stubUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.user == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubUserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, nil
}

func (s *stubUserService) ConfirmEmail(ctx context.Context, email string) error {
	if s.confirmErr != nil {
		return s.confirmErr
	}
	s.confirmed = append(s.confirmed, email)
	return nil
}

func (s *stubUserService) UpdateAvatar(ctx context.Context, email, url string) (*domain.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, domain.ErrUserNotFound
	}
	s.user.Avatar = &url
	return s.user, nil
}

type stubAuthService struct {
	userID       uuid.UUID
	pair         *ports.TokenPair
	loginErr     error
	refreshErr   error
	loggedOut    bool
	emailByToken map[string]string
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.pair, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.pair, nil
}

func (s *stubAuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	s.loggedOut = true
	return nil
}

func (s *stubAuthService) ParseAccessToken(token string) (uuid.UUID, error) {
	if token == goodToken {
		return s.userID, nil
	}
	return uuid.Nil, domain.ErrInvalidToken
}

func (s *stubAuthService) EmailToken(email string) (string, error) {
	return "confirmation-for-" + email, nil
}

func (s *stubAuthService) ParseEmailToken(token string) (string, error) {
	if email, ok := s.emailByToken[token]; ok {
		return email, nil
	}
	return "", domain.ErrInvalidToken
}

// stubUserRepo backs the auth middleware; only GetByID matters here.
type stubUserRepo struct {
	user *domain.User
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, nil
}

func (r *stubUserRepo) GetByRefreshTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) GetAll(ctx context.Context) ([]*domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error {
	return nil
}

func (r *stubUserRepo) SetRefreshToken(ctx context.Context, userID uuid.UUID, hash *string) error {
	return nil
}

func (r *stubUserRepo) SetConfirmed(ctx context.Context, email string) error {
	return nil
}

func (r *stubUserRepo) SetAvatar(ctx context.Context, email, url string) (*domain.User, error) {
	return nil, nil
}

type recordingMail struct {
	confirmations []string
}

func (m *recordingMail) SendConfirmation(ctx context.Context, to, username, token string) error {
	m.confirmations = append(m.confirmations, to)
	return nil
}

func (m *recordingMail) SendBirthdayDigest(ctx context.Context, to, username string, contacts []*domain.Contact) error {
	return nil
}

type testApp struct {
	server   *httptest.Server
	contacts *stubContactService
	users    *stubUserService
	auth     *stubAuthService
	mail     *recordingMail
	user     *domain.User
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	user := &domain.User{
		ID:        uuid.New(),
		Username:  "adalove",
		Email:     "ada@example.com",
		Confirmed: true,
	}

	contacts := &stubContactService{contacts: []*domain.Contact{}}
	users := &stubUserService{user: user}
	auth := &stubAuthService{
		userID:       user.ID,
		pair:         &ports.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"},
		emailByToken: map[string]string{"valid-confirmation": user.Email},
	}
	mail := &recordingMail{}

	handler := NewHandler(
		NewContactHandler(contacts),
		NewUserHandler(users),
		NewAuthHandler(auth, users, mail, discardLogger()),
		auth,
		&stubUserRepo{user: user},
	)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testApp{
		server:   server,
		contacts: contacts,
		users:    users,
		auth:     auth,
		mail:     mail,
		user:     user,
	}
}

func (app *testApp) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, app.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp(t)

	resp := app.request(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = app.request(t, http.MethodGet, "/api/users/me", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = app.request(t, http.MethodGet, "/api/users/me", goodToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me domain.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	resp.Body.Close()
	assert.Equal(t, app.user.ID, me.ID)
	assert.Equal(t, "adalove", me.Username)
}

func TestAuthMiddleware_DeletedUser(t *testing.T) {
	app := newTestApp(t)

	// A valid token for a user that no longer exists is rejected.
	app.auth.userID = uuid.New()

	resp := app.request(t, http.MethodGet, "/api/users/me", goodToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestContactErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation failure", fmt.Errorf("%w: first_name is required", domain.ErrValidation), http.StatusUnprocessableEntity},
		{"malformed id", domain.ErrInvalidContactID, http.StatusBadRequest},
		{"missing contact", domain.ErrContactNotFound, http.StatusNotFound},
		{"repository failure", fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.contacts.err = tt.err

			resp := app.request(t, http.MethodGet, "/api/contacts/"+uuid.NewString(), goodToken, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestContactCreate(t *testing.T) {
	app := newTestApp(t)
	app.contacts.contact = &domain.Contact{
		ID:        uuid.New(),
		FirstName: "Grace",
		LastName:  "Hopper",
		UserID:    app.user.ID,
	}

	payload := map[string]string{
		"first_name":   "Grace",
		"last_name":    "Hopper",
		"email":        "grace@example.com",
		"phone_number": "5551234567",
		"born_date":    "1906-12-09",
	}
	resp := app.request(t, http.MethodPost, "/api/contacts", goodToken, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Contact
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, "Grace", created.FirstName)
}

func TestContactDelete_ReturnsDeletedContact(t *testing.T) {
	app := newTestApp(t)
	app.contacts.contact = &domain.Contact{ID: uuid.New(), FirstName: "Grace"}

	resp := app.request(t, http.MethodDelete, "/api/contacts/"+app.contacts.contact.ID.String(), goodToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var deleted domain.Contact
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&deleted))
	resp.Body.Close()
	assert.Equal(t, app.contacts.contact.ID, deleted.ID)
}

func TestContactList_RateLimited(t *testing.T) {
	app := newTestApp(t)

	for i := 1; i <= 10; i++ {
		resp := app.request(t, http.MethodGet, "/api/contacts", goodToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d should pass", i)
		resp.Body.Close()
	}

	resp := app.request(t, http.MethodGet, "/api/contacts", goodToken, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	resp.Body.Close()

	// Unlimited routes keep working for the throttled user.
	resp = app.request(t, http.MethodGet, "/api/contacts/search?q=ada", goodToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestSignup(t *testing.T) {
	app := newTestApp(t)

	payload := map[string]string{"username": "adalove", "email": "ada@example.com", "password": "s3cretpass"}
	resp := app.request(t, http.MethodPost, "/api/auth/signup", "", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		User   domain.User `json:"user"`
		Detail string      `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "adalove", body.User.Username)
	assert.Contains(t, body.Detail, "Check your email")

	// The confirmation mail went out to the new address.
	assert.Equal(t, []string{"ada@example.com"}, app.mail.confirmations)
}

func TestSignup_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"duplicate email", domain.ErrEmailTaken, http.StatusConflict},
		{"invalid input", fmt.Errorf("%w: username must be 5 to 16 characters", domain.ErrValidation), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.users.registerErr = tt.err

			payload := map[string]string{"username": "adalove", "email": "ada@example.com", "password": "s3cretpass"}
			resp := app.request(t, http.MethodPost, "/api/auth/signup", "", payload)
			assert.Equal(t, tt.status, resp.StatusCode)
			resp.Body.Close()
			assert.Empty(t, app.mail.confirmations)
		})
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)

	payload := map[string]string{"email": "ada@example.com", "password": "s3cretpass"}
	resp := app.request(t, http.MethodPost, "/api/auth/login", "", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair ports.TokenPair
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	resp.Body.Close()
	assert.Equal(t, "bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLogin_Unauthorized(t *testing.T) {
	for _, err := range []error{domain.ErrInvalidCredentials, domain.ErrEmailNotConfirmed} {
		app := newTestApp(t)
		app.auth.loginErr = err

		payload := map[string]string{"email": "ada@example.com", "password": "bad"}
		resp := app.request(t, http.MethodPost, "/api/auth/login", "", payload)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestRefresh(t *testing.T) {
	app := newTestApp(t)

	resp := app.request(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	app.auth.refreshErr = domain.ErrInvalidToken
	resp = app.request(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": "stale"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	app.auth.refreshErr = nil
	resp = app.request(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": "r"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)

	resp := app.request(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
	assert.False(t, app.auth.loggedOut)

	resp = app.request(t, http.MethodPost, "/api/auth/logout", goodToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, app.auth.loggedOut)
}

func TestConfirmEmail(t *testing.T) {
	app := newTestApp(t)
	app.user.Confirmed = false

	resp := app.request(t, http.MethodGet, "/api/auth/confirmed_email/garbage", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = app.request(t, http.MethodGet, "/api/auth/confirmed_email/valid-confirmation", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, []string{app.user.Email}, app.users.confirmed)
}

func TestConfirmEmail_AlreadyConfirmed(t *testing.T) {
	app := newTestApp(t)

	resp := app.request(t, http.MethodGet, "/api/auth/confirmed_email/valid-confirmation", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "Your email is already confirmed", body["message"])
	assert.Empty(t, app.users.confirmed)
}

func TestConfirmEmail_UnknownUser(t *testing.T) {
	app := newTestApp(t)
	app.user.Confirmed = false
	app.users.confirmErr = domain.ErrUserNotFound

	resp := app.request(t, http.MethodGet, "/api/auth/confirmed_email/valid-confirmation", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRequestEmail(t *testing.T) {
	app := newTestApp(t)
	app.user.Confirmed = false

	payload := map[string]string{"email": app.user.Email}
	resp := app.request(t, http.MethodPost, "/api/auth/request_email", "", payload)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, []string{app.user.Email}, app.mail.confirmations)

	// Unknown addresses get the same answer and no mail.
	app.mail.confirmations = nil
	resp = app.request(t, http.MethodPost, "/api/auth/request_email", "", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, app.mail.confirmations)
}

func TestRequestEmail_ConfirmedUserGetsNoMail(t *testing.T) {
	app := newTestApp(t)

	resp := app.request(t, http.MethodPost, "/api/auth/request_email", "", map[string]string{"email": app.user.Email})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, app.mail.confirmations)
}

func TestUpdateAvatar(t *testing.T) {
	app := newTestApp(t)

	resp := app.request(t, http.MethodPatch, "/api/users/avatar", goodToken, map[string]string{"url": "https://cdn.example.com/pic.png"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated domain.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	resp.Body.Close()
	require.NotNil(t, updated.Avatar)
	assert.Equal(t, "https://cdn.example.com/pic.png", *updated.Avatar)

	resp = app.request(t, http.MethodPatch, "/api/users/avatar", goodToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
