package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/contacts/api/docs"
	"github.com/contacts/api/internal/core/ports"
)

// NewHandler wires every route. The /api/contacts and /api/users trees sit
// behind bearer auth; listing and creating contacts are additionally
// rate-limited to 10 requests per minute per user.
func NewHandler(
	contactHandler *ContactHandler,
	userHandler *UserHandler,
	authHandler *AuthHandler,
	authService ports.AuthService,
	userRepo ports.UserRepository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	authorized := AuthMiddleware(authService, userRepo)
	limiter := NewRateLimiter(10, time.Minute)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthchecker", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the contacts API"})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/request_email", authHandler.RequestEmail)
			r.Get("/confirmed_email/{token}", authHandler.ConfirmEmail)

			r.Group(func(r chi.Router) {
				r.Use(authorized)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Use(authorized)

			r.With(limiter.Middleware).Get("/", contactHandler.List)
			r.With(limiter.Middleware).Post("/", contactHandler.Create)
			r.Get("/search", contactHandler.Search)
			r.Get("/birthdays", contactHandler.Birthdays)
			r.Get("/{id}", contactHandler.Get)
			r.Put("/{id}", contactHandler.Update)
			r.Patch("/{id}", contactHandler.UpdateStatus)
			r.Delete("/{id}", contactHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authorized)

			r.Get("/me", userHandler.GetMe)
			r.Patch("/avatar", userHandler.UpdateAvatar)
		})
	})

	return r
}
