package api

import (
	"net/http"
	"time"

	"ocpe/internal/api/handler"
	"ocpe/internal/api/middleware"
	"ocpe/internal/api/view"
	"ocpe/internal/app/service"
	"ocpe/internal/common/flash"
	"ocpe/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	CookieSecure           bool
	ProblemCreatedRedirect string
}

func NewRouter(
	authService *service.AuthService,
	problemService *service.ProblemService,
	renderer *view.Renderer,
	opts RouterOptions,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Group(func(site chi.Router) {
		site.Use(flash.Middleware(opts.CookieSecure))
		// The session token lives in a cookie, not the Authorization header.
		site.Use(jwtauth.Verify(security.TokenAuth, security.TokenFromSessionCookie))
		site.Use(middleware.Identify(authService))

		pageHandler := handler.NewPageHandler(authService, renderer)
		pageHandler.RegisterRoutes(site)

		authHandler := handler.NewAuthHandler(authService, renderer, opts.CookieSecure)
		authHandler.RegisterRoutes(site)

		problemHandler := handler.NewProblemHandler(problemService, renderer, opts.ProblemCreatedRedirect)
		problemHandler.RegisterRoutes(site)

		site.NotFound(pageHandler.NotFound)
	})

	return r
}
