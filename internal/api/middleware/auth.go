package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"ocpe/internal/common"
	"ocpe/internal/common/flash"
	"ocpe/internal/common/security"
	"ocpe/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const IdentityCtxKey contextKey = "identity"

// IdentityResolver checks verified session claims against the session store.
type IdentityResolver interface {
	Identify(ctx context.Context, sc security.SessionClaims) (model.Identity, error)
}

// Identify binds every request to an Identity. It runs after jwtauth.Verify;
// a missing, invalid or revoked session yields the anonymous identity.
func Identify(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id model.Identity

			token, claims, err := jwtauth.FromContext(r.Context())
			if err == nil && token != nil {
				sc, claimErr := security.SessionClaimsFrom(claims)
				if claimErr == nil {
					id, err = resolver.Identify(r.Context(), sc)
					if err != nil {
						log.Printf("ERROR: resolving session for %s: %v", r.URL.Path, err)
						id = model.Identity{}
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, IdentityCtxKey, id)
}

// IdentityFromContext returns the request's identity, anonymous if none was bound.
func IdentityFromContext(ctx context.Context) model.Identity {
	id, _ := ctx.Value(IdentityCtxKey).(model.Identity)
	return id
}

// RequireLogin sends anonymous visitors to the login page, remembering where
// they were headed.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()).IsAnonymous() {
			flash.Add(r, flash.Info, "Please log in to access this page.")
			common.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects signed-in users of any other role. Anonymous requests
// pass through; pair it with RequireLogin, or use Guard.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id.IsAuthenticated() && id.Role != role {
				flash.Add(r, flash.Danger, fmt.Sprintf("Login as %s to access this page.", role))
				common.RedirectNext(w, r, "/")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guard requires a signed-in user holding role.
func Guard(role model.Role) func(http.Handler) http.Handler {
	roleGate := RequireRole(role)
	return func(next http.Handler) http.Handler {
		return RequireLogin(roleGate(next))
	}
}

// RequireAnonymous sends signed-in users home, for the signup and login pages.
func RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()).IsAuthenticated() {
			common.Redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r)
	})
}
