// Package middleware holds the access gate for the web and JSON surfaces.
// The signed-in identity travels in the request context; handlers read it
// with IdentityFrom.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/pkg/auth"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/response"
	"github.com/shashiranjanraj/tailorshop/pkg/session"
)

// Session keys written at login.
const (
	SessionUsername = "username"
	SessionRole     = "role"
)

const loginPath = "/login"

type Identity struct {
	Username string
	Role     models.Role
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity admitted by the gate.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// SessionIdentity reads the identity stored in the request session.
func SessionIdentity(r *http.Request) (Identity, bool) {
	sess := session.FromCtx(r.Context())
	username := sess.GetString(SessionUsername)
	role := models.Role(sess.GetString(SessionRole))
	if username == "" || !role.Valid() {
		return Identity{}, false
	}
	return Identity{Username: username, Role: role}, true
}

// RequireLogin admits any signed-in user. When flash is not empty it is
// queued before the redirect to the login page.
func RequireLogin(flash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := SessionIdentity(r)
			if !ok {
				if flash != "" {
					session.FromCtx(r.Context()).Flash(flash)
				}
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole admits only signed-in users holding role. Everyone else is
// sent to the login page.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := SessionIdentity(r)
			if !ok || id.Role != role {
				if ok {
					logger.WithCtx(r.Context()).Debug("role denied", "username", id.Username, "role", id.Role, "path", r.URL.Path)
				}
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

var (
	RequireAdmin    = RequireRole(models.RoleAdmin)
	RequireCustomer = RequireRole(models.RoleCustomer)
)

// RequireBearer admits requests carrying a valid "Authorization: Bearer"
// token signed by signer.
func RequireBearer(signer *auth.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				response.Unauthorized(w)
				return
			}
			claims, err := signer.ValidateToken(raw)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("bearer token rejected", "error", err)
				response.Unauthorized(w)
				return
			}
			role, err := models.ParseRole(claims.Role)
			if err != nil || claims.Username == "" {
				response.Unauthorized(w)
				return
			}
			id := Identity{Username: claims.Username, Role: role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
