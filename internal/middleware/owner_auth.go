package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/coursemedia/uploads-ms-go/internal/api_context"
	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/handler/api"
	"github.com/golang-jwt/jwt/v4"
	guuid "github.com/google/uuid"
)

// WithOwnerAuth validates a Bearer JWT signed with the shared course-platform
// secret and stashes the subject claim as the owner ID. Without a configured
// secret (local development), the owner is read from the X-Owner-ID header
// instead.
func WithOwnerAuth(secret string) func(http.Handler) http.Handler {
	if secret == "" {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if raw := r.Header.Get("X-Owner-ID"); raw != "" {
					parsed, err := guuid.Parse(raw)
					if err != nil {
						api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("owner ID %q is not a valid UUID", raw), nil)
						return
					}
					r = r.WithContext(api_context.WithOwnerID(r.Context(), db.UUID(parsed)))
				}
				next.ServeHTTP(w, r)
			})
		}
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				api.WriteError(w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}

			raw := strings.TrimPrefix(auth, "Bearer ")
			claims := jwt.MapClaims{}
			tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, fmt.Errorf("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				api.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			sub, _ := claims["sub"].(string)
			if sub == "" {
				api.WriteError(w, http.StatusUnauthorized, "missing sub", nil)
				return
			}
			ownerID, err := guuid.Parse(sub)
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, "sub is not a valid owner ID", nil)
				return
			}

			ctx := api_context.WithOwnerID(r.Context(), db.UUID(ownerID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
