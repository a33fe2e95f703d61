package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coursemedia/uploads-ms-go/internal/api_context"
	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/handler/api"
	"github.com/go-chi/chi/v5"
	guuid "github.com/google/uuid"
)

func WithIntentID() func(http.Handler) http.Handler {
	return withUUIDParam(api_context.IntentIDKey, "intent ID")
}

func WithAssetID() func(http.Handler) http.Handler {
	return withUUIDParam(api_context.AssetIDKey, "ID")
}

func withUUIDParam(key any, label string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if id == "" {
				api.WriteError(w, http.StatusBadRequest, label+" is required", nil)
				return
			}
			parsedID, err := guuid.Parse(id)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("%s %q is not a valid UUID", label, id), nil)
				return
			}

			// stash it in context and call the real handler
			ctx := context.WithValue(r.Context(), key, db.UUID(parsedID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
