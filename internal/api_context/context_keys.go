package api_context

import (
	"context"

	"github.com/coursemedia/uploads-ms-go/internal/db"
)

type ctxKey string

const (
	IntentIDKey ctxKey = "intentID"
	AssetIDKey  ctxKey = "assetID"
	OwnerIDKey  ctxKey = "ownerID"
)

func AssetIDFromContext(ctx context.Context) (db.UUID, bool) {
	id, ok := ctx.Value(AssetIDKey).(db.UUID)
	return id, ok
}

func IntentIDFromContext(ctx context.Context) (db.UUID, bool) {
	id, ok := ctx.Value(IntentIDKey).(db.UUID)
	return id, ok
}

func OwnerIDFromContext(ctx context.Context) (db.UUID, bool) {
	id, ok := ctx.Value(OwnerIDKey).(db.UUID)
	return id, ok
}

func WithOwnerID(ctx context.Context, id db.UUID) context.Context {
	return context.WithValue(ctx, OwnerIDKey, id)
}
