package auth

import (
	"context"

	"github.com/stocklane/inventory-service/internal/apperr"
)

type ctxKey string

const (
	ownerKey ctxKey = "owner_id"
	actorKey ctxKey = "actor_id"
)

// Scope is the tenant capability a caller operates under. An empty
// OwnerID is the administrative/global scope and passes every check.
type Scope struct {
	OwnerID string
}

func (s Scope) Admin() bool {
	return s.OwnerID == ""
}

// CanAccess reports whether the scope may touch a record owned by owner.
func (s Scope) CanAccess(owner string) bool {
	return s.Admin() || s.OwnerID == owner
}

// Authorize fails with PermissionDenied when the scope does not cover
// the given owner.
func (s Scope) Authorize(owner string) error {
	if !s.CanAccess(owner) {
		return apperr.New(apperr.KindPermissionDenied, "operation not permitted for this owner")
	}
	return nil
}

func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

func GetOwnerID(ctx context.Context) string {
	if val, ok := ctx.Value(ownerKey).(string); ok {
		return val
	}
	return ""
}

func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey, actorID)
}

func GetActorID(ctx context.Context) string {
	if val, ok := ctx.Value(actorKey).(string); ok {
		return val
	}
	return ""
}

// ScopeFromContext builds the caller's scope from what the transport
// middleware stored in the context.
func ScopeFromContext(ctx context.Context) Scope {
	return Scope{OwnerID: GetOwnerID(ctx)}
}
