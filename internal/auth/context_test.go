package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stocklane/inventory-service/internal/apperr"
)

func TestScope(t *testing.T) {
	admin := Scope{}
	assert.True(t, admin.Admin())
	assert.True(t, admin.CanAccess("owner-1"))
	assert.NoError(t, admin.Authorize("owner-1"))

	scoped := Scope{OwnerID: "owner-1"}
	assert.False(t, scoped.Admin())
	assert.True(t, scoped.CanAccess("owner-1"))
	assert.False(t, scoped.CanAccess("owner-2"))

	err := scoped.Authorize("owner-2")
	assert.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetOwnerID(ctx))
	assert.Empty(t, GetActorID(ctx))
	assert.True(t, ScopeFromContext(ctx).Admin())

	ctx = WithOwnerID(ctx, "owner-1")
	ctx = WithActorID(ctx, "user-9")
	assert.Equal(t, "owner-1", GetOwnerID(ctx))
	assert.Equal(t, "user-9", GetActorID(ctx))
	assert.Equal(t, Scope{OwnerID: "owner-1"}, ScopeFromContext(ctx))
}
