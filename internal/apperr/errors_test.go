package apperr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindNotFound, "inventory record not found")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindConflict))

	// Wrapping keeps the kind visible through errors.As.
	wrapped := errors.Wrap(err, "loading record")
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	// A plain error defaults to internal.
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "nope", New(KindInvalidInput, "nope").Error())

	cause := errors.New("connection reset")
	err := Internal(cause, "failed to load product")
	assert.Equal(t, "failed to load product: connection reset", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindInvalidInput, http.StatusBadRequest},
		{KindVariantRequired, http.StatusBadRequest},
		{KindSameLocation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindVariantNotFound, http.StatusNotFound},
		{KindPermissionDenied, http.StatusForbidden},
		{KindNegativeStock, http.StatusConflict},
		{KindInsufficientStock, http.StatusConflict},
		{KindAlreadyInitialized, http.StatusConflict},
		{KindConflict, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(New(tc.kind, "x")), string(tc.kind))
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
