package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeCode(t *testing.T) {
	tests := []struct {
		service, category, sequence int
		want                        int
	}{
		{0, 1, 1, 1001},
		{20, 1, 1, 2001001},
		{21, 2, 1, 2102001},
		{92, 10, 1, 9210001},
	}

	for _, tt := range tests {
		got := MakeCode(tt.service, tt.category, tt.sequence)
		assert.Equal(t, tt.want, got)

		service, category, sequence := ParseCode(got)
		assert.Equal(t, tt.service, service)
		assert.Equal(t, tt.category, category)
		assert.Equal(t, tt.sequence, sequence)
	}
}

func TestErrno_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrExtraction.WithCause(cause)

	assert.Equal(t, ErrExtraction.Code, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")

	// The original registered errno must stay untouched.
	assert.Nil(t, ErrExtraction.Unwrap())
}

func TestErrno_Is(t *testing.T) {
	err := ErrSearch.WithCause(errors.New("boom"))
	assert.True(t, errors.Is(err, ErrSearch))
	assert.False(t, errors.Is(err, ErrCompletion))
}

func TestErrno_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, ErrMissingCredential.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, ErrEmptyQuery.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, ErrIndexing.HTTPStatus())

	unset := &Errno{Code: 1}
	assert.Equal(t, http.StatusInternalServerError, unset.HTTPStatus())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	e := FromError(ErrDocumentNotFound)
	assert.Same(t, ErrDocumentNotFound, e)

	wrapped := FromError(fmt.Errorf("plain failure"))
	assert.Equal(t, ErrInternal.Code, wrapped.Code)
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(ErrMissingCredential.Code)
	assert.True(t, ok)
	assert.Same(t, ErrMissingCredential, e)

	_, ok = Lookup(9999999)
	assert.False(t, ok)
}
