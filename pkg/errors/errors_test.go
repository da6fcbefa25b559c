package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentityForErrorsIs(t *testing.T) {
	cloned := Clone(ErrNotFound, "note not found")

	assert.True(t, errors.Is(cloned, ErrNotFound))
	assert.False(t, errors.Is(cloned, ErrForbidden))
	assert.Equal(t, "note not found", cloned.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.EqualError(t, appErr, "internal server error: boom")
}

func TestInternalPreservesTypedErrors(t *testing.T) {
	malformed := Wrap(fmt.Errorf("bad json"), ErrMalformedData.Code, ErrMalformedData.Status, "decode notes")
	wrapped := fmt.Errorf("load: %w", malformed)

	got := Internal(wrapped, "failed to list notes")

	assert.Equal(t, ErrMalformedData.Code, got.Code)
	assert.True(t, errors.Is(got, ErrMalformedData))
}
