package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorDefaultsToInternal(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsIdentityForErrorsIs(t *testing.T) {
	cloned := Clone(ErrNotFound, "material not found")
	assert.Equal(t, "material not found", cloned.Message)
	assert.True(t, stderrors.Is(cloned, ErrNotFound))
	assert.False(t, stderrors.Is(cloned, ErrValidation))
}

func TestStorageWrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Storage(cause, "failed to list materials")

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}
