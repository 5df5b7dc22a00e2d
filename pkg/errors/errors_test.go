package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsIdentity(t *testing.T) {
	cloned := Clone(ErrSyncInProgress, "sync 42 is already processing")
	require.Equal(t, "sync 42 is already processing", cloned.Message)
	assert.True(t, errors.Is(cloned, ErrSyncInProgress))
	assert.False(t, errors.Is(cloned, ErrSyncCompleted))
	assert.Equal(t, "sync already processing", ErrSyncInProgress.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.Equal(t, ErrInternal.Code, appErr.Code)
	require.Equal(t, http.StatusInternalServerError, appErr.Status)
	require.EqualError(t, appErr, "internal server error: boom")
}

func TestCloneWrapUnwraps(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	appErr := CloneWrap(ErrRemoteUnavailable, cause, "")
	require.ErrorIs(t, appErr, cause)
	require.Equal(t, http.StatusServiceUnavailable, FromError(fmt.Errorf("run: %w", appErr)).Status)
}
