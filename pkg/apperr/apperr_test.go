package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindConflict, KindOf(Conflict("dup")))
	require.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	require.Equal(t, KindUnauthorized, KindOf(Unauthorized("nope")))
	require.Equal(t, KindInternal, KindOf(Internal("boom", errors.New("cause"))))
	require.Equal(t, KindInternal, KindOf(errors.New("plain")))
	require.Equal(t, KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("handler: %w", NotFound("user not found"))
	require.True(t, IsNotFound(err))
	require.False(t, IsConflict(err))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := Internal("query users", cause)
	require.Equal(t, "query users: connection reset", err.Error())
	require.ErrorIs(t, err, cause)

	bare := Conflict("email already in use")
	require.Equal(t, "email already in use", bare.Error())
	require.NoError(t, bare.Unwrap())
}

func TestWrapReclassifies(t *testing.T) {
	t.Parallel()

	cause := errors.New("no rows")
	err := Wrap(KindNotFound, "role not found", cause)
	require.True(t, IsNotFound(err))
	require.ErrorIs(t, err, cause)
}
