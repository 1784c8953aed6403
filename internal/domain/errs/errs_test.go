package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-catalog-api/internal/domain/errs"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, errs.KindValidation, errs.KindOf(errs.Validation("bad input")))
	assert.Equal(t, errs.KindConflict, errs.KindOf(errs.Conflict("taken")))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(errs.NotFound("gone")))
	assert.Equal(t, errs.KindInternal, errs.KindOf(errors.New("plain")))
	assert.Equal(t, errs.KindInternal, errs.KindOf(errs.Internal("boom", errors.New("cause"))))
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	inner := errs.Conflict("order key 5 in use")
	wrapped := fmt.Errorf("reindex categories: %w", inner)

	assert.True(t, errs.Is(wrapped, errs.KindConflict))
	e, ok := errs.AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "order key 5 in use", e.Message)
}

func TestInternalExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := errs.Internal("db down", cause)
	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "db down")
}
