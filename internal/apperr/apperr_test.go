package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsAsThroughWrapping(t *testing.T) {
	base := InsufficientStock(3, "pcs")
	wrapped := fmt.Errorf("applying movement: %w", base)

	var appErr *Error
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, KindInsufficientStock, appErr.Kind)
	assert.Equal(t, 3, appErr.Details["available"])
	assert.Equal(t, "pcs", appErr.Details["unit"])
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(NotFound("material"), KindNotFound))
	assert.False(t, IsKind(NotFound("material"), KindConflict))
	assert.False(t, IsKind(errors.New("plain"), KindInternal))
	assert.False(t, IsKind(nil, KindNotFound))
}

func TestNewf(t *testing.T) {
	err := Newf(KindConflict, "material code '%s' already exists", "MTL-1")
	assert.Equal(t, "material code 'MTL-1' already exists", err.Error())
	assert.Equal(t, KindConflict, err.Kind)
}
