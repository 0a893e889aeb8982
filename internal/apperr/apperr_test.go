package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidWrapsCause(t *testing.T) {
	cause := errors.New("attribute is not available")
	err := Invalid("attribute", "%w: Fax", cause)

	assert.EqualError(t, err, "attribute: attribute is not available: Fax")
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsValidation(fmt.Errorf("select: %w", err)))
}

func TestInvalidWithoutCause(t *testing.T) {
	err := Invalid("", "enter a value to filter by")

	assert.EqualError(t, err, "enter a value to filter by")
	assert.Nil(t, errors.Unwrap(err))
	assert.False(t, IsValidation(ErrNotFound))
}
