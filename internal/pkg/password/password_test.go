package password

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-sync/internal/core/domain"
)

func TestValidateNew(t *testing.T) {
	assert.NoError(t, ValidateNew("secret1", "secret1"))
	assert.ErrorIs(t, ValidateNew("", ""), domain.ErrFieldRequired)
	assert.ErrorIs(t, ValidateNew("abc", "abc"), domain.ErrPasswordTooShort)

	err := ValidateNew("secret1", "secret2")
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)

	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "confirmPassword", vErr.Field)
}

func TestHashVerify(t *testing.T) {
	hash, err := Hash("secret1", 4)
	assert.NoError(t, err)
	assert.True(t, Verify("secret1", hash))
	assert.False(t, Verify("secret2", hash))
}
