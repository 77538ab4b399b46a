package password

import (
	"golang.org/x/crypto/bcrypt"

	"storefront-sync/internal/core/domain"
)

// MinLength is the minimum accepted password length
const MinLength = 6

// ValidateNew checks a new password and its confirmation before anything is
// sent to the server. Errors are *domain.ValidationError.
func ValidateNew(password, confirm string) error {
	if password == "" {
		return domain.Invalid("password", domain.ErrFieldRequired)
	}
	if len(password) < MinLength {
		return domain.Invalid("password", domain.ErrPasswordTooShort)
	}
	if password != confirm {
		return domain.Invalid("confirmPassword", domain.ErrPasswordMismatch)
	}
	return nil
}

// Hash hashes a password using bcrypt at the given cost
func Hash(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
