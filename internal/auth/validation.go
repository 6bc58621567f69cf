package auth

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/tasktracker/internal/apperrors"
)

// Validation rules for credentials, shared by the HTTP binding and the CLI.
// CredentialsRequest repeats them as struct tags.
var (
	EmailRules    = "required,email,max=254"
	PasswordRules = fmt.Sprintf("required,min=%d,max=%d", MinPasswordLength, MaxPasswordLength)
)

var (
	ErrInvalidEmail    = fmt.Errorf("%w: email must be a valid address", apperrors.ErrValidation)
	ErrInvalidPassword = fmt.Errorf("%w: password must be between %d and %d characters",
		apperrors.ErrValidation, MinPasswordLength, MaxPasswordLength)
)

var validate = validator.New()

// ValidateCredentialsInput applies the registration rules outside of request binding.
// Password length is counted in characters, not bytes.
func ValidateCredentialsInput(email, password string) error {
	if err := validate.Var(email, EmailRules); err != nil {
		return ErrInvalidEmail
	}
	if err := validate.Var(password, PasswordRules); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
