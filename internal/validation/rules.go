// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/envsecrets/internal/errors"
)

var (
	// secretPathRegex allows "/" or slash-separated segments without empty parts.
	secretPathRegex = regexp.MustCompile(`^/([A-Za-z0-9_\-.]+(/[A-Za-z0-9_\-.]+)*)?/?$`)

	// keyNameRegex matches environment-variable style key names.
	keyNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-.]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// SecretPath validates a folder path such as "/" or "/backend/db".
var SecretPath = validation.NewStringRuleWithError(
	func(s string) bool {
		return secretPathRegex.MatchString(s)
	},
	validation.NewError("validation_secret_path", "must be an absolute path like /folder/sub"),
)

// KeyName validates a secret key name.
var KeyName = validation.NewStringRuleWithError(
	func(s string) bool {
		return keyNameRegex.MatchString(s)
	},
	validation.NewError("validation_key_name", "must start with a letter or underscore and contain no spaces"),
)
