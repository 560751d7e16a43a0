package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/envsecrets/internal/errors"
)

func TestSecretPath(t *testing.T) {
	tests := []struct {
		path  string
		valid bool
	}{
		{"/", true},
		{"/backend", true},
		{"/backend/db", true},
		{"/backend/db/", true},
		{"backend", false},
		{"//", false},
		{"/backend//db", false},
		{"/with space", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := SecretPath.Validate(tt.path)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestKeyName(t *testing.T) {
	assert.NoError(t, KeyName.Validate("DB_PASS"))
	assert.NoError(t, KeyName.Validate("_private"))
	assert.NoError(t, KeyName.Validate("api.key-2"))
	assert.Error(t, KeyName.Validate("1PASS"))
	assert.Error(t, KeyName.Validate("DB PASS"))
	assert.Error(t, KeyName.Validate("${DB}"))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("x"))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("abc"))
	assert.Error(t, NoWhitespace.Validate(" abc"))
}

func TestWrapValidationError(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("name: cannot be blank"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "name: cannot be blank")
}
