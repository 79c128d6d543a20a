package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/phivault/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("field_name: cannot be blank."))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "field_name: cannot be blank.")
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, validation.Validate("ssn", NotBlank))
	assert.Error(t, validation.Validate("   ", NotBlank))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, validation.Validate("p-1", NoWhitespace))
	assert.Error(t, validation.Validate(" p-1", NoWhitespace))
	assert.Error(t, validation.Validate("p-1\n", NoWhitespace))
}

func TestClassification(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"", true},
		{"high_phi", true},
		{"audit", true},
		{"public", true},
		{"top_secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validation.Validate(tt.value, Classification)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIdentifier(t *testing.T) {
	assert.NoError(t, validation.Validate("org-1", Identifier...))
	assert.NoError(t, validation.Validate("", Identifier...))
	assert.Error(t, validation.Validate(" org-1", Identifier...))
}
