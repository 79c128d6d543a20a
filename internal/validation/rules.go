// Package validation provides jellydator validation rules shared by request DTOs.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/phivault/internal/errors"
	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Classification accepts the empty string or any name ParseSensitivityLevel understands.
var Classification = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "" {
			return true
		}
		_, err := phiDomain.ParseSensitivityLevel(s)
		return err == nil
	},
	validation.NewError(
		"validation_classification",
		"must be one of high_phi, medium_phi, low_phi, non_phi, audit_data",
	),
)

// Identifier bounds an optional context identifier. Cache keys escape every component, so
// no character class is rejected.
var Identifier = []validation.Rule{
	validation.Length(0, 255),
	NoWhitespace,
}
