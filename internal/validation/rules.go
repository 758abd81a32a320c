// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/casoauth/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
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

// AbsoluteURL validates an absolute http or https URL without a fragment,
// the shape required for OAuth redirect URIs and CAS services.
var AbsoluteURL = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
		return u.Host != "" && u.Fragment == ""
	},
	validation.NewError("validation_absolute_url", "must be an absolute http(s) URL without fragment"),
)

// HasPrefix validates that a string starts with prefix.
func HasPrefix(prefix string) validation.StringRule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			return strings.HasPrefix(s, prefix)
		},
		validation.NewError("validation_prefix", "must start with "+prefix),
	)
}
