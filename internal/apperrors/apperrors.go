// Package apperrors defines the error categories shared by the roster service.
// Concrete errors are marked with one of the categories so callers can branch
// with errors.Is without knowing every individual failure.
package apperrors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation covers malformed dates, weekdays and profile fields.
	ErrValidation = errors.New("validation error")
	// ErrPolicyViolation covers registration rules; these are shown to the user verbatim.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrExternalUnavailable covers store and sheet failures.
	ErrExternalUnavailable = errors.New("external dependency unavailable")
	// ErrDataInconsistency covers records that reference missing entities.
	ErrDataInconsistency = errors.New("data inconsistency")
)

// Validation returns a new error in the validation category.
func Validation(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

// Invalid turns a validator failure on what into a validation error naming the first failed field.
func Invalid(what string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Validation("invalid %s: %s", what, err.Error())
	}
	fe := verrs[0]
	return Validation("invalid %s: %s", what, fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag()))
}

// Policy returns a new error in the policy category.
func Policy(msg string) error {
	return errors.Mark(errors.New(msg), ErrPolicyViolation)
}

// External wraps err as an external dependency failure.
func External(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrExternalUnavailable)
}

// Inconsistent returns a new error in the data inconsistency category.
func Inconsistent(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrDataInconsistency)
}

// IsPolicy reports whether err is a policy violation.
func IsPolicy(err error) bool { return errors.Is(err, ErrPolicyViolation) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsExternal reports whether err comes from an unavailable dependency.
func IsExternal(err error) bool { return errors.Is(err, ErrExternalUnavailable) }

// IsInconsistent reports whether err signals inconsistent stored data.
func IsInconsistent(err error) bool { return errors.Is(err, ErrDataInconsistency) }

// UserMessage returns the text that can be shown to the person who triggered err.
// Policy and validation messages are returned verbatim, everything else is generic.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsPolicy(err), IsValidation(err):
		return errors.UnwrapAll(err).Error()
	default:
		return "Something went wrong, please try again later."
	}
}
