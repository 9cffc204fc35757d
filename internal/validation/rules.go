// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/actiongate/internal/errors"
)

const (
	// MaxActionTypeLength is the maximum accepted length of an action identifier.
	MaxActionTypeLength = 128

	// MaxPermissionLength is the maximum accepted length of a permission name.
	MaxPermissionLength = 128
)

var (
	// actionTypeRegex constrains action identifiers to a flat dotted namespace.
	actionTypeRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

	// permissionRegex accepts permission names plus the "*" wildcard grant.
	permissionRegex = regexp.MustCompile(`^(\*|[A-Za-z0-9_.\-]+)$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// IsValidActionType reports whether s is a well-formed action identifier:
// non-empty, at most MaxActionTypeLength characters, restricted to
// [A-Za-z0-9_.-].
func IsValidActionType(s string) bool {
	if s == "" || len(s) > MaxActionTypeLength {
		return false
	}
	return actionTypeRegex.MatchString(s)
}

// ActionType validates that a string is a well-formed action identifier.
var ActionType = validation.NewStringRuleWithError(
	IsValidActionType,
	validation.NewError(
		"validation_action_type",
		"must contain only letters, digits, '_', '.' or '-' and be at most 128 characters",
	),
)

// PermissionName validates that a string is a well-formed permission name
// or the "*" wildcard.
var PermissionName = validation.NewStringRuleWithError(
	func(s string) bool {
		return s != "" && len(s) <= MaxPermissionLength && permissionRegex.MatchString(s)
	},
	validation.NewError(
		"validation_permission_name",
		"must be '*' or contain only letters, digits, '_', '.' or '-'",
	),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
