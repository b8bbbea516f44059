package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// hexColorRegex matches #RGB and #RRGGBB colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateHexColor validates a card color such as "#E57373".
func ValidateHexColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidColor, "invalid hex color: %q", color)
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
// The comparison is case-sensitive; callers lower-case user input first.
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (expected one of: %s)", format, strings.Join(allowed, ", "))
}

// ValidateKeyPart validates a string that becomes part of a cache key or
// session name. It rejects anything that could split or escape a
// "prefix:part" key.
//
// Validation rules:
//   - Cannot be empty
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No ':' separators
func ValidateKeyPart(part string) error {
	if part == "" {
		return New(ErrCodeInvalidInput, "key cannot be empty")
	}

	const maxKeyLength = 128
	if len(part) > maxKeyLength {
		return New(ErrCodeInvalidInput, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range part {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "key contains invalid characters")
		}
	}

	if strings.Contains(part, ":") {
		return New(ErrCodeInvalidInput, "key cannot contain ':'")
	}

	return nil
}

// ValidateIndex checks that idx addresses an item in a list of n items.
func ValidateIndex(idx, n int) error {
	if idx < 0 || idx >= n {
		return New(ErrCodeIndexOutOfRange, "index %d out of range [0, %d)", idx, n)
	}
	return nil
}
