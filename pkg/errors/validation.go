package errors

import (
	"strings"
	"unicode"
)

// ValidateDimensions checks that a per-axis vector has exactly dims entries.
// The name is used in the error message (e.g. "targetSize").
func ValidateDimensions(name string, v []int64, dims int) error {
	if len(v) != dims {
		return New(ErrCodeInvalidInput, "%s has %d values, want %d (one per axis)", name, len(v), dims)
	}
	return nil
}

// ValidatePositive checks that every entry of a per-axis vector is > 0.
func ValidatePositive(name string, v []int64) error {
	for d, x := range v {
		if x <= 0 {
			return New(ErrCodeInvalidInput, "%s must be positive, got %d for dim=%d", name, x, d)
		}
	}
	return nil
}

// ValidateNonNegative checks that every entry of a per-axis vector is >= 0.
func ValidateNonNegative(name string, v []int64) error {
	for d, x := range v {
		if x < 0 {
			return New(ErrCodeInvalidInput, "%s must not be negative, got %d for dim=%d", name, x, d)
		}
	}
	return nil
}

// ValidateLabel validates an interest point label.
//
// Labels become part of derived names in the split dataset, so the rules
// are conservative:
//   - No empty labels
//   - No control characters
//   - No path separators
//   - Maximum length of 128 characters
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}

	if len(label) > 128 {
		return New(ErrCodeInvalidInput, "label too long (max 128 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}

	if strings.ContainsAny(label, "/\\") {
		return New(ErrCodeInvalidInput, "label cannot contain path separators: %q", label)
	}

	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
