package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds node identifiers; region codes and place names fit easily.
const maxIDLength = 256

// ValidateNodeID validates a node identifier supplied by the caller.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 256 characters
//
// The '|' and '#' characters are allowed but note that route keys and
// midpoint IDs are built from them.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains invalid control characters", id)
		}
	}

	return nil
}

// ValidateCoordinate checks that an anchor coordinate is a finite number.
// The axis name is only used in the error message.
func ValidateCoordinate(id, axis string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "node %q: %s coordinate must be finite, got %v", id, axis, v)
	}
	return nil
}

// ValidateValue checks that a link magnitude is a finite number.
// Zero and negative values are not errors here; callers drop them.
func ValidateValue(source, target string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "link %q -> %q: value must be finite, got %v", source, target, v)
	}
	return nil
}

// ValidateRange checks a [min,max] pair used for output scales.
func ValidateRange(name string, lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite, got [%v, %v]", name, lo, hi)
	}
	if lo < 0 || hi < lo {
		return New(ErrCodeInvalidInput, "%s must satisfy 0 <= min <= max, got [%v, %v]", name, lo, hi)
	}
	return nil
}

// ValidatePath validates an input or output file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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

	if strings.TrimSpace(path) != path {
		return New(ErrCodeInvalidPath, "path cannot start or end with whitespace")
	}

	return nil
}
