package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateSpan checks that a horizontal span lies in [0,1] with startX <= endX.
func ValidateSpan(startX, endX float64) error {
	if math.IsNaN(startX) || math.IsNaN(endX) {
		return New(ErrCodeInvalidFrame, "span contains NaN: [%v, %v]", startX, endX)
	}
	if startX < 0 || endX > 1 {
		return New(ErrCodeInvalidFrame, "span [%v, %v] outside [0, 1]", startX, endX)
	}
	if startX > endX {
		return New(ErrCodeInvalidFrame, "startX %v > endX %v", startX, endX)
	}
	return nil
}

// ValidateDepth checks that a stack depth is not negative.
func ValidateDepth(depth int) error {
	if depth < 0 {
		return New(ErrCodeInvalidFrame, "negative stack depth %d", depth)
	}
	return nil
}

// ValidateWeight checks that a node weight is finite and not negative.
func ValidateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidWeight, "weight is not finite: %v", w)
	}
	if w < 0 {
		return New(ErrCodeInvalidWeight, "negative weight %v", w)
	}
	return nil
}

// ValidateTotalWeight checks the total a parent distributes among its children.
// A zero total makes every child span undefined.
func ValidateTotalWeight(total float64) error {
	if err := ValidateWeight(total); err != nil {
		return err
	}
	if total == 0 {
		return New(ErrCodeInvalidWeight, "zero total weight for a node with children")
	}
	return nil
}

// ValidatePath validates a user supplied input path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "path too long (max 4096 characters)")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}
	if strings.Contains(path, "\x00") {
		return New(ErrCodeInvalidPath, "path contains null byte")
	}
	return nil
}
