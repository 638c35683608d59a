package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Viewport bounds accepted by layout requests.
const (
	MaxViewport = 16384
	MaxTicks    = 10000
)

// ValidateAssetID validates an asset or node identifier taken from user
// input (URL path, CLI argument). It rejects identifiers that could escape
// a cache path or break DOT/SVG output.
//
//   - No empty IDs
//   - Maximum length of 256 characters
//   - No control characters
//   - No path separators or traversal sequences
func ValidateAssetID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "asset id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "asset id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "asset id contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "asset id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateViewport validates layout dimensions.
func ValidateViewport(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidViewport, "viewport dimensions must be finite")
		}
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidViewport, "viewport must be positive, got %vx%v", width, height)
	}
	if width > MaxViewport || height > MaxViewport {
		return New(ErrCodeInvalidViewport, "viewport too large (max %d)", MaxViewport)
	}
	return nil
}

// ValidateTicks validates a tick budget.
func ValidateTicks(n int) error {
	if n <= 0 || n > MaxTicks {
		return New(ErrCodeInvalidInput, "ticks must be between 1 and %d, got %d", MaxTicks, n)
	}
	return nil
}

// formatRegex matches output format names.
var formatRegex = regexp.MustCompile(`^[a-z]+$`)

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed []string) error {
	if !formatRegex.MatchString(format) {
		return New(ErrCodeInvalidFormat, "invalid format %q", format)
	}
	for _, a := range allowed {
		if a == format {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
