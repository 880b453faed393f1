package errors

import (
	"strings"
	"unicode"
)

// ValidateID validates a person or relationship identifier for safety.
// IDs appear in URL paths, cache keys, and file names, so the rules are
// intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "id too long (max 128 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "id contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateRelationshipLabel validates a relationship type label.
// Labels are free-form text ("parent", "spouse", "godmother") but must be
// printable and short enough to render.
func ValidateRelationshipLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidRelationship, "relationship type cannot be empty")
	}

	if len(label) > 64 {
		return New(ErrCodeInvalidRelationship, "relationship type too long (max 64 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRelationship, "relationship type contains invalid control characters")
		}
	}

	return nil
}

// ValidateLink validates a URL string stored on a member record.
// It ensures the URL has a safe scheme (http or https).
func ValidateLink(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
