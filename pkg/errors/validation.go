package errors

import (
	"strings"
	"unicode"
)

// maxIDLength caps tile and group identifiers.
const maxIDLength = 128

// ValidateID validates a tile or group identifier.
//
// Identifiers travel through URLs, store keys and terminal output, so the
// rules are conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - No slashes or backslashes
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "id %q contains whitespace or control characters", id)
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "id %q cannot contain path separators", id)
	}

	return nil
}

// ValidateLabel validates a group label. Labels are opaque to the engine;
// only control characters other than tab are rejected.
func ValidateLabel(label string) error {
	for _, r := range label {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateDocumentName validates the name a layout document is stored
// under. Names become file paths and store keys, so traversal sequences are
// rejected.
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "document name cannot be empty")
	}

	const maxNameLength = 256
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPath, "document name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "document name contains invalid characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPath, "document name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "document name cannot be hidden")
	}

	return nil
}
