package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// MaxNodeNameLength bounds node names accepted from the command line and
// interchange files.
const MaxNodeNameLength = 256

// ValidateNodeName validates a node name supplied by a user.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of [MaxNodeNameLength] bytes
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidNode, "node name cannot be empty")
	}

	if len(name) > MaxNodeNameLength {
		return New(ErrCodeInvalidNode, "node name too long (max %d characters)", MaxNodeNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node name contains invalid control characters")
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidNode, "node name %q has surrounding whitespace", name)
	}

	return nil
}

// ValidatePath validates a scene or output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not name a directory (".", "/" or a trailing separator)
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

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}
	if base := filepath.Base(path); base == "." || base == ".." || base == string(filepath.Separator) {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}

// ValidateFormat checks that format is one of allowed (case-insensitive).
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, strings.ToLower(format)) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
