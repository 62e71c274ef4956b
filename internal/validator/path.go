package validator

import (
	"errors"
	"strings"
)

var dangerousPathChars = []string{"<", ">", "\"", "'", ";", "&", "|", "`", "$", "(", ")", "{", "}", "[", "]", "\\", "\n", "\r", "\t", " "}

// ValidateRoutePath checks a configurable HTTP route such as the callback path.
func ValidateRoutePath(path string) error {
	if path == "" {
		return errors.New("route path is required")
	}
	if !strings.HasPrefix(path, "/") {
		return errors.New("route path must start with '/'")
	}

	// Prevent path traversal
	if strings.Contains(path, "..") {
		return errors.New("route path cannot contain '..'")
	}
	for _, char := range dangerousPathChars {
		if strings.Contains(path, char) {
			return errors.New("route path contains invalid characters")
		}
	}
	return nil
}
