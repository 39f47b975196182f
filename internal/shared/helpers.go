// Package shared provides common utility functions used across multiple
// packages in the vsix-sync codebase.
package shared

import (
	"fmt"
	"strings"
)

// NormalizeExtensionID lowercases a publisher.name extension identifier.
// Extension ids are case-insensitive everywhere in the tool.
func NormalizeExtensionID(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// SplitExtensionID splits an id into publisher and name. The second return
// is empty when the id has no dot separator.
func SplitExtensionID(id string) (string, string) {
	parts := strings.SplitN(NormalizeExtensionID(id), ".", 2)
	if len(parts) != 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
