package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds entity names accepted from clients.
const maxNameLength = 256

// ValidateEntityName checks a name received from outside the process (a
// focus request, a fixture file) before it reaches the scene engine.
//
// Names come from the operating system's process table, so the rules are
// loose: non-empty, bounded length, no control characters. Slashes are
// allowed because some kernels report names like "kworker/0:1".
func ValidateEntityName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "entity name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "entity name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "entity name contains control characters")
		}
	}
	return nil
}
