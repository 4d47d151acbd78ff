package ai

import (
	"fmt"
	"strings"
)

const (
	anthropicKeyPrefix = "sk-ant-api03-"
	// PlaceholderKey is the value shipped in sample env files.
	PlaceholderKey = "REPLACE_WITH_YOUR_API_KEY"
)

// IsConfiguredKey reports whether key is set to something other than the
// sample placeholder.
func IsConfiguredKey(key string) bool {
	return key != "" && key != PlaceholderKey
}

// CheckKeyFormat verifies an Anthropic key looks well-formed without calling
// the API.
func CheckKeyFormat(key string) error {
	if !IsConfiguredKey(key) {
		return ErrNotConfigured
	}
	if !strings.HasPrefix(key, anthropicKeyPrefix) {
		return fmt.Errorf("%w: expected prefix %s", ErrInvalidKeyFormat, anthropicKeyPrefix)
	}
	return nil
}

// MaskKey shows the first 15 and last 8 characters of a key.
func MaskKey(key string) string {
	if len(key) <= 23 {
		return strings.Repeat("*", len(key))
	}
	return key[:15] + "..." + key[len(key)-8:]
}
