package auth

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	// MinPasswordLen is the shortest password accepted anywhere in the portal.
	MinPasswordLen = 8
	maxPasswordLen = 72
)

// ValidateUsername checks length and the allowed character set.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("Username is required")
	}
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return errors.New("Username must be between 3 and 32 characters")
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return errors.New("Username can only contain letters, numbers, dot (.), underscore (_), and hyphen (-)")
		}
	}
	return nil
}

// ValidatePassword checks a new password and its confirmation. bcrypt only
// looks at the first 72 bytes, so longer passwords are refused.
func ValidatePassword(password, confirm string) error {
	if len(password) < MinPasswordLen {
		return errors.New("Password must be at least 8 characters")
	}
	if len(password) > maxPasswordLen {
		return errors.New("Password must be at most 72 bytes")
	}
	if password != confirm {
		return errors.New("Passwords do not match")
	}
	return nil
}
