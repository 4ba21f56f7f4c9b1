package utils

import (
	"strings"
)

// ValidateUsername checks registration/login username rules.
// Returns a human-readable message or "" when valid.
func ValidateUsername(username string) string {
	if len(username) <= 3 || strings.TrimSpace(username) == "" {
		return "Invalid username. Ensure username has more than 3 characters"
	}
	return ""
}

// ValidatePassword checks registration password rules
func ValidatePassword(password string) string {
	if len(password) < 8 || strings.TrimSpace(password) == "" {
		return "Invalid password. Ensure password is a string of not less than 8 characters"
	}
	return ""
}

// ValidateEmail checks that an email address looks deliverable
func ValidateEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	at := strings.Index(trimmed, "@")
	if trimmed == "" || at <= 0 || at == len(trimmed)-1 || !strings.Contains(trimmed[at:], ".") {
		return `Invalid Email. Ensure email is valid and is of form "example@mail.com"`
	}
	return ""
}
