package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		valid    bool
	}{
		{name: "Valid username", username: "jane", valid: true},
		{name: "Exactly three characters rejected", username: "abc", valid: false},
		{name: "Empty rejected", username: "", valid: false},
		{name: "Whitespace only rejected", username: "    ", valid: false},
		{name: "Long username accepted", username: "jane_doe_1990", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ValidateUsername(tt.username)
			if tt.valid {
				assert.Empty(t, msg)
			} else {
				assert.Contains(t, msg, "more than 3 characters")
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "Valid password", password: "password123", valid: true},
		{name: "Exactly eight characters accepted", password: "12345678", valid: true},
		{name: "Seven characters rejected", password: "1234567", valid: false},
		{name: "Empty rejected", password: "", valid: false},
		{name: "Whitespace only rejected", password: "         ", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ValidatePassword(tt.password)
			if tt.valid {
				assert.Empty(t, msg)
			} else {
				assert.Contains(t, msg, "not less than 8 characters")
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{name: "Valid email", email: "jane@example.com", valid: true},
		{name: "Subdomain accepted", email: "jane@mail.example.co.ke", valid: true},
		{name: "Missing at sign rejected", email: "jane.example.com", valid: false},
		{name: "Missing local part rejected", email: "@example.com", valid: false},
		{name: "Missing domain rejected", email: "jane@", valid: false},
		{name: "Domain without dot rejected", email: "jane@example", valid: false},
		{name: "Empty rejected", email: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ValidateEmail(tt.email)
			if tt.valid {
				assert.Empty(t, msg)
			} else {
				assert.Contains(t, msg, "Invalid Email")
			}
		})
	}
}
