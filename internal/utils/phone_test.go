package utils

import (
	"testing"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
	}{
		{
			name:        "Indian mobile with country code",
			input:       "+919876543210",
			expected:    "+919876543210",
			shouldError: false,
		},
		{
			name:        "Indian mobile without country code",
			input:       "9876543210",
			expected:    "+919876543210",
			shouldError: false,
		},
		{
			name:        "Indian mobile with spaces",
			input:       "98765 43210",
			expected:    "+919876543210",
			shouldError: false,
		},
		{
			name:        "Indian mobile with dashes",
			input:       "98765-43210",
			expected:    "+919876543210",
			shouldError: false,
		},
		{
			name:        "leading and trailing spaces",
			input:       "  9876543210  ",
			expected:    "+919876543210",
			shouldError: false,
		},
		{
			name:        "international format with country code",
			input:       "+91 98765 43210",
			expected:    "+919876543210",
			shouldError: false,
		},
		{
			name:        "UK mobile with country code",
			input:       "+447911123456",
			expected:    "+447911123456",
			shouldError: false,
		},
		{
			name:        "too short",
			input:       "123",
			expected:    "",
			shouldError: true,
		},
		{
			name:        "letters",
			input:       "abcdefghij",
			expected:    "",
			shouldError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expected:    "",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhoneNumber(tt.input)
			if tt.shouldError {
				if err == nil {
					t.Errorf("NormalizePhoneNumber(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Errorf("NormalizePhoneNumber(%q) unexpected error: %v", tt.input, err)
				return
			}
			if got != tt.expected {
				t.Errorf("NormalizePhoneNumber(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
