package headcount

import (
	"math"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		adults   int
		teens    int
		children int
		expected float64
	}{
		{
			name:     "all zero",
			adults:   0,
			teens:    0,
			children: 0,
			expected: 0,
		},
		{
			name:     "adults only",
			adults:   4,
			teens:    0,
			children: 0,
			expected: 4.0,
		},
		{
			name:     "teens count as three quarters",
			adults:   0,
			teens:    2,
			children: 0,
			expected: 1.5,
		},
		{
			name:     "children count as three tenths",
			adults:   0,
			teens:    0,
			children: 3,
			expected: 0.9,
		},
		{
			name:     "mixed family",
			adults:   2,
			teens:    1,
			children: 1,
			expected: 3.05,
		},
		{
			name:     "two adults one child",
			adults:   2,
			teens:    0,
			children: 1,
			expected: 2.3,
		},
		{
			name:     "large party",
			adults:   10,
			teens:    4,
			children: 5,
			expected: 14.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.adults, tt.teens, tt.children)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Compute(%d, %d, %d) = %v, want %v", tt.adults, tt.teens, tt.children, got, tt.expected)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "already two decimals", input: 3.05, expected: 3.05},
		{name: "repeating third", input: 1.0 / 3.0, expected: 0.33},
		{name: "rounds up", input: 2.556, expected: 2.56},
		{name: "zero", input: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round2(tt.input); got != tt.expected {
				t.Errorf("Round2(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
