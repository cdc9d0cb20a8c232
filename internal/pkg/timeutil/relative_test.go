package timeutil

import (
	"testing"
	"time"
)

func TestRelative(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		t        time.Time
		expected string
	}{
		{
			name:     "seconds ago is just now",
			t:        now.Add(-30 * time.Second),
			expected: "just now",
		},
		{
			name:     "one minute",
			t:        now.Add(-90 * time.Second),
			expected: "1 minute ago",
		},
		{
			name:     "minutes",
			t:        now.Add(-45 * time.Minute),
			expected: "45 minutes ago",
		},
		{
			name:     "one hour",
			t:        now.Add(-90 * time.Minute),
			expected: "1 hour ago",
		},
		{
			name:     "hours",
			t:        now.Add(-2 * time.Hour),
			expected: "2 hours ago",
		},
		{
			name:     "one day",
			t:        now.Add(-30 * time.Hour),
			expected: "1 day ago",
		},
		{
			name:     "days",
			t:        now.Add(-5 * 24 * time.Hour),
			expected: "5 days ago",
		},
		{
			name:     "one month",
			t:        now.Add(-40 * 24 * time.Hour),
			expected: "1 month ago",
		},
		{
			name:     "months",
			t:        now.Add(-100 * 24 * time.Hour),
			expected: "3 months ago",
		},
		{
			name:     "years",
			t:        now.Add(-3 * 365 * 24 * time.Hour),
			expected: "3 years ago",
		},
		{
			name:     "future timestamps clamp to just now",
			t:        now.Add(10 * time.Minute),
			expected: "just now",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Relative(tt.t, now)
			if got != tt.expected {
				t.Errorf("Relative(%v) = %q, want %q", tt.t, got, tt.expected)
			}
		})
	}
}
