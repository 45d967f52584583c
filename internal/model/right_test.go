package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRight(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	right := NewRight("t1", "u1", "cs_1", start)

	assert.Equal(t, start, right.StartDate)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), right.EndDate)
	assert.True(t, right.IsActive)
	assert.Equal(t, "cs_1", right.PaymentReference)
}

func TestNewRight_LeapDay(t *testing.T) {
	start := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	right := NewRight("t1", "u1", "cs_1", start)

	// AddDate 會正規化為 3/1
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), right.EndDate)
}

func TestRight_Standing(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		end      time.Time
		active   bool
		expected Standing
		daysLeft int
	}{
		{"active far from end", now.AddDate(0, 0, 200), true, StandingActive, 200},
		{"exactly 31 days", now.AddDate(0, 0, 31), true, StandingActive, 31},
		{"exactly 30 days", now.AddDate(0, 0, 30), true, StandingExpiringSoon, 30},
		{"partial day rounds up", now.Add(29*24*time.Hour + time.Hour), true, StandingExpiringSoon, 30},
		{"last hour", now.Add(time.Hour), true, StandingExpiringSoon, 1},
		{"ends now", now, true, StandingActive, 0},
		{"expired", now.Add(-time.Second), true, StandingExpired, 0},
		{"revoked wins over expiring", now.AddDate(0, 0, 10), false, StandingRevoked, 10},
		{"revoked and expired", now.AddDate(0, 0, -10), false, StandingRevoked, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			right := &Right{EndDate: tt.end, IsActive: tt.active}
			assert.Equal(t, tt.expected, right.Standing(now))
			assert.Equal(t, tt.daysLeft, right.DaysLeft(now))
		})
	}
}
