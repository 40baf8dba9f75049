package services

import (
	"testing"
	"time"
)

func TestSameCalendarDay(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"same instant", date(2024, 3, 5), date(2024, 3, 5), true},
		{"same day different hours",
			time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC), true},
		{"consecutive days", date(2024, 3, 5), date(2024, 3, 6), false},
		{"same day of different months", date(2024, 3, 5), date(2024, 4, 5), false},
		{"same date of different years", date(2023, 3, 5), date(2024, 3, 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameCalendarDay(tt.a, tt.b); got != tt.want {
				t.Errorf("sameCalendarDay(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
