package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOf_KeepsWallClockDay(t *testing.T) {
	pacific := time.FixedZone("PST", -8*60*60)
	evening := time.Date(2024, time.March, 4, 20, 0, 0, 0, pacific) // already March 5 in UTC

	tests := []struct {
		name string
		t    time.Time
		want Date
	}{
		{name: "utc", t: time.Date(2024, time.March, 4, 23, 59, 0, 0, time.UTC), want: NewDate(2024, time.March, 4)},
		{name: "behind utc", t: evening, want: NewDate(2024, time.March, 4)},
		{name: "ahead of utc", t: time.Date(2024, time.March, 5, 1, 0, 0, 0, time.FixedZone("CET", 3600)), want: NewDate(2024, time.March, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateOf(tt.t)
			assert.True(t, got.Equal(tt.want), "DateOf(%v) = %v, want %v", tt.t, got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	assert.False(t, SameDay(evening, evening.UTC()), "each side uses its own wall clock")
}
