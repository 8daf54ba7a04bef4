package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateTruncatesToUTCMidnight(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2026, 3, 5, 23, 45, 0, 0, ist)

	got := Date(in)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, DaysBetween(start, start.AddDate(0, 0, 10)))
	assert.Equal(t, 0, DaysBetween(start, start))
	assert.Equal(t, -3, DaysBetween(start, start.AddDate(0, 0, -3)))

	// Wall-clock noise on either side must not change the day count.
	assert.Equal(t, 4, DaysBetween(start.Add(18*time.Hour), start.AddDate(0, 0, 4).Add(2*time.Hour)))
}
