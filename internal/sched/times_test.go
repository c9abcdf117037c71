package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var shanghai = time.FixedZone("CST", 8*3600)

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", value, shanghai)
	assert.NoError(t, err)
	return parsed
}

func TestDailyAtPicksEarliestUpcoming(t *testing.T) {
	next := DailyAt(shanghai, Clock{Hour: 17}, Clock{Hour: 18}, Clock{Hour: 19})

	assert.Equal(t, ts(t, "2026-08-28 17:00:00"), next(ts(t, "2026-08-28 09:30:00")))
	assert.Equal(t, ts(t, "2026-08-28 18:00:00"), next(ts(t, "2026-08-28 17:00:00")), "a slot never fires twice")
	assert.Equal(t, ts(t, "2026-08-29 17:00:00"), next(ts(t, "2026-08-28 19:30:00")), "rolls to tomorrow")
}

func TestYearlyRollsOver(t *testing.T) {
	next := Yearly(shanghai, time.January, 1, Clock{})

	assert.Equal(t, ts(t, "2027-01-01 00:00:00"), next(ts(t, "2026-08-28 12:00:00")))
	assert.Equal(t, ts(t, "2027-01-01 00:00:00"), next(ts(t, "2026-01-01 00:00:00")))
	assert.Equal(t, ts(t, "2026-01-01 00:00:00"), next(ts(t, "2025-12-31 23:59:59")))
}

func TestEveryAlignsToGrid(t *testing.T) {
	next := Every(15 * time.Second)

	at := next(ts(t, "2026-08-28 09:30:07"))
	assert.Equal(t, ts(t, "2026-08-28 09:30:15").Unix(), at.Unix())

	at = next(ts(t, "2026-08-28 09:30:15"))
	assert.Equal(t, ts(t, "2026-08-28 09:30:30").Unix(), at.Unix())
}

func TestHourlyMinutesWindow(t *testing.T) {
	next := HourlyMinutes(shanghai, []int{10, 30, 50}, 8, 21)

	assert.Equal(t, ts(t, "2026-08-28 08:10:00"), next(ts(t, "2026-08-28 07:59:00")), "before the window")
	assert.Equal(t, ts(t, "2026-08-28 09:30:00"), next(ts(t, "2026-08-28 09:10:00")))
	assert.Equal(t, ts(t, "2026-08-28 10:10:00"), next(ts(t, "2026-08-28 09:50:00")))
	assert.Equal(t, ts(t, "2026-08-29 08:10:00"), next(ts(t, "2026-08-28 21:50:00")), "after the window")
}
