package sched

import "time"

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// NextFunc computes the next fire time strictly after now.
type NextFunc func(now time.Time) time.Time

// DailyAt fires at the given times every day, in loc.
func DailyAt(loc *time.Location, times ...Clock) NextFunc {
	return func(now time.Time) time.Time {
		now = now.In(loc)
		best := time.Time{}
		for day := 0; day <= 1; day++ {
			base := now.AddDate(0, 0, day)
			for _, c := range times {
				at := time.Date(base.Year(), base.Month(), base.Day(), c.Hour, c.Minute, 0, 0, loc)
				if at.After(now) && (best.IsZero() || at.Before(best)) {
					best = at
				}
			}
		}
		return best
	}
}

// Yearly fires once a year at month/day hour:minute, in loc.
func Yearly(loc *time.Location, month time.Month, day int, c Clock) NextFunc {
	return func(now time.Time) time.Time {
		now = now.In(loc)
		at := time.Date(now.Year(), month, day, c.Hour, c.Minute, 0, 0, loc)
		if !at.After(now) {
			at = time.Date(now.Year()+1, month, day, c.Hour, c.Minute, 0, 0, loc)
		}
		return at
	}
}

// Every fires at a fixed interval, aligned to the interval boundary so
// restarts land on the same grid.
func Every(interval time.Duration) NextFunc {
	return func(now time.Time) time.Time {
		return now.Truncate(interval).Add(interval)
	}
}

// HourlyMinutes fires at the given minutes of every hour between fromHour
// and toHour inclusive, in loc.
func HourlyMinutes(loc *time.Location, minutes []int, fromHour, toHour int) NextFunc {
	var times []Clock
	for h := fromHour; h <= toHour; h++ {
		for _, m := range minutes {
			times = append(times, Clock{Hour: h, Minute: m})
		}
	}
	return DailyAt(loc, times...)
}
