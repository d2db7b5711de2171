package service

import (
	"time"

	"go-poll-scheduler/core/interval"
)

const week = 7 * 24 * time.Hour

// NewWindow returns the query window for a poll issued at now and covering
// weeks weeks. Start is midnight UTC of the current day, End is 23:59:59 UTC
// of the current day plus weeks, and StartStrict is now itself. All bounds
// are epoch milliseconds.
func NewWindow(now time.Time, weeks int) interval.Window {
	now = now.UTC()
	morning := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	evening := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	return interval.Window{
		Start:       morning.UnixMilli(),
		StartStrict: now.UnixMilli(),
		End:         evening.Add(time.Duration(weeks) * week).UnixMilli(),
	}
}
