package market

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Boundary tracks the recurring weekly reset instant. It is evaluated on
// demand, there is no background scheduler.
type Boundary struct {
	schedule cron.Schedule
	next     time.Time
}

// NewBoundary parses a standard 5-field cron expression, optionally prefixed
// with CRON_TZ=<zone>, and arms the first occurrence after now.
func NewBoundary(spec string, now time.Time) (*Boundary, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse weekly reset schedule %q: %w", spec, err)
	}
	return &Boundary{schedule: schedule, next: schedule.Next(now)}, nil
}

// Due reports whether the armed instant has passed. A due boundary re-arms to
// the next occurrence after now, so several missed weeks fire once.
func (b *Boundary) Due(now time.Time) bool {
	if b == nil || now.Before(b.next) {
		return false
	}
	b.next = b.schedule.Next(now)
	return true
}

func (b *Boundary) Next() time.Time {
	if b == nil {
		return time.Time{}
	}
	return b.next
}
