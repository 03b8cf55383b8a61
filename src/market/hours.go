package market

import "time"

type Session string

const (
	SessionClosed   Session = "closed"
	SessionHoliday  Session = "holiday"
	SessionDeadZone Session = "dead_zone"
	SessionAsia     Session = "asia_session"
	SessionLondon   Session = "london_session"
	SessionUS       Session = "us_session"

	// CloseHour is the NY hour at which the FX week closes on Friday and
	// reopens on Sunday.
	CloseHour = 17
)

// Gate blocks trading while the FX market is closed.
type Gate struct {
	Enabled       bool
	BlockHolidays bool
}

func NewGate(cfg Config) Gate {
	return Gate{Enabled: cfg.EnableHoursGate, BlockHolidays: cfg.BlockHolidays}
}

// Closed reports whether now falls inside the weekly close (Friday 17:00 to
// Sunday 17:00 New York) or, when configured, on a US market holiday.
func (g Gate) Closed(now time.Time) bool {
	if !g.Enabled {
		return false
	}
	s := g.Session(now)
	return s == SessionClosed || s == SessionHoliday
}

// Session labels now in New York terms.
func (g Gate) Session(now time.Time) Session {
	et := newYork(now)

	if isWeeklyClose(et) {
		return SessionClosed
	}
	if g.BlockHolidays && isHoliday(et) {
		return SessionHoliday
	}

	switch {
	case isDeadZone(et):
		return SessionDeadZone
	case isAsiaSession(et):
		return SessionAsia
	case isLondonSession(et):
		return SessionLondon
	default:
		return SessionUS
	}
}

func newYork(t time.Time) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return t.UTC()
	}
	return t.In(loc)
}

func isWeeklyClose(t time.Time) bool {
	switch t.Weekday() {
	case time.Friday:
		return t.Hour() >= CloseHour
	case time.Saturday:
		return true
	case time.Sunday:
		return t.Hour() < CloseHour
	default:
		return false
	}
}

func isDeadZone(t time.Time) bool {
	return t.Hour() >= 17 && t.Hour() < 20
}

func isAsiaSession(t time.Time) bool {
	return t.Hour() >= 20 || t.Hour() < 3
}

func isLondonSession(t time.Time) bool {
	return t.Hour() >= 3 && t.Hour() < 9
}

func isHoliday(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for _, h := range usHolidays(t.Year()) {
		if h.Equal(day) {
			return true
		}
	}
	return false
}

// usHolidays lists the observed US market holidays of a year as UTC midnights.
func usHolidays(year int) []time.Time {
	lastMayMonday := time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	for lastMayMonday.Weekday() != time.Monday {
		lastMayMonday = lastMayMonday.AddDate(0, 0, -1)
	}
	return []time.Time{
		observed(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.January, time.Monday, 3),
		nthWeekday(year, time.February, time.Monday, 3),
		lastMayMonday,
		observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.September, time.Monday, 1),
		nthWeekday(year, time.November, time.Thursday, 4),
		observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)),
	}
}

// observed moves a Sunday holiday to the following Monday.
func observed(d time.Time) time.Time {
	if d.Weekday() == time.Sunday {
		return d.AddDate(0, 0, 1)
	}
	return d
}

// nthWeekday returns the n-th (1-based) given weekday of a month.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}
