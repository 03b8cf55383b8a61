package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSourceMissing is returned when the calendar feed cannot be found at all.
var ErrSourceMissing = errors.New("calendar source missing")

// Row is one calendar entry: scheduled time, event name, currency and impact.
type Row struct {
	Date     string `csv:"date" json:"date"`
	Event    string `csv:"event" json:"event"`
	Currency string `csv:"currency" json:"currency"`
	Impact   string `csv:"impact" json:"impact"`
}

// Source yields calendar rows in feed order.
type Source interface {
	Rows(ctx context.Context) ([]Row, error)
}

// Static is an in-memory Source.
type Static []Row

func (s Static) Rows(_ context.Context) ([]Row, error) {
	return append([]Row(nil), s...), nil
}

// RowTimeLayout is the layout written by this package.
const RowTimeLayout = "2006.01.02 15:04"

var rowTimeLayouts = []string{
	RowTimeLayout,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006.01.02 15:04:05",
	"2006-01-02T15:04:05.000Z",
	time.RFC3339,
}

// ParseTime parses a row timestamp. Times without a zone are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range rowTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse calendar time %q: %w", s, lastErr)
}
