package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"newsexecutor/src/calendar"
	"newsexecutor/src/model"
)

// CalendarRepository stores calendar rows and serves them back as a
// calendar.Source.
type CalendarRepository struct {
	db *gorm.DB

	Lookback time.Duration
	Horizon  time.Duration
	Now      func() time.Time
}

func NewCalendarRepositoryWithDB(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{
		db:       db,
		Lookback: 24 * time.Hour,
		Horizon:  7 * 24 * time.Hour,
	}
}

// SaveRows upserts rows on (event_date, currency, event) and returns how many
// were written. Rows with an unreadable date are skipped.
func (r *CalendarRepository) SaveRows(ctx context.Context, rows []calendar.Row, source string) (int, error) {
	saved := 0
	for _, row := range rows {
		at, err := calendar.ParseTime(row.Date)
		if err != nil {
			continue
		}
		m := model.CalendarEntry{
			EventDate: at,
			Currency:  strings.ToUpper(strings.TrimSpace(row.Currency)),
			Event:     strings.TrimSpace(row.Event),
			Impact:    row.Impact,
			Source:    source,
		}

		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "event_date"}, {Name: "currency"}, {Name: "event"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"impact",
					"source",
					"updated_at",
				}),
			}).
			Create(&m).Error; err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

// LoadRows returns stored rows scheduled inside [fromUTC, toUTC], filtered by
// currency when currencies is not empty.
func (r *CalendarRepository) LoadRows(
	ctx context.Context,
	fromUTC time.Time,
	toUTC time.Time,
	currencies []string,
) ([]calendar.Row, error) {
	var entries []model.CalendarEntry

	q := r.db.WithContext(ctx).
		Where("event_date >= ? AND event_date <= ?", fromUTC.UTC(), toUTC.UTC())

	if len(currencies) > 0 {
		q = q.Where("currency IN ?", currencies)
	}

	if err := q.Order("event_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}

	rows := make([]calendar.Row, 0, len(entries))
	for _, m := range entries {
		rows = append(rows, calendar.Row{
			Date:     m.EventDate.UTC().Format(calendar.RowTimeLayout),
			Event:    m.Event,
			Currency: m.Currency,
			Impact:   m.Impact,
		})
	}
	return rows, nil
}

// Rows loads the stored window around now.
func (r *CalendarRepository) Rows(ctx context.Context) ([]calendar.Row, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	at := now()
	return r.LoadRows(ctx, at.Add(-r.Lookback), at.Add(r.Horizon), nil)
}
