package model

import "time"

// CalendarEntry is a stored economic calendar row. Rows are unique per
// scheduled time, currency and event name.
type CalendarEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventDate time.Time `gorm:"uniqueIndex:idx_calendar_entry;not null" json:"event_date"`
	Currency  string    `gorm:"size:10;uniqueIndex:idx_calendar_entry;not null" json:"currency"`
	Event     string    `gorm:"size:255;uniqueIndex:idx_calendar_entry;not null" json:"event"`
	Impact    string    `gorm:"size:20" json:"impact"`
	Source    string    `gorm:"size:40" json:"source"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CalendarEntry) TableName() string {
	return "calendar_entries"
}
