package model

import (
	"fmt"
	"time"
)

// EventTimeLayout is the timestamp layout used inside event keys.
const EventTimeLayout = "2006.01.02 15:04"

// MaxFetchAttempts is the number of failed acquisition attempts after which an
// event is abandoned.
const MaxFetchAttempts = 3

// NewsEvent is one scheduled or observed macro release.
type NewsEvent struct {
	ID uint `gorm:"primaryKey" json:"-"`

	Key      string `gorm:"column:event_key;size:160;uniqueIndex;not null" json:"key"`
	GroupKey string `gorm:"column:group_key;size:120;index" json:"group_key"`

	Currency    string    `gorm:"size:10;index" json:"currency"`
	Name        string    `gorm:"size:255" json:"name"`
	Impact      string    `gorm:"size:20" json:"impact"`
	ScheduledAt time.Time `gorm:"index" json:"scheduled_at"`

	Forecast *float64 `json:"forecast"`
	Actual   *float64 `json:"actual"`
	Affect   Affect   `gorm:"size:10" json:"affect,omitempty"`

	RetryCount int    `json:"retry_count"`
	Abandoned  bool   `json:"abandoned"`
	NID        *int64 `gorm:"column:nid;index" json:"nid"`

	PairsAffected int `json:"pairs_affected"`
	PairsExecuted int `json:"pairs_executed"`
	TPHits        int `gorm:"column:tp_hits" json:"tp_hits"`
	SLHits        int `gorm:"column:sl_hits" json:"sl_hits"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NewsEvent) TableName() string {
	return "news_events"
}

// GroupKeyFor is the aggregation key: currency plus formatted timestamp.
func GroupKeyFor(currency string, at time.Time) string {
	return fmt.Sprintf("%s_%s", currency, at.UTC().Format(EventTimeLayout))
}

// Monitored reports whether the event still waits for its actual value.
func (e *NewsEvent) Monitored() bool {
	return e.Actual == nil && !e.Abandoned
}

// Description is the short human label carried onto trades and prompts.
func (e *NewsEvent) Description() string {
	return fmt.Sprintf("%s %s %s", e.ScheduledAt.UTC().Format(EventTimeLayout), e.Currency, e.Name)
}

// AffectedInstrument is a verdict for one instrument, pending execution in the
// current pass.
type AffectedInstrument struct {
	Instrument      string    `json:"instrument"`
	EventKey        string    `json:"event_key"`
	Description     string    `json:"description"`
	Direction       Direction `json:"direction"`
	NID             int64     `json:"nid"`
	TriggerCurrency string    `json:"trigger_currency"`
}
