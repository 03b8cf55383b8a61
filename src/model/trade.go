package model

import (
	"fmt"
	"time"
)

type TradeStatus string

const (
	TradeStatusQueued   TradeStatus = "queued"
	TradeStatusExecuted TradeStatus = "executed"
	TradeStatusTP       TradeStatus = "TP"
	TradeStatusSL       TradeStatus = "SL"
	// TradeStatusClosed marks a position closed by an explicit close command.
	TradeStatusClosed TradeStatus = "closed"
	// TradeStatusRejected marks an open command the venue failed to execute.
	TradeStatusRejected TradeStatus = "rejected"
)

func (s TradeStatus) rank() int {
	switch s {
	case TradeStatusQueued:
		return 0
	case TradeStatusExecuted:
		return 1
	default:
		return 2
	}
}

// Terminal reports whether no further transition is allowed.
func (s TradeStatus) Terminal() bool { return s.rank() == 2 }

// CanAdvance reports whether moving from s to next keeps the lifecycle monotone.
func (s TradeStatus) CanAdvance(next TradeStatus) bool {
	return !s.Terminal() && next.rank() > s.rank()
}

// Outcome is a venue-reported trade closure.
type Outcome string

const (
	OutcomeTP Outcome = "TP"
	OutcomeSL Outcome = "SL"
)

// TID formats a trade identifier for a news identifier and sequence.
func TID(nid int64, seq int) string {
	return fmt.Sprintf("TID_%d_%d", nid, seq)
}

// Trade is one order lifecycle record.
type Trade struct {
	TID        string      `gorm:"column:tid;primaryKey;size:64" json:"tid"`
	ClientID   string      `gorm:"size:100;index" json:"client_id"`
	Instrument string      `gorm:"size:30;index" json:"instrument"`
	Direction  Direction   `gorm:"size:4" json:"direction"`
	Volume     float64     `json:"volume"`
	TakeProfit *float64    `json:"take_profit,omitempty"`
	StopLoss   *float64    `json:"stop_loss,omitempty"`
	Comment    string      `gorm:"size:255" json:"comment"`
	Status     TradeStatus `gorm:"size:20;not null;default:queued" json:"status"`

	NID             int64  `gorm:"column:nid;index" json:"nid"`
	EventKey        string `gorm:"size:160" json:"event_key"`
	TriggerCurrency string `gorm:"size:10" json:"trigger_currency"`
	CommandID       string `gorm:"size:64;index" json:"command_id"`
	Ticket          *int64 `gorm:"index" json:"ticket,omitempty"`

	// ExposureReleased is set once the ledger has been decremented for this trade.
	ExposureReleased bool `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Trade) TableName() string {
	return "trades"
}
