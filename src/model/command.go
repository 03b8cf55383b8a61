package model

import "time"

// CommandState is the small integer the venue switches on.
type CommandState int

const (
	StateNoop     CommandState = 0
	StateOpenBuy  CommandState = 1
	StateOpenSell CommandState = 2
	StateClose    CommandState = 3
)

// OpenState returns the open command state for a direction.
func OpenState(d Direction) CommandState {
	if d == DirectionSell {
		return StateOpenSell
	}
	return StateOpenBuy
}

type CommandStatus string

const (
	CommandStatusQueued CommandStatus = "queued"
	CommandStatusSent   CommandStatus = "sent"
	CommandStatusAck    CommandStatus = "ack"
)

// CommandPayload is the free-form body of a command. Open commands carry the
// instrument, volume and optional SL/TP (absolute, or pip distances when
// PipDistance is set). Close commands carry the ticket.
type CommandPayload struct {
	Instrument  string    `json:"instrument"`
	Volume      float64   `json:"volume"`
	StopLoss    *float64  `json:"stop_loss,omitempty"`
	TakeProfit  *float64  `json:"take_profit,omitempty"`
	PipDistance bool      `json:"pip_distance,omitempty"`
	Ticket      *int64    `json:"ticket,omitempty"`
	Side        Direction `json:"side,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	TID         string    `json:"tid,omitempty"`
}

// CommandResult is what the venue reported on acknowledgement.
type CommandResult struct {
	Success bool     `json:"success"`
	Ticket  *int64   `json:"ticket,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Command is one instruction unit delivered to the venue.
type Command struct {
	ID       string         `gorm:"primaryKey;size:64" json:"id"`
	ClientID string         `gorm:"size:100;index" json:"client_id"`
	State    CommandState   `json:"state"`
	Payload  CommandPayload `gorm:"serializer:json" json:"payload"`
	Status   CommandStatus  `gorm:"size:10;not null" json:"status"`
	Result   *CommandResult `gorm:"serializer:json" json:"result,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	AckedAt   *time.Time `json:"acked_at,omitempty"`
}

func (Command) TableName() string {
	return "commands"
}

// Message is the outbound shape returned to a polling venue.
type Message struct {
	State      CommandState `json:"state"`
	CommandID  string       `json:"command_id,omitempty"`
	Instrument string       `json:"instrument,omitempty"`
	Volume     float64      `json:"volume,omitempty"`
	StopLoss   *float64     `json:"sl,omitempty"`
	TakeProfit *float64     `json:"tp,omitempty"`
	SLPips     *float64     `json:"sl_pips,omitempty"`
	TPPips     *float64     `json:"tp_pips,omitempty"`
	Ticket     *int64       `json:"ticket,omitempty"`
	Side       Direction    `json:"side,omitempty"`
	Comment    string       `json:"comment,omitempty"`
}
