package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"newsexecutor/src/model"
)

// Commands is the per-client append-only command list. It is not safe for
// concurrent use.
type Commands struct {
	lists map[string][]*model.Command
	byID  map[string]*model.Command
	now   func() time.Time
	newID func() string
}

func NewCommands(now func() time.Time) *Commands {
	if now == nil {
		now = time.Now
	}
	return &Commands{
		lists: map[string][]*model.Command{},
		byID:  map[string]*model.Command{},
		now:   now,
		newID: uuid.NewString,
	}
}

// Enqueue appends a new command for clientID.
func (c *Commands) Enqueue(clientID string, state model.CommandState, payload model.CommandPayload) model.Command {
	cmd := &model.Command{
		ID:        c.newID(),
		ClientID:  clientID,
		State:     state,
		Payload:   payload,
		Status:    model.CommandStatusQueued,
		CreatedAt: c.now(),
	}
	c.lists[clientID] = append(c.lists[clientID], cmd)
	c.byID[cmd.ID] = cmd
	return *cmd
}

// NextPending returns the first unacknowledged command in insertion order and
// marks it sent. The same command is returned until it is acknowledged. A
// no-op message is returned when nothing is pending.
func (c *Commands) NextPending(clientID string) (model.Message, *model.Command) {
	for _, cmd := range c.lists[clientID] {
		if cmd.Status == model.CommandStatusAck {
			continue
		}
		if cmd.Status == model.CommandStatusQueued {
			at := c.now()
			cmd.Status = model.CommandStatusSent
			cmd.SentAt = &at
		}
		out := *cmd
		return Shape(cmd), &out
	}
	return model.Message{State: model.StateNoop}, nil
}

// Shape builds the outbound message for a command.
func Shape(cmd *model.Command) model.Message {
	p := cmd.Payload
	msg := model.Message{
		State:      cmd.State,
		CommandID:  cmd.ID,
		Instrument: p.Instrument,
		Volume:     p.Volume,
		Comment:    p.Comment,
	}
	switch cmd.State {
	case model.StateOpenBuy, model.StateOpenSell:
		if p.PipDistance {
			msg.SLPips, msg.TPPips = p.StopLoss, p.TakeProfit
		} else {
			msg.StopLoss, msg.TakeProfit = p.StopLoss, p.TakeProfit
		}
	case model.StateClose:
		msg.Ticket = p.Ticket
		msg.Side = p.Side
	}
	return msg
}

// Ack records the venue outcome exactly once. An empty clientID matches any
// client.
func (c *Commands) Ack(clientID, cmdID string, result model.CommandResult) (model.Command, error) {
	cmd, ok := c.byID[cmdID]
	if !ok || (clientID != "" && cmd.ClientID != clientID) {
		return model.Command{}, fmt.Errorf("ack %s: %w", cmdID, ErrCommandNotFound)
	}
	if cmd.Status == model.CommandStatusAck {
		return *cmd, fmt.Errorf("ack %s: %w", cmdID, ErrAlreadyAcknowledged)
	}
	at := c.now()
	cmd.Status = model.CommandStatusAck
	cmd.AckedAt = &at
	cmd.Result = &result
	return *cmd, nil
}

func (c *Commands) Get(cmdID string) (model.Command, bool) {
	cmd, ok := c.byID[cmdID]
	if !ok {
		return model.Command{}, false
	}
	return *cmd, true
}

// List returns copies of every command for clientID in insertion order.
func (c *Commands) List(clientID string) []model.Command {
	out := make([]model.Command, 0, len(c.lists[clientID]))
	for _, cmd := range c.lists[clientID] {
		out = append(out, *cmd)
	}
	return out
}

// Pending counts unacknowledged commands for clientID.
func (c *Commands) Pending(clientID string) int {
	n := 0
	for _, cmd := range c.lists[clientID] {
		if cmd.Status != model.CommandStatusAck {
			n++
		}
	}
	return n
}
