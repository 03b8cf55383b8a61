package queue

import "errors"

// Unknown-reference failures. Their text is the error kind reported to the venue.
var (
	ErrCommandNotFound     = errors.New("command_not_found")
	ErrAlreadyAcknowledged = errors.New("already_acknowledged")
	ErrTradeNotFound       = errors.New("trade_not_found")
	ErrNoTicket            = errors.New("no_ticket")
	ErrInvalidOutcome      = errors.New("invalid_outcome")
	ErrTradeClosed         = errors.New("trade_closed")
)

// Kind returns the short error kind for err, or "internal" when err is not
// one of the package errors.
func Kind(err error) string {
	for _, known := range []error{
		ErrCommandNotFound, ErrAlreadyAcknowledged, ErrTradeNotFound,
		ErrNoTicket, ErrInvalidOutcome, ErrTradeClosed,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal"
}
