package model

// Position is one venue-reported open or closed position.
type Position struct {
	Ticket int64   `json:"ticket"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Volume float64 `json:"volume"`
	Profit float64 `json:"profit"`
}

// Snapshot is the heartbeat payload a venue sends on every poll.
type Snapshot struct {
	ClientID    string     `json:"client_id"`
	Mode        string     `json:"mode"`
	Open        []Position `json:"open"`
	Closed      []Position `json:"closed"`
	OpenSymbols []string   `json:"open_symbols"`
	Strategy    string     `json:"strategy"`

	// Balance and Equity are only present on account-summary heartbeats.
	Balance *float64 `json:"balance,omitempty"`
	Equity  *float64 `json:"equity,omitempty"`
}

// HasAccount reports whether the snapshot carries an account summary.
func (s Snapshot) HasAccount() bool {
	return s.Balance != nil && s.Equity != nil
}
