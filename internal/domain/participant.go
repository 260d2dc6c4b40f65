package domain

// Participant is one roster entry fetched from the external tournament
// service. Number is the starting rank the pairing engine keys players by
// (PlayerRecord.Number); IDs reference the tournament service's own records.
type Participant struct {
	ID     uint64
	Name   string
	Number int
}
