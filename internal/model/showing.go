package model

import "time"

// SeatStatus enumerates the lifecycle states of a single seat within a
// showing. Transitions are monotonic per reservation lifecycle:
// AVAILABLE -> HOLDING -> BOOKED. HOLDING -> AVAILABLE happens only when an
// expired hold is released; BOOKED is terminal.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHolding   SeatStatus = "HOLDING"
	SeatBooked    SeatStatus = "BOOKED"
)

// Showing represents a movie title scheduled at a specific start time with
// its own independent seat map. StartsAt is normalized to UTC at ingestion.
// Seats maps a seat label such as "A5" to its current status; the set of
// labels is fixed when the showing is created and only the status values
// change afterwards.
type Showing struct {
	ID        uint64                // showings.id
	Title     string                // showings.title
	StartsAt  time.Time             // showings.starts_at (UTC)
	Seats     map[string]SeatStatus // showing_seats rows keyed by seat_label
	CreatedAt time.Time             // showings.created_at
	UpdatedAt time.Time             // showings.updated_at
}
