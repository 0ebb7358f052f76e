// Package queue defines message payloads exchanged over the message broker
// and the background consumer for payment confirmations.
package queue

// SeatBookedEvent is published to the seat.booked queue after a finalize
// confirms a booking. It carries enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// catalog.
type SeatBookedEvent struct {
	EventID      string `json:"event_id"`
	CorrelatorID int64  `json:"correlator_id"`
	ShowingID    uint64 `json:"showing_id"`
	MovieName    string `json:"movie_name"`
	SeatNumber   string `json:"seat_number"`
	Showtime     string `json:"showtime"`
	BookedAt     string `json:"booked_at"`
}

// PaymentConfirmedEvent arrives on the payment.confirmed queue when the
// payment service settles a charge for a held seat. The correlator id
// selects which hold to finalize.
type PaymentConfirmedEvent struct {
	EventID      string `json:"event_id"`
	CorrelatorID int64  `json:"correlator_id"`
	ConfirmedAt  string `json:"confirmed_at"`
}
