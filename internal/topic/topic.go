// Package topic defines the message envelopes exchanged between the seating
// service and its collaborators. Every envelope carries a topicName used for
// dispatch and a correlatorId linking a request to its later confirmation.
package topic

import "time"

// Topic names understood by this service or dispatched to collaborators.
const (
	SeatRequestTopic      = "SeatRequest"
	SeatResponseTopic     = "SeatResponse"
	PaymentRequestTopic   = "PaymentRequest"
	PaymentConfirmedTopic = "PaymentConfirmed"
)

// Status enumerates the outcome states reported on a SeatResponse.
type Status string

const (
	StatusHolding   Status = "HOLDING"
	StatusBooked    Status = "BOOKED"
	StatusFailed    Status = "FAILED"
	StatusConfirmed Status = "CONFIRMED"
)

// Envelope carries the fields common to every inbound message. Handlers peek
// at TopicName to decide which concrete payload to decode.
type Envelope struct {
	TopicName    string `json:"topicName"`
	CorrelatorID int64  `json:"correlatorId"`
}

// SeatRequest asks the service to hold one seat for a showing. Showtime is
// an ISO-8601 timestamp with offset; it is normalized to UTC before any
// comparison against the catalog.
type SeatRequest struct {
	TopicName    string `json:"topicName"`
	CorrelatorID int64  `json:"correlatorId"`
	MovieName    string `json:"movieName"`
	Showtime     string `json:"showtime"`
	SeatNumber   string `json:"seatNumber"`
}

// PaymentConfirmed reports that the payment step for a held seat completed.
// The correlator id identifies which hold to finalize.
type PaymentConfirmed struct {
	TopicName    string `json:"topicName"`
	CorrelatorID int64  `json:"correlatorId"`
}

// PaymentRequest is dispatched to the payment topic after a seat was
// successfully held.
type PaymentRequest struct {
	TopicName    string `json:"topicName"`
	CorrelatorID int64  `json:"correlatorId"`
	MovieName    string `json:"movieName"`
	SeatNumber   string `json:"seatNumber"`
	Showtime     string `json:"showtime"`
}

// SeatResponse reports the outcome of a hold or finalize back to the
// requesting service. It is produced once and never mutated.
type SeatResponse struct {
	TopicName    string    `json:"topicName"`
	CorrelatorID int64     `json:"correlatorId"`
	Status       Status    `json:"status"`
	MovieName    string    `json:"movieName"`
	SeatNumber   string    `json:"seatNumber"`
	Showtime     string    `json:"showtime"`
	Timestamp    time.Time `json:"timestamp"`
}
