// Package schema validates inbound topic envelopes before they reach the
// coordinator. Validation is per topic: required fields must be present and
// well formed. The coordinator only ever sees payloads that passed here.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seatflow/seating-service/internal/topic"
)

// ErrUnknownTopic indicates that no validation rules exist for a topic name.
// Callers treat unknown topics as a logged no-op rather than an error.
var ErrUnknownTopic = errors.New("unknown topic")

// ValidationError describes why an envelope was rejected. Field names the
// JSON field at fault.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Validate checks the raw envelope against the rules for the named topic.
// It returns ErrUnknownTopic for topics this service does not consume, a
// *ValidationError when a field is missing or malformed, and nil when the
// payload is safe to decode into its concrete type.
func Validate(topicName string, raw []byte) error {
	switch topicName {
	case topic.SeatRequestTopic:
		return validateSeatRequest(raw)
	case topic.PaymentConfirmedTopic:
		return validatePaymentConfirmed(raw)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topicName)
	}
}

func validateSeatRequest(raw []byte) error {
	var req topic.SeatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return &ValidationError{Field: "payload", Reason: "malformed SeatRequest"}
	}
	if req.CorrelatorID <= 0 {
		return &ValidationError{Field: "correlatorId", Reason: "must be a positive integer"}
	}
	if req.MovieName == "" {
		return &ValidationError{Field: "movieName", Reason: "is required"}
	}
	if req.SeatNumber == "" {
		return &ValidationError{Field: "seatNumber", Reason: "is required"}
	}
	if _, err := time.Parse(time.RFC3339, req.Showtime); err != nil {
		return &ValidationError{Field: "showtime", Reason: "must be an ISO-8601 timestamp with offset"}
	}
	return nil
}

func validatePaymentConfirmed(raw []byte) error {
	var req topic.PaymentConfirmed
	if err := json.Unmarshal(raw, &req); err != nil {
		return &ValidationError{Field: "payload", Reason: "malformed PaymentConfirmed"}
	}
	if req.CorrelatorID <= 0 {
		return &ValidationError{Field: "correlatorId", Reason: "must be a positive integer"}
	}
	return nil
}
