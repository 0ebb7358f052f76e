package booking

import (
	"fmt"
	"time"

	"github.com/seatflow/seating-service/internal/model"
)

// HoldDecision is the result of scanning catalog snapshots for a hold
// request. When Eligible is true, Showing identifies the snapshot whose
// seat should transition to HOLDING. Otherwise Code and Reason describe the
// last failure recorded during the scan.
type HoldDecision struct {
	Eligible bool
	Showing  model.Showing
	Next     model.SeatStatus
	Code     FailureCode
	Reason   string
}

// DecideHold scans the given showings in catalog order and picks the first
// one whose seat map contains seatNumber, whose start time equals showtime
// after UTC normalization and whose seat is AVAILABLE. The first eligible
// showing wins; no best-match ranking is attempted. When no showing
// qualifies the decision carries the last failure recorded while scanning,
// and an empty catalog reports the title as unknown. DecideHold is pure: it
// never mutates the snapshots it is given.
func DecideHold(showings []model.Showing, seatNumber string, showtime time.Time) HoldDecision {
	if len(showings) == 0 {
		return HoldDecision{
			Code:   CodeMovieNotFound,
			Reason: "no showings found for the requested title",
		}
	}
	want := showtime.UTC()
	var d HoldDecision
	for _, s := range showings {
		status, ok := s.Seats[seatNumber]
		if !ok {
			d.Code = CodeSeatNotFound
			d.Reason = fmt.Sprintf("seat %s does not exist", seatNumber)
			continue
		}
		if !s.StartsAt.UTC().Equal(want) {
			d.Code = CodeShowtimeMismatch
			d.Reason = fmt.Sprintf("no showing of this title starts at %s", want.Format(time.RFC3339))
			continue
		}
		if status != model.SeatAvailable {
			d.Code = CodeSeatUnavailable
			d.Reason = fmt.Sprintf("seat %s is already booked/held", seatNumber)
			continue
		}
		return HoldDecision{Eligible: true, Showing: s, Next: model.SeatHolding}
	}
	return d
}

// DecideFinalize reports the terminal transition for an existing
// reservation: HOLDING -> BOOKED, unconditionally at the decision level.
// The persistence layer still verifies the seat is in HOLDING when it
// applies the write, and the coordinator trusts only the read-back status.
func DecideFinalize(res model.Reservation) model.SeatStatus {
	return model.SeatBooked
}
