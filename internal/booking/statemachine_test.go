package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatflow/seating-service/internal/booking"
	"github.com/seatflow/seating-service/internal/model"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func seatMap(statuses map[string]model.SeatStatus) map[string]model.SeatStatus {
	seats := map[string]model.SeatStatus{
		"A1": model.SeatAvailable,
		"A2": model.SeatAvailable,
		"A3": model.SeatAvailable,
		"A4": model.SeatAvailable,
		"A5": model.SeatAvailable,
	}
	for label, status := range statuses {
		seats[label] = status
	}
	return seats
}

func TestDecideHold(t *testing.T) {
	showtime := mustParse(t, "2025-11-10T21:45:00-06:00")

	testCases := []struct {
		name         string
		showings     []model.Showing
		seatNumber   string
		showtime     time.Time
		wantEligible bool
		wantShowing  uint64
		wantCode     booking.FailureCode
	}{
		{
			name: "available seat with matching showtime is held",
			showings: []model.Showing{
				{ID: 1, Title: "Dark Knight", StartsAt: showtime.UTC(), Seats: seatMap(nil)},
			},
			seatNumber:   "A5",
			showtime:     showtime,
			wantEligible: true,
			wantShowing:  1,
		},
		{
			name: "held seat is reported unavailable",
			showings: []model.Showing{
				{ID: 1, Title: "Dark Knight", StartsAt: showtime.UTC(), Seats: seatMap(map[string]model.SeatStatus{"A5": model.SeatHolding})},
			},
			seatNumber: "A5",
			showtime:   showtime,
			wantCode:   booking.CodeSeatUnavailable,
		},
		{
			name: "booked seat is reported unavailable",
			showings: []model.Showing{
				{ID: 1, Title: "Dark Knight", StartsAt: showtime.UTC(), Seats: seatMap(map[string]model.SeatStatus{"A5": model.SeatBooked})},
			},
			seatNumber: "A5",
			showtime:   showtime,
			wantCode:   booking.CodeSeatUnavailable,
		},
		{
			name:       "empty catalog reports unknown title",
			showings:   nil,
			seatNumber: "A5",
			showtime:   showtime,
			wantCode:   booking.CodeMovieNotFound,
		},
		{
			name: "absent seat label is distinguished",
			showings: []model.Showing{
				{ID: 1, Title: "Dark Knight", StartsAt: showtime.UTC(), Seats: seatMap(nil)},
			},
			seatNumber: "Z9",
			showtime:   showtime,
			wantCode:   booking.CodeSeatNotFound,
		},
		{
			name: "showtime mismatch is distinguished from a held seat",
			showings: []model.Showing{
				{ID: 1, Title: "Dark Knight", StartsAt: showtime.UTC().Add(2 * time.Hour), Seats: seatMap(nil)},
			},
			seatNumber: "A5",
			showtime:   showtime,
			wantCode:   booking.CodeShowtimeMismatch,
		},
		{
			name: "first eligible showing wins over later matches",
			showings: []model.Showing{
				{ID: 1, Title: "Dark Knight", StartsAt: showtime.UTC(), Seats: seatMap(nil)},
				{ID: 2, Title: "Dark Knight", StartsAt: showtime.UTC(), Seats: seatMap(nil)},
			},
			seatNumber:   "A3",
			showtime:     showtime,
			wantEligible: true,
			wantShowing:  1,
		},
		{
			name: "scan continues past non-matching showings",
			showings: []model.Showing{
				{ID: 1, Title: "Dark Knight", StartsAt: showtime.UTC().Add(-3 * time.Hour), Seats: seatMap(nil)},
				{ID: 2, Title: "Dark Knight", StartsAt: showtime.UTC(), Seats: seatMap(nil)},
			},
			seatNumber:   "A5",
			showtime:     showtime,
			wantEligible: true,
			wantShowing:  2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := booking.DecideHold(tc.showings, tc.seatNumber, tc.showtime)
			if tc.wantEligible {
				require.True(t, d.Eligible, "expected an eligible decision, got code=%s reason=%q", d.Code, d.Reason)
				assert.Equal(t, tc.wantShowing, d.Showing.ID)
				assert.Equal(t, model.SeatHolding, d.Next)
				return
			}
			require.False(t, d.Eligible)
			assert.Equal(t, tc.wantCode, d.Code)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestDecideHold_NormalizesTimezones(t *testing.T) {
	// The same instant expressed with different offsets must compare equal.
	stored := mustParse(t, "2025-11-11T03:45:00Z")
	requested := mustParse(t, "2025-11-10T21:45:00-06:00")

	d := booking.DecideHold([]model.Showing{
		{ID: 7, Title: "Dark Knight", StartsAt: stored, Seats: seatMap(nil)},
	}, "A1", requested)

	require.True(t, d.Eligible)
	assert.Equal(t, uint64(7), d.Showing.ID)
}

func TestDecideHold_DoesNotMutateSnapshots(t *testing.T) {
	showtime := mustParse(t, "2025-11-10T21:45:00-06:00")
	showings := []model.Showing{
		{ID: 1, Title: "Dark Knight", StartsAt: showtime.UTC(), Seats: seatMap(nil)},
	}

	d := booking.DecideHold(showings, "A5", showtime)

	require.True(t, d.Eligible)
	assert.Equal(t, model.SeatAvailable, showings[0].Seats["A5"])
}

func TestDecideFinalize(t *testing.T) {
	next := booking.DecideFinalize(model.Reservation{CorrelatorID: 1, ShowingID: 1, SeatNumber: "A5"})
	assert.Equal(t, model.SeatBooked, next)
}
