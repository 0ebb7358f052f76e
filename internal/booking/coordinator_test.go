package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatflow/seating-service/internal/booking"
	"github.com/seatflow/seating-service/internal/ledger"
	"github.com/seatflow/seating-service/internal/model"
	"github.com/seatflow/seating-service/internal/topic"
)

// fakeCatalog is an in-memory Catalog with the same conditional-write
// semantics as the MySQL repository: a transition moves the seat only when
// it is in the expected state, under a lock so concurrent holds race the
// way they would against the database.
type fakeCatalog struct {
	mu       sync.Mutex
	showings []model.Showing
	writes   int
	findErr  error
	holdErr  error
	bookErr  error
}

func (f *fakeCatalog) FindByTitle(_ context.Context, title string) ([]model.Showing, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Showing
	for _, s := range f.showings {
		if s.Title != title {
			continue
		}
		seats := make(map[string]model.SeatStatus, len(s.Seats))
		for label, status := range s.Seats {
			seats[label] = status
		}
		s.Seats = seats
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeCatalog) cas(showingID uint64, seatLabel string, from, to model.SeatStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.showings {
		if f.showings[i].ID != showingID {
			continue
		}
		if f.showings[i].Seats[seatLabel] == from {
			f.showings[i].Seats[seatLabel] = to
			f.writes++
			return true, nil
		}
		return false, nil
	}
	return false, nil
}

func (f *fakeCatalog) HoldSeat(_ context.Context, showingID uint64, seatLabel string) (bool, error) {
	if f.holdErr != nil {
		return false, f.holdErr
	}
	return f.cas(showingID, seatLabel, model.SeatAvailable, model.SeatHolding)
}

func (f *fakeCatalog) BookSeat(_ context.Context, showingID uint64, seatLabel string) (bool, error) {
	if f.bookErr != nil {
		return false, f.bookErr
	}
	return f.cas(showingID, seatLabel, model.SeatHolding, model.SeatBooked)
}

func (f *fakeCatalog) ReleaseSeat(_ context.Context, showingID uint64, seatLabel string) (bool, error) {
	return f.cas(showingID, seatLabel, model.SeatHolding, model.SeatAvailable)
}

func (f *fakeCatalog) SeatStatus(_ context.Context, showingID uint64, seatLabel string) (model.SeatStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.showings {
		if f.showings[i].ID == showingID {
			return f.showings[i].Seats[seatLabel], nil
		}
	}
	return "", errors.New("showing not found")
}

// set overwrites one seat's status directly, bypassing the transition
// rules, to simulate interference from outside the coordinator.
func (f *fakeCatalog) set(showingID uint64, seatLabel string, status model.SeatStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.showings {
		if f.showings[i].ID == showingID {
			f.showings[i].Seats[seatLabel] = status
		}
	}
}

func (f *fakeCatalog) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type sentMessage struct {
	topicName string
	payload   any
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]error
}

func (f *fakeDispatcher) Send(_ context.Context, topicName string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[topicName]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{topicName: topicName, payload: payload})
	return nil
}

func (f *fakeDispatcher) sentTo(topicName string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.topicName == topicName {
			out = append(out, m)
		}
	}
	return out
}

type fakeSink struct {
	mu     sync.Mutex
	booked []model.Reservation
}

func (f *fakeSink) SeatBooked(_ context.Context, res model.Reservation, _ time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.booked = append(f.booked, res)
}

func newTestCatalog(t *testing.T) (*fakeCatalog, time.Time) {
	t.Helper()
	showtime := mustParse(t, "2025-11-10T21:45:00-06:00")
	cat := &fakeCatalog{
		showings: []model.Showing{
			{ID: 1, Title: "Dark Knight", StartsAt: showtime.UTC(), Seats: seatMap(nil)},
		},
	}
	return cat, showtime
}

func TestCoordinator_Hold_Success(t *testing.T) {
	ctx := context.Background()
	cat, showtime := newTestCatalog(t)
	disp := &fakeDispatcher{}
	lgr := ledger.New()
	coord := booking.New(cat, lgr, disp, booking.Config{
		PaymentTopic:  topic.PaymentRequestTopic,
		ResponseTopic: topic.SeatResponseTopic,
		HoldTTL:       5 * time.Minute,
	})

	out := coord.Hold(ctx, 123456, "Dark Knight", "A5", showtime)

	require.Equal(t, topic.StatusHolding, out.Status)
	assert.Empty(t, out.Code)

	// Exactly A5 moved; the rest of the seat map is untouched.
	status, err := cat.SeatStatus(ctx, 1, "A5")
	require.NoError(t, err)
	assert.Equal(t, model.SeatHolding, status)
	for _, label := range []string{"A1", "A2", "A3", "A4"} {
		status, err := cat.SeatStatus(ctx, 1, label)
		require.NoError(t, err)
		assert.Equal(t, model.SeatAvailable, status, "seat %s", label)
	}

	res, ok := lgr.Get(123456)
	require.True(t, ok)
	assert.Equal(t, uint64(1), res.ShowingID)
	assert.Equal(t, "A5", res.SeatNumber)
	assert.True(t, res.ExpiresAt.After(res.CreatedAt))

	require.Len(t, disp.sentTo(topic.PaymentRequestTopic), 1)
	require.Len(t, disp.sentTo(topic.SeatResponseTopic), 1)

	resp := out.Response
	assert.Equal(t, topic.SeatResponseTopic, resp.TopicName)
	assert.Equal(t, int64(123456), resp.CorrelatorID)
	assert.Equal(t, "Dark Knight", resp.MovieName)
	assert.Equal(t, "A5", resp.SeatNumber)
	assert.Equal(t, topic.StatusHolding, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestCoordinator_Hold_Failures(t *testing.T) {
	testCases := []struct {
		name       string
		arrange    func(cat *fakeCatalog)
		movie      string
		seatNumber string
		wantCode   booking.FailureCode
	}{
		{
			name:       "unknown title",
			arrange:    func(*fakeCatalog) {},
			movie:      "One Piece",
			seatNumber: "A5",
			wantCode:   booking.CodeMovieNotFound,
		},
		{
			name: "seat already held",
			arrange: func(cat *fakeCatalog) {
				cat.set(1, "A5", model.SeatHolding)
			},
			movie:      "Dark Knight",
			seatNumber: "A5",
			wantCode:   booking.CodeSeatUnavailable,
		},
		{
			name:       "seat does not exist",
			arrange:    func(*fakeCatalog) {},
			movie:      "Dark Knight",
			seatNumber: "Z9",
			wantCode:   booking.CodeSeatNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			cat, showtime := newTestCatalog(t)
			tc.arrange(cat)
			before := cat.writeCount()
			lgr := ledger.New()
			coord := booking.New(cat, lgr, nil, booking.Config{})

			out := coord.Hold(ctx, 777, tc.movie, tc.seatNumber, showtime)

			require.Equal(t, topic.StatusFailed, out.Status)
			assert.Equal(t, tc.wantCode, out.Code)
			assert.NotEmpty(t, out.Reason)
			assert.Equal(t, before, cat.writeCount(), "no catalog write on failure")
			assert.Equal(t, 0, lgr.Len())
		})
	}
}

func TestCoordinator_Hold_CatalogLookupError(t *testing.T) {
	cat, showtime := newTestCatalog(t)
	cat.findErr = errors.New("connection refused")
	coord := booking.New(cat, ledger.New(), nil, booking.Config{})

	out := coord.Hold(context.Background(), 1, "Dark Knight", "A5", showtime)

	require.Equal(t, topic.StatusFailed, out.Status)
	assert.Equal(t, booking.CodePersistenceFailure, out.Code)
}

func TestCoordinator_Hold_PaymentDispatchFailureReleasesSeat(t *testing.T) {
	ctx := context.Background()
	cat, showtime := newTestCatalog(t)
	disp := &fakeDispatcher{fail: map[string]error{
		topic.PaymentRequestTopic: errors.New("payment endpoint returned 503"),
	}}
	lgr := ledger.New()
	coord := booking.New(cat, lgr, disp, booking.Config{
		PaymentTopic: topic.PaymentRequestTopic,
	})

	out := coord.Hold(ctx, 42, "Dark Knight", "A5", showtime)

	require.Equal(t, topic.StatusFailed, out.Status)
	assert.Equal(t, booking.CodeDownstreamFailure, out.Code)

	// Compensation: seat back to AVAILABLE, no ledger entry survives.
	status, err := cat.SeatStatus(ctx, 1, "A5")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, status)
	assert.Equal(t, 0, lgr.Len())
}

func TestCoordinator_Hold_ConcurrentSameSeat(t *testing.T) {
	ctx := context.Background()
	cat, showtime := newTestCatalog(t)
	lgr := ledger.New()
	coord := booking.New(cat, lgr, nil, booking.Config{})

	const callers = 8
	outcomes := make([]booking.Outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = coord.Hold(ctx, int64(1000+i), "Dark Knight", "A5", showtime)
		}(i)
	}
	wg.Wait()

	held := 0
	for _, out := range outcomes {
		if out.Status == topic.StatusHolding {
			held++
		} else {
			assert.Equal(t, booking.CodeSeatUnavailable, out.Code)
		}
	}
	assert.Equal(t, 1, held, "at most one concurrent hold may succeed")
	assert.Equal(t, 1, lgr.Len())
}

func TestCoordinator_Finalize_NoActiveReservation(t *testing.T) {
	cat, _ := newTestCatalog(t)
	before := cat.writeCount()
	coord := booking.New(cat, ledger.New(), nil, booking.Config{})

	out := coord.Finalize(context.Background(), 999)

	require.Equal(t, topic.StatusFailed, out.Status)
	assert.Equal(t, booking.CodeNoActiveReservation, out.Code)
	assert.Equal(t, before, cat.writeCount(), "no catalog write without a ledger entry")
}

func TestCoordinator_HoldThenFinalize_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cat, showtime := newTestCatalog(t)
	lgr := ledger.New()
	sink := &fakeSink{}
	coord := booking.New(cat, lgr, nil, booking.Config{Events: sink})

	hold := coord.Hold(ctx, 123456, "Dark Knight", "A5", showtime)
	require.Equal(t, topic.StatusHolding, hold.Status)

	final := coord.Finalize(ctx, 123456)
	require.Equal(t, topic.StatusBooked, final.Status)

	status, err := cat.SeatStatus(ctx, 1, "A5")
	require.NoError(t, err)
	assert.Equal(t, model.SeatBooked, status)
	assert.Equal(t, 0, lgr.Len(), "ledger entry removed after confirmed booking")
	require.Len(t, sink.booked, 1)
	assert.Equal(t, int64(123456), sink.booked[0].CorrelatorID)

	// Retrying after success is safe: the entry is gone, nothing is
	// re-attempted.
	again := coord.Finalize(ctx, 123456)
	require.Equal(t, topic.StatusFailed, again.Status)
	assert.Equal(t, booking.CodeNoActiveReservation, again.Code)
	status, err = cat.SeatStatus(ctx, 1, "A5")
	require.NoError(t, err)
	assert.Equal(t, model.SeatBooked, status)
}

func TestCoordinator_Finalize_KeepsLedgerEntryWhenUnconfirmed(t *testing.T) {
	ctx := context.Background()
	cat, showtime := newTestCatalog(t)
	lgr := ledger.New()
	coord := booking.New(cat, lgr, nil, booking.Config{})

	hold := coord.Hold(ctx, 55, "Dark Knight", "A2", showtime)
	require.Equal(t, topic.StatusHolding, hold.Status)

	// Something outside the coordinator reverted the seat; the conditional
	// write moves nothing and the read-back cannot confirm BOOKED.
	cat.set(1, "A2", model.SeatAvailable)

	out := coord.Finalize(ctx, 55)

	require.Equal(t, topic.StatusFailed, out.Status)
	assert.Equal(t, booking.CodePersistenceFailure, out.Code)
	_, ok := lgr.Get(55)
	assert.True(t, ok, "ledger entry stays so finalize can be retried")
}

func TestCoordinator_Finalize_PersistErrorKeepsLedgerEntry(t *testing.T) {
	ctx := context.Background()
	cat, showtime := newTestCatalog(t)
	lgr := ledger.New()
	coord := booking.New(cat, lgr, nil, booking.Config{})

	hold := coord.Hold(ctx, 77, "Dark Knight", "A1", showtime)
	require.Equal(t, topic.StatusHolding, hold.Status)

	cat.bookErr = errors.New("deadlock found when trying to get lock")
	out := coord.Finalize(ctx, 77)
	require.Equal(t, topic.StatusFailed, out.Status)
	assert.Equal(t, booking.CodePersistenceFailure, out.Code)

	// The retry succeeds once the store recovers.
	cat.bookErr = nil
	retry := coord.Finalize(ctx, 77)
	require.Equal(t, topic.StatusBooked, retry.Status)
	assert.Equal(t, 0, lgr.Len())
}
