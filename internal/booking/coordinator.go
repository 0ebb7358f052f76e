// Package booking contains the reservation core: the pure seat state
// machine and the coordinator that drives catalog lookups, conditional
// persistence, the hold ledger and downstream dispatch.
package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/seatflow/seating-service/internal/ledger"
	"github.com/seatflow/seating-service/internal/model"
	"github.com/seatflow/seating-service/internal/topic"
)

// Catalog is the durable seat store consumed by the coordinator. The
// conditional transition methods report whether a row actually moved so
// the caller can detect lost races; see ShowingRepo for the MySQL
// implementation.
type Catalog interface {
	FindByTitle(ctx context.Context, title string) ([]model.Showing, error)
	HoldSeat(ctx context.Context, showingID uint64, seatLabel string) (bool, error)
	BookSeat(ctx context.Context, showingID uint64, seatLabel string) (bool, error)
	ReleaseSeat(ctx context.Context, showingID uint64, seatLabel string) (bool, error)
	SeatStatus(ctx context.Context, showingID uint64, seatLabel string) (model.SeatStatus, error)
}

// Dispatcher delivers an outbound payload to the endpoint mapped to a topic
// name. Delivery is synchronous and single attempt; an error means the
// message did not reach the collaborator.
type Dispatcher interface {
	Send(ctx context.Context, topicName string, payload any) error
}

// EventSink receives a notification after a booking is confirmed. Wired to
// the broker publisher in production; nil disables events.
type EventSink interface {
	SeatBooked(ctx context.Context, res model.Reservation, bookedAt time.Time)
}

// Outcome describes what happened to a hold or finalize request. Response
// is the envelope reported to collaborators; Code is empty on success.
type Outcome struct {
	Status   topic.Status
	Code     FailureCode
	Reason   string
	Response topic.SeatResponse
}

// Config carries the optional collaborator wiring for a Coordinator.
// PaymentTopic, when set, names a topic that a successful hold must reach
// before the hold is reported; ResponseTopic names the best-effort
// acknowledgement topic. HoldTTL is the lease attached to every ledger
// entry; zero disables expiry.
type Config struct {
	PaymentTopic  string
	ResponseTopic string
	HoldTTL       time.Duration
	Events        EventSink
}

// Coordinator orchestrates the hold -> relay -> finalize flow. Each call
// runs to completion on its own goroutine; shared state lives in the
// catalog (serialized by conditional writes) and the ledger (mutex
// guarded), so the coordinator itself holds no locks.
type Coordinator struct {
	catalog    Catalog
	ledger     *ledger.Ledger
	dispatcher Dispatcher
	cfg        Config
	now        func() time.Time
}

// New constructs a Coordinator. catalog and lgr must be non-nil;
// dispatcher may be nil when no downstream topics are configured.
func New(catalog Catalog, lgr *ledger.Ledger, dispatcher Dispatcher, cfg Config) *Coordinator {
	if catalog == nil || lgr == nil {
		panic("nil catalog or ledger passed to booking.New")
	}
	return &Coordinator{
		catalog:    catalog,
		ledger:     lgr,
		dispatcher: dispatcher,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Hold processes a seat request end to end: catalog lookup, state machine
// decision, conditional persist, ledger insert, downstream dispatch. On
// failure the outcome reports FAILED with a code and no partial state
// survives: the conditional write either moved the seat or did nothing,
// and a failed required dispatch releases the seat again before returning.
func (c *Coordinator) Hold(ctx context.Context, correlatorID int64, movieName, seatNumber string, showtime time.Time) Outcome {
	log.Printf("booking: hold requested correlator=%d movie=%q seat=%s showtime=%s",
		correlatorID, movieName, seatNumber, showtime.UTC().Format(time.RFC3339))

	showings, err := c.catalog.FindByTitle(ctx, movieName)
	if err != nil {
		log.Printf("booking: catalog lookup failed correlator=%d: %v", correlatorID, err)
		return c.failure(ctx, correlatorID, movieName, seatNumber, showtime, CodePersistenceFailure, "catalog lookup failed")
	}
	d := DecideHold(showings, seatNumber, showtime)
	if !d.Eligible {
		return c.failure(ctx, correlatorID, movieName, seatNumber, showtime, d.Code, d.Reason)
	}
	moved, err := c.catalog.HoldSeat(ctx, d.Showing.ID, seatNumber)
	if err != nil {
		log.Printf("booking: hold persist failed correlator=%d: %v", correlatorID, err)
		return c.failure(ctx, correlatorID, movieName, seatNumber, showtime, CodePersistenceFailure, "failed to persist seat hold")
	}
	if !moved {
		// Lost the race: another request held or booked the seat between
		// the snapshot read and the conditional write.
		return c.failure(ctx, correlatorID, movieName, seatNumber, showtime, CodeSeatUnavailable,
			fmt.Sprintf("seat %s is already booked/held", seatNumber))
	}

	now := c.now().UTC()
	res := model.Reservation{
		CorrelatorID: correlatorID,
		ShowingID:    d.Showing.ID,
		Title:        movieName,
		StartsAt:     d.Showing.StartsAt,
		SeatNumber:   seatNumber,
		CreatedAt:    now,
	}
	if c.cfg.HoldTTL > 0 {
		res.ExpiresAt = now.Add(c.cfg.HoldTTL)
	}
	c.ledger.Put(res)
	log.Printf("booking: seat held correlator=%d showing=%d seat=%s", correlatorID, d.Showing.ID, seatNumber)

	if c.cfg.PaymentTopic != "" && c.dispatcher != nil {
		pay := topic.PaymentRequest{
			TopicName:    c.cfg.PaymentTopic,
			CorrelatorID: correlatorID,
			MovieName:    movieName,
			SeatNumber:   seatNumber,
			Showtime:     showtime.UTC().Format(time.RFC3339),
		}
		if err := c.dispatcher.Send(ctx, c.cfg.PaymentTopic, pay); err != nil {
			log.Printf("booking: payment dispatch failed correlator=%d: %v; releasing hold", correlatorID, err)
			c.ledger.Remove(correlatorID)
			if _, relErr := c.catalog.ReleaseSeat(ctx, d.Showing.ID, seatNumber); relErr != nil {
				log.Printf("booking: release after failed dispatch correlator=%d: %v", correlatorID, relErr)
			}
			return c.failure(ctx, correlatorID, movieName, seatNumber, showtime, CodeDownstreamFailure, "payment service did not accept the request")
		}
	}

	out := Outcome{
		Status:   topic.StatusHolding,
		Response: c.response(correlatorID, movieName, seatNumber, showtime, topic.StatusHolding),
	}
	c.ack(ctx, out.Response)
	return out
}

// Finalize converts a held seat into a permanent booking once payment has
// been confirmed. The ledger entry is removed only after the persisted
// status reads back BOOKED, so retrying a failed finalize re-attempts the
// same transition, and retrying a successful one reports
// NO_ACTIVE_RESERVATION.
func (c *Coordinator) Finalize(ctx context.Context, correlatorID int64) Outcome {
	log.Printf("booking: finalize requested correlator=%d", correlatorID)

	res, ok := c.ledger.Get(correlatorID)
	if !ok {
		return c.failure(ctx, correlatorID, "", "", time.Time{}, CodeNoActiveReservation,
			"no held reservation for this correlator id")
	}
	want := DecideFinalize(res)
	if _, err := c.catalog.BookSeat(ctx, res.ShowingID, res.SeatNumber); err != nil {
		log.Printf("booking: booking persist failed correlator=%d: %v", correlatorID, err)
		return c.failure(ctx, correlatorID, res.Title, res.SeatNumber, res.StartsAt, CodePersistenceFailure, "failed to persist booking")
	}
	// Only the read-back status decides. The conditional write may move no
	// row when a previous finalize attempt already booked the seat; that
	// still counts as success here.
	status, err := c.catalog.SeatStatus(ctx, res.ShowingID, res.SeatNumber)
	if err != nil || status != want {
		log.Printf("booking: finalize not confirmed correlator=%d status=%s err=%v; keeping ledger entry",
			correlatorID, status, err)
		return c.failure(ctx, correlatorID, res.Title, res.SeatNumber, res.StartsAt, CodePersistenceFailure,
			"booking was not confirmed by the catalog")
	}
	c.ledger.Remove(correlatorID)
	log.Printf("booking: booking finalized correlator=%d showing=%d seat=%s", correlatorID, res.ShowingID, res.SeatNumber)

	if c.cfg.Events != nil {
		c.cfg.Events.SeatBooked(ctx, res, c.now().UTC())
	}
	out := Outcome{
		Status:   topic.StatusBooked,
		Response: c.response(correlatorID, res.Title, res.SeatNumber, res.StartsAt, topic.StatusBooked),
	}
	c.ack(ctx, out.Response)
	return out
}

// failure builds a FAILED outcome and reports it on the acknowledgement
// topic. Every failure path funnels through here so nothing is silently
// swallowed past the coordinator boundary.
func (c *Coordinator) failure(ctx context.Context, correlatorID int64, movieName, seatNumber string, showtime time.Time, code FailureCode, reason string) Outcome {
	log.Printf("booking: request failed correlator=%d code=%s reason=%q", correlatorID, code, reason)
	out := Outcome{
		Status:   topic.StatusFailed,
		Code:     code,
		Reason:   reason,
		Response: c.response(correlatorID, movieName, seatNumber, showtime, topic.StatusFailed),
	}
	c.ack(ctx, out.Response)
	return out
}

// ack reports an outcome on the acknowledgement topic. Delivery is best
// effort: failures are logged and never abort the operation they describe.
func (c *Coordinator) ack(ctx context.Context, resp topic.SeatResponse) {
	if c.cfg.ResponseTopic == "" || c.dispatcher == nil {
		return
	}
	if err := c.dispatcher.Send(ctx, c.cfg.ResponseTopic, resp); err != nil {
		log.Printf("booking: seat response dispatch failed correlator=%d: %v", resp.CorrelatorID, err)
	}
}

func (c *Coordinator) response(correlatorID int64, movieName, seatNumber string, showtime time.Time, status topic.Status) topic.SeatResponse {
	resp := topic.SeatResponse{
		TopicName:    topic.SeatResponseTopic,
		CorrelatorID: correlatorID,
		Status:       status,
		MovieName:    movieName,
		SeatNumber:   seatNumber,
		Timestamp:    c.now().UTC(),
	}
	if !showtime.IsZero() {
		resp.Showtime = showtime.UTC().Format(time.RFC3339)
	}
	return resp
}
