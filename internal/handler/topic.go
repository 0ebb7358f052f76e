package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatflow/seating-service/internal/booking"
	"github.com/seatflow/seating-service/internal/schema"
	"github.com/seatflow/seating-service/internal/topic"
)

// TopicHandler accepts the generic topic envelope and routes it to the
// coordinator operation its topic name maps to. Payload validation runs
// before any coordinator call, so the core only ever sees well-formed,
// strongly-typed requests.
type TopicHandler struct {
	Coordinator *booking.Coordinator
}

// NewTopicHandler constructs a TopicHandler; the coordinator must be
// non-nil.
func NewTopicHandler(coordinator *booking.Coordinator) *TopicHandler {
	if coordinator == nil {
		panic("nil coordinator passed to NewTopicHandler")
	}
	return &TopicHandler{Coordinator: coordinator}
}

// Name handles GET /api/v1/name and identifies this microservice to its
// collaborators.
func (h *TopicHandler) Name(c echo.Context) error {
	return c.String(http.StatusOK, "This microservice is the [SEATING-SERVICE]!")
}

// ProcessTopic handles POST /api/v1/processTopic, the single entry point
// other services use. The body is a topic envelope; topicName selects the
// operation. Envelopes failing per-topic validation get 400. Unsupported
// topic names are logged and acknowledged without invoking the coordinator.
func (h *TopicHandler) ProcessTopic(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read request body"})
	}
	var env topic.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON envelope"})
	}
	if env.TopicName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "topicName is required"})
	}
	if err := schema.Validate(env.TopicName, raw); err != nil {
		if errors.Is(err, schema.ErrUnknownTopic) {
			log.Printf("topic: non-supported topic %q; ignoring", env.TopicName)
			return c.JSON(http.StatusOK, echo.Map{"ignored": env.TopicName})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	switch env.TopicName {
	case topic.SeatRequestTopic:
		var req topic.SeatRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid SeatRequest payload"})
		}
		// Validation already proved the showtime parses.
		showtime, _ := time.Parse(time.RFC3339, req.Showtime)
		out := h.Coordinator.Hold(ctx, req.CorrelatorID, req.MovieName, req.SeatNumber, showtime)
		return respond(c, out)
	case topic.PaymentConfirmedTopic:
		out := h.Coordinator.Finalize(ctx, env.CorrelatorID)
		return respond(c, out)
	default:
		log.Printf("topic: non-supported topic %q; ignoring", env.TopicName)
		return c.JSON(http.StatusOK, echo.Map{"ignored": env.TopicName})
	}
}

// respond maps a coordinator outcome onto an HTTP response. Successes carry
// the SeatResponse envelope; failures carry the code and reason with a
// status derived from the failure class.
func respond(c echo.Context, out booking.Outcome) error {
	if out.Status != topic.StatusFailed {
		return c.JSON(http.StatusOK, out.Response)
	}
	status := http.StatusConflict
	switch out.Code {
	case booking.CodeMovieNotFound, booking.CodeSeatNotFound, booking.CodeNoActiveReservation:
		status = http.StatusNotFound
	case booking.CodePersistenceFailure, booking.CodeDownstreamFailure:
		status = http.StatusInternalServerError
	}
	return c.JSON(status, echo.Map{"error": out.Reason, "code": string(out.Code)})
}
