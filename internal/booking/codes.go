package booking

// FailureCode classifies why a hold or finalize did not succeed. Codes are
// stable strings surfaced on the Outcome and in HTTP error bodies, so
// callers can branch without parsing reason text. The showtime-mismatch and
// already-held cases carry distinct codes.
type FailureCode string

const (
	CodeMovieNotFound       FailureCode = "MOVIE_NOT_FOUND"
	CodeSeatNotFound        FailureCode = "SEAT_NOT_FOUND"
	CodeSeatUnavailable     FailureCode = "SEAT_UNAVAILABLE"
	CodeShowtimeMismatch    FailureCode = "SHOWTIME_MISMATCH"
	CodeNoActiveReservation FailureCode = "NO_ACTIVE_RESERVATION"
	CodePersistenceFailure  FailureCode = "PERSISTENCE_FAILURE"
	CodeDownstreamFailure   FailureCode = "DOWNSTREAM_FAILURE"
)
