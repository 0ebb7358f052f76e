package model

import "time"

// Reservation tracks one outstanding hold: which seat a correlator id
// provisionally owns while payment confirmation is pending. Entries live in
// process memory only; the ledger is a cache over the catalog.
type Reservation struct {
	CorrelatorID int64     // caller-supplied token linking hold and finalize
	ShowingID    uint64    // showing whose seat is held
	Title        string    // movie title, carried for outcome messages
	StartsAt     time.Time // showing start time (UTC)
	SeatNumber   string    // held seat label
	ExpiresAt    time.Time // lease expiry; zero means no expiry
	CreatedAt    time.Time // when the hold succeeded
}
