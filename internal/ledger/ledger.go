// Package ledger tracks outstanding seat holds in process memory. The
// ledger is the only place that knows which correlator id owns which held
// seat. It is a cache over the catalog: losing it strands seats in HOLDING,
// which the expiry sweep eventually repairs.
package ledger

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/seatflow/seating-service/internal/model"
)

// Ledger is a concurrency-safe table mapping a correlator id to the
// reservation it currently holds. Entries are inserted when a hold succeeds
// and removed when finalize confirms the booked status.
type Ledger struct {
	mu      sync.Mutex
	entries map[int64]model.Reservation
}

// New returns an empty Ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[int64]model.Reservation)}
}

// Put records the reservation under its correlator id. A second Put with
// the same id overwrites the previous entry; concurrent holds sharing a
// correlator id are a caller error, last write wins.
func (l *Ledger) Put(res model.Reservation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[res.CorrelatorID] = res
}

// Get returns the reservation for a correlator id and whether it exists.
func (l *Ledger) Get(correlatorID int64) (model.Reservation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res, ok := l.entries[correlatorID]
	return res, ok
}

// Remove deletes the entry for a correlator id if present.
func (l *Ledger) Remove(correlatorID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, correlatorID)
}

// Len reports the number of outstanding holds.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Expired removes and returns every entry whose lease has passed as of now.
// Entries without an expiry are never returned.
func (l *Ledger) Expired(now time.Time) []model.Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.Reservation
	for id, res := range l.entries {
		if !res.ExpiresAt.IsZero() && !res.ExpiresAt.After(now) {
			out = append(out, res)
			delete(l.entries, id)
		}
	}
	return out
}

// Releaser reverts a held seat back to AVAILABLE. Implemented by the
// showing repository's conditional release.
type Releaser interface {
	ReleaseSeat(ctx context.Context, showingID uint64, seatLabel string) (bool, error)
}

// Sweep runs until ctx is cancelled, releasing expired holds every
// interval. A release that moves no row means the seat already advanced to
// BOOKED or was released elsewhere; that is not an error. A release that
// fails outright leaves the seat in HOLDING with no owner, so the entry is
// reinstated and retried on the next tick.
func (l *Ledger) Sweep(ctx context.Context, rel Releaser, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			for _, res := range l.Expired(now.UTC()) {
				moved, err := rel.ReleaseSeat(ctx, res.ShowingID, res.SeatNumber)
				if err != nil {
					log.Printf("ledger: release expired hold correlator=%d seat=%s: %v", res.CorrelatorID, res.SeatNumber, err)
					l.Put(res)
					continue
				}
				if moved {
					log.Printf("ledger: expired hold released correlator=%d showing=%d seat=%s", res.CorrelatorID, res.ShowingID, res.SeatNumber)
				}
			}
		}
	}
}
