package repository

import (
	"context"
	"database/sql"

	"github.com/seatflow/seating-service/internal/model"
)

// ShowingRepo manages persistence for showings and their seat maps. A
// showing row holds the title and start time; each seat lives in its own
// showing_seats row so that status transitions can be expressed as
// conditional updates with rows-affected checks. All timestamps are stored
// and compared in UTC.
type ShowingRepo struct {
	db *sql.DB
}

// NewShowingRepo constructs a ShowingRepo bound to the provided database.
func NewShowingRepo(db *sql.DB) *ShowingRepo { return &ShowingRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning several operations.
func (r *ShowingRepo) DB() *sql.DB { return r.db }

// FindByTitle returns every showing whose title matches exactly, each with
// its full seat map attached. An empty result is a valid, non-error answer.
// Rows come back ordered by start time then id so scans over the result are
// deterministic.
func (r *ShowingRepo) FindByTitle(ctx context.Context, title string) ([]model.Showing, error) {
	const q = `SELECT id, title, starts_at, created_at, updated_at
	           FROM showings WHERE title = ? ORDER BY starts_at, id`
	rows, err := r.db.QueryContext(ctx, q, title)
	if err != nil {
		return nil, err
	}
	var showings []model.Showing
	for rows.Next() {
		var s model.Showing
		if scanErr := rows.Scan(&s.ID, &s.Title, &s.StartsAt, &s.CreatedAt, &s.UpdatedAt); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		showings = append(showings, s)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	for i := range showings {
		seats, err := r.seatMap(ctx, showings[i].ID)
		if err != nil {
			return nil, err
		}
		showings[i].Seats = seats
	}
	return showings, nil
}

// seatMap loads the full seat map for one showing.
func (r *ShowingRepo) seatMap(ctx context.Context, showingID uint64) (map[string]model.SeatStatus, error) {
	const q = `SELECT seat_label, status FROM showing_seats WHERE showing_id = ?`
	rows, err := r.db.QueryContext(ctx, q, showingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make(map[string]model.SeatStatus)
	for rows.Next() {
		var label, status string
		if err := rows.Scan(&label, &status); err != nil {
			return nil, err
		}
		seats[label] = model.SeatStatus(status)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// Save persists a showing together with its complete seat map in a single
// transaction, so a partial seat map can never be observed. For a new
// showing (ID zero) the row is inserted and the generated ID assigned back;
// for an existing showing the row is updated and its seat rows replaced
// wholesale. Returns ErrShowingNotFound when updating a missing row.
func (r *ShowingRepo) Save(ctx context.Context, s *model.Showing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if s.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO showings (title, starts_at) VALUES (?, ?)`,
			s.Title, s.StartsAt.UTC())
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = uint64(id)
	} else {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM showings WHERE id = ?`, s.ID).Scan(&one); err != nil {
			if err == sql.ErrNoRows {
				return ErrShowingNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE showings SET title = ?, starts_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			s.Title, s.StartsAt.UTC(), s.ID); err != nil {
			return err
		}
	}
	// Replace the seat rows wholesale so the persisted map always matches
	// the one we were given.
	if _, err := tx.ExecContext(ctx, `DELETE FROM showing_seats WHERE showing_id = ?`, s.ID); err != nil {
		return err
	}
	if len(s.Seats) > 0 {
		query := `INSERT INTO showing_seats (showing_id, seat_label, status) VALUES `
		args := make([]interface{}, 0, len(s.Seats)*3)
		i := 0
		for label, status := range s.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?)"
			args = append(args, s.ID, label, string(status))
			i++
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// updateSeatStatus performs the conditional transition from -> to for one
// seat. It reports whether the row actually moved; zero rows affected means
// the seat was not in the expected state (or the label does not exist),
// which callers treat as losing the race.
func (r *ShowingRepo) updateSeatStatus(ctx context.Context, showingID uint64, seatLabel string, from, to model.SeatStatus) (bool, error) {
	const q = `UPDATE showing_seats SET status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE showing_id = ? AND seat_label = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, string(to), showingID, seatLabel, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HoldSeat transitions a seat from AVAILABLE to HOLDING. The conditional
// update serializes concurrent holds for the same seat at the database:
// between two racing requests at most one write moves the row.
func (r *ShowingRepo) HoldSeat(ctx context.Context, showingID uint64, seatLabel string) (bool, error) {
	return r.updateSeatStatus(ctx, showingID, seatLabel, model.SeatAvailable, model.SeatHolding)
}

// BookSeat transitions a seat from HOLDING to BOOKED.
func (r *ShowingRepo) BookSeat(ctx context.Context, showingID uint64, seatLabel string) (bool, error) {
	return r.updateSeatStatus(ctx, showingID, seatLabel, model.SeatHolding, model.SeatBooked)
}

// ReleaseSeat transitions a seat from HOLDING back to AVAILABLE. Used when
// a required downstream call fails after a hold, and by the expiry sweep.
func (r *ShowingRepo) ReleaseSeat(ctx context.Context, showingID uint64, seatLabel string) (bool, error) {
	return r.updateSeatStatus(ctx, showingID, seatLabel, model.SeatHolding, model.SeatAvailable)
}

// SeatStatus returns the current persisted status for one seat. It returns
// ErrSeatRowNotFound when the label does not exist for the showing.
func (r *ShowingRepo) SeatStatus(ctx context.Context, showingID uint64, seatLabel string) (model.SeatStatus, error) {
	const q = `SELECT status FROM showing_seats WHERE showing_id = ? AND seat_label = ?`
	var status string
	err := r.db.QueryRowContext(ctx, q, showingID, seatLabel).Scan(&status)
	if err == sql.ErrNoRows {
		return "", ErrSeatRowNotFound
	}
	if err != nil {
		return "", err
	}
	return model.SeatStatus(status), nil
}
