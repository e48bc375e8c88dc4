package airline

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/marshallshelly/airline/pkg/builder"
	"github.com/marshallshelly/airline/pkg/runtime"
)

// seatsRemaining selects plane.seats - flight.num_sold for one flight.
func seatsRemaining(fnum int) *builder.SelectBuilder {
	return builder.Select("p.seats - f.num_sold").
		From("flight f").
		InnerJoin("flightinfo fi", "fi.flight_id = f.fnum").
		InnerJoin("plane p", "p.id = fi.plane_id").
		Where(builder.Eq("f.fnum", fnum))
}

// BookFlight reserves a seat on a flight for a customer. The reservation
// is confirmed and the flight's sold count incremented while seats remain;
// otherwise the customer is waitlisted.
//
// The flight row stays locked from the seat check until commit, so
// concurrent bookings for the last seat confirm exactly one of them.
// An unknown flight yields runtime.ErrNotFound.
func (s *Service) BookFlight(ctx context.Context, customerID, fnum int) (Reservation, error) {
	return run(s, OpBookFlight, func(log *zap.SugaredLogger) (Reservation, error) {
		if err := firstError(requireID("customer_id", customerID), requireID("flight_number", fnum)); err != nil {
			return Reservation{}, err
		}

		res := Reservation{CustomerID: customerID, FlightNumber: fnum}

		err := s.db.WithTx(ctx, pgx.TxOptions{}, func(q runtime.Querier) error {
			var remaining int
			if err := scanOne(ctx, q, OpBookFlight, seatsRemaining(fnum).ForUpdate("f"), &remaining); err != nil {
				return err
			}
			log.Debugw("seat check", "fnum", fnum, "remaining", remaining)

			res.Status = StatusWaitlisted
			if remaining > 0 {
				res.Status = StatusConfirmed
				inc := builder.Update("flight").
					Set("num_sold", builder.Expr("num_sold + 1")).
					Where(builder.Eq("fnum", fnum))
				if _, err := execStmt(ctx, q, OpBookFlight, inc); err != nil {
					return err
				}
			}

			insert := builder.InsertInto("reservation").
				Set("cid", customerID).
				Set("fid", fnum).
				Set("status", string(res.Status)).
				Returning("rnum")
			if err := scanOne(ctx, q, OpBookFlight, insert, &res.Number); err != nil {
				if res.Status == StatusConfirmed {
					return &runtime.ConsistencyError{Op: OpBookFlight, Step: "insert reservation", Err: err}
				}
				return err
			}
			return nil
		})
		if err != nil {
			return Reservation{}, err
		}

		log.Infow("flight booked", "rnum", res.Number, "customer_id", customerID, "fnum", fnum, "status", res.Status)
		return res, nil
	})
}

// ListAvailableSeats returns plane.seats - flight.num_sold for the flight
// departing on the given date, or runtime.ErrNotFound when no flight matches.
func (s *Service) ListAvailableSeats(ctx context.Context, fnum int, departure time.Time) (int, error) {
	return run(s, OpListAvailableSeats, func(log *zap.SugaredLogger) (int, error) {
		if err := requireDate("departure_date", departure); err != nil {
			return 0, err
		}

		stmt := seatsRemaining(fnum).Where(builder.Eq("f.actual_departure_date", dateOnly(departure)))

		var available int
		if err := scanOne(ctx, s.db, OpListAvailableSeats, stmt, &available); err != nil {
			return 0, err
		}
		return available, nil
	})
}

// CountPassengersWithStatus counts the reservations on a flight that have
// the given status. No matching reservation counts as zero.
func (s *Service) CountPassengersWithStatus(ctx context.Context, fnum int, status ReservationStatus) (int, error) {
	return run(s, OpCountPassengersWithStatus, func(log *zap.SugaredLogger) (int, error) {
		if err := validateStatus(status); err != nil {
			return 0, err
		}

		stmt := builder.Select("COUNT(*)").
			From("reservation").
			Where(builder.Eq("fid", fnum)).
			GroupBy("status").
			Having(builder.Eq("status", string(status)))

		var count int
		err := scanOne(ctx, s.db, OpCountPassengersWithStatus, stmt, &count)
		if errors.Is(err, runtime.ErrNotFound) {
			return 0, nil
		}
		return count, err
	})
}
