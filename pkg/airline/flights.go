package airline

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/marshallshelly/airline/pkg/builder"
	"github.com/marshallshelly/airline/pkg/runtime"
)

// AddFlight registers a flight and links it to its pilot and plane. Both
// rows are written in one transaction; when the link cannot be written the
// flight row is rolled back and a *runtime.ConsistencyError is returned.
func (s *Service) AddFlight(ctx context.Context, in FlightInput) (Flight, error) {
	return run(s, OpAddFlight, func(log *zap.SugaredLogger) (Flight, error) {
		if err := in.Validate(); err != nil {
			return Flight{}, err
		}

		flight := Flight{
			Cost:             in.Cost,
			NumSold:          in.NumSold,
			NumStops:         in.NumStops,
			DepartureDate:    dateOnly(in.DepartureDate),
			ArrivalDate:      dateOnly(in.ArrivalDate),
			ArrivalAirport:   in.ArrivalAirport,
			DepartureAirport: in.DepartureAirport,
			PilotID:          in.PilotID,
			PlaneID:          in.PlaneID,
		}

		err := s.db.WithTx(ctx, pgx.TxOptions{}, func(q runtime.Querier) error {
			insertFlight := builder.InsertInto("flight").
				Set("cost", flight.Cost).
				Set("num_sold", flight.NumSold).
				Set("num_stops", flight.NumStops).
				Set("actual_departure_date", flight.DepartureDate).
				Set("actual_arrival_date", flight.ArrivalDate).
				Set("arrival_airport", flight.ArrivalAirport).
				Set("departure_airport", flight.DepartureAirport).
				Returning("fnum")
			if err := scanOne(ctx, q, OpAddFlight, insertFlight, &flight.Number); err != nil {
				return err
			}

			info := flight.Info()
			insertInfo := builder.InsertInto("flightinfo").
				Set("fiid", info.ID).
				Set("flight_id", info.FlightID).
				Set("pilot_id", info.PilotID).
				Set("plane_id", info.PlaneID)
			if _, err := execStmt(ctx, q, OpAddFlight, insertInfo); err != nil {
				return &runtime.ConsistencyError{Op: OpAddFlight, Step: "link flight to pilot and plane", Err: err}
			}
			return nil
		})
		if err != nil {
			return Flight{}, err
		}

		log.Infow("flight added", "fnum", flight.Number, "pilot_id", flight.PilotID, "plane_id", flight.PlaneID)
		return flight, nil
	})
}

// GetFlight returns the flight with the given number.
func (s *Service) GetFlight(ctx context.Context, fnum int) (Flight, error) {
	return run(s, OpGetFlight, func(log *zap.SugaredLogger) (Flight, error) {
		stmt := builder.Select(
			"f.fnum", "f.cost", "f.num_sold", "f.num_stops",
			"f.actual_departure_date", "f.actual_arrival_date",
			"f.arrival_airport", "f.departure_airport",
			"fi.pilot_id", "fi.plane_id",
		).
			From("flight f").
			InnerJoin("flightinfo fi", "fi.flight_id = f.fnum").
			Where(builder.Eq("f.fnum", fnum))

		return collectOne[Flight](ctx, s.db, OpGetFlight, stmt)
	})
}
