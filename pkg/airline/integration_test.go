//go:build integration

package airline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/marshallshelly/airline/internal/testdb"
	"github.com/marshallshelly/airline/pkg/migration"
	"github.com/marshallshelly/airline/pkg/runtime"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// setupService starts a database with the airline schema. The pool allows
// several sessions so concurrent bookings really overlap.
func setupService(t *testing.T) (*Service, *runtime.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := runtime.ConnectWithURL(ctx, testdb.Start(t)+"&pool_max_conns=8", nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	migrations, err := migration.Load()
	require.NoError(t, err)

	exec := migration.NewExecutor(db, nil)
	require.NoError(t, exec.Initialize(ctx))
	_, err = exec.ApplyAll(ctx, migrations)
	require.NoError(t, err)

	return New(db, nil), db
}

type fixture struct {
	pilot Pilot
	plane Plane
	tech  Technician
}

func newFixture(t *testing.T, svc *Service, seats int) fixture {
	t.Helper()
	ctx := context.Background()

	pilot, err := svc.AddPilot(ctx, PilotInput{FullName: "Chuck Yeager", Nationality: "US"})
	require.NoError(t, err)
	plane, err := svc.AddPlane(ctx, PlaneInput{Make: "Airbus", Model: "A320", Age: 3, Seats: seats})
	require.NoError(t, err)
	tech, err := svc.AddTechnician(ctx, TechnicianInput{FullName: "Rosie Riveter"})
	require.NoError(t, err)

	return fixture{pilot: pilot, plane: plane, tech: tech}
}

func (f fixture) flight(t *testing.T, svc *Service, sold int, dep time.Time) Flight {
	t.Helper()
	flight, err := svc.AddFlight(context.Background(), FlightInput{
		Cost: 300, NumSold: sold, NumStops: 0,
		DepartureDate: dep, ArrivalDate: dep.AddDate(0, 0, 1),
		ArrivalAirport: "LAX", DepartureAirport: "JFK",
		PilotID: f.pilot.ID, PlaneID: f.plane.ID,
	})
	require.NoError(t, err)
	return flight
}

func newCustomer(t *testing.T, svc *Service, fname string) Customer {
	t.Helper()
	c, err := svc.AddCustomer(context.Background(), CustomerInput{
		FirstName: fname, LastName: "Traveler", Gender: GenderMale, DOB: date(1985, 5, 5),
	})
	require.NoError(t, err)
	return c
}

func TestAirline_Integration(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	t.Run("AddPlane round trip", func(t *testing.T) {
		inputs := []PlaneInput{
			{Make: "Boeing", Model: "747", Age: 0, Seats: 1},
			{Make: "Embraer", Model: "E175", Age: 12, Seats: 76},
			{Make: "Cessna", Model: "O'Neil Special", Age: 40, Seats: 4},
		}
		for _, in := range inputs {
			added, err := svc.AddPlane(ctx, in)
			require.NoError(t, err)
			assert.Positive(t, added.ID)

			got, err := svc.GetPlane(ctx, added.ID)
			require.NoError(t, err)
			assert.Equal(t, Plane{ID: added.ID, Make: in.Make, Model: in.Model, Age: in.Age, Seats: in.Seats}, got)
		}

		_, err := svc.GetPlane(ctx, 999999)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	})

	t.Run("generated keys are distinct", func(t *testing.T) {
		a, err := svc.AddPilot(ctx, PilotInput{FullName: "Ann O'Hara", Nationality: "IE"})
		require.NoError(t, err)
		b, err := svc.AddPilot(ctx, PilotInput{FullName: "Ann O'Hara", Nationality: "IE"})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("AddFlight links pilot and plane", func(t *testing.T) {
		f := newFixture(t, svc, 10)
		dep := date(2024, 7, 4)

		first := f.flight(t, svc, 2, dep)
		second := f.flight(t, svc, 0, dep)
		assert.NotEqual(t, first.Number, second.Number, "flights sharing dates keep their own keys")

		got, err := svc.GetFlight(ctx, first.Number)
		require.NoError(t, err)
		assert.Equal(t, first, got)
		assert.Equal(t, f.pilot.ID, got.PilotID)
		assert.Equal(t, f.plane.ID, got.PlaneID)

		const infoSQL = "SELECT fiid, flight_id, pilot_id, plane_id FROM flightinfo WHERE flight_id = $1"
		rows, err := db.Query(ctx, "test", infoSQL, first.Number)
		require.NoError(t, err)
		info, err := runtime.CollectOne("test", infoSQL, rows, pgx.RowToStructByName[FlightInfo])
		require.NoError(t, err)
		assert.Equal(t, first.Info(), info)

		_, err = svc.GetFlight(ctx, second.Number+1000)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	})

	t.Run("AddFlight failure leaves no flight behind", func(t *testing.T) {
		f := newFixture(t, svc, 10)

		var before int
		require.NoError(t, db.QueryRow(ctx, "test", "SELECT COUNT(*) FROM flight").Scan(&before))

		_, err := svc.AddFlight(ctx, FlightInput{
			Cost: 1, DepartureDate: date(2024, 1, 1), ArrivalDate: date(2024, 1, 1),
			ArrivalAirport: "SFO", DepartureAirport: "SEA",
			PilotID: 999999, PlaneID: f.plane.ID,
		})
		require.Error(t, err)

		var ce *runtime.ConsistencyError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, OpAddFlight, ce.Op)
		assert.True(t, ce.RolledBack)
		assert.True(t, runtime.IsForeignKeyViolation(err))

		var after int
		require.NoError(t, db.QueryRow(ctx, "test", "SELECT COUNT(*) FROM flight").Scan(&after))
		assert.Equal(t, before, after)
	})

	t.Run("AddCustomer round trip keeps namesakes apart", func(t *testing.T) {
		in := CustomerInput{
			FirstName: "Ann", LastName: "Lee", Gender: GenderFemale, DOB: date(1990, 1, 1),
			Address: "1 Main St", Phone: "555-0100", Zipcode: "92501",
		}

		first, err := svc.AddCustomer(ctx, in)
		require.NoError(t, err)

		found, err := svc.FindCustomers(ctx, "Ann", "Lee", date(1990, 1, 1))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, first.ID, found[0].ID)

		in.Address = "99 Other Rd"
		second, err := svc.AddCustomer(ctx, in)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		got, err := svc.GetCustomer(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "1 Main St", got.Address)
		assert.Equal(t, first, got)

		got, err = svc.GetCustomer(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "99 Other Rd", got.Address)

		found, err = svc.FindCustomers(ctx, "Ann", "Lee", date(1990, 1, 1))
		require.NoError(t, err)
		assert.Len(t, found, 2)

		none, err := svc.FindCustomers(ctx, "Nobody", "Here", date(1990, 1, 1))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("BookFlight confirms then waitlists", func(t *testing.T) {
		f := newFixture(t, svc, 2)
		flight := f.flight(t, svc, 0, date(2024, 8, 1))

		statuses := make([]ReservationStatus, 0, 3)
		for i := 0; i < 3; i++ {
			c := newCustomer(t, svc, "Pat")
			res, err := svc.BookFlight(ctx, c.ID, flight.Number)
			require.NoError(t, err)
			assert.Positive(t, res.Number)
			statuses = append(statuses, res.Status)
		}
		assert.Equal(t, []ReservationStatus{StatusConfirmed, StatusConfirmed, StatusWaitlisted}, statuses)

		got, err := svc.GetFlight(ctx, flight.Number)
		require.NoError(t, err)
		assert.Equal(t, 2, got.NumSold)

		confirmed, err := svc.CountPassengersWithStatus(ctx, flight.Number, StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, 2, confirmed)

		waitlisted, err := svc.CountPassengersWithStatus(ctx, flight.Number, StatusWaitlisted)
		require.NoError(t, err)
		assert.Equal(t, 1, waitlisted)

		reserved, err := svc.CountPassengersWithStatus(ctx, flight.Number, StatusReserved)
		require.NoError(t, err)
		assert.Zero(t, reserved)
	})

	t.Run("BookFlight unknown flight", func(t *testing.T) {
		c := newCustomer(t, svc, "Lost")
		_, err := svc.BookFlight(ctx, c.ID, 999999)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	})

	t.Run("BookFlight unknown customer rolls back the seat", func(t *testing.T) {
		f := newFixture(t, svc, 5)
		flight := f.flight(t, svc, 0, date(2024, 9, 1))

		_, err := svc.BookFlight(ctx, 999999, flight.Number)
		var ce *runtime.ConsistencyError
		require.ErrorAs(t, err, &ce)
		assert.True(t, ce.RolledBack)
		assert.True(t, runtime.IsForeignKeyViolation(err))

		got, err := svc.GetFlight(ctx, flight.Number)
		require.NoError(t, err)
		assert.Zero(t, got.NumSold)
	})

	t.Run("BookFlight last seat under concurrency", func(t *testing.T) {
		for round := 0; round < 5; round++ {
			f := newFixture(t, svc, 2)
			flight := f.flight(t, svc, 1, date(2024, 10, 1+round))
			a := newCustomer(t, svc, "Alice")
			b := newCustomer(t, svc, "Bob")

			var (
				mu       sync.Mutex
				statuses []ReservationStatus
				start    = make(chan struct{})
			)

			g, gctx := errgroup.WithContext(ctx)
			for _, c := range []Customer{a, b} {
				g.Go(func() error {
					<-start
					res, err := svc.BookFlight(gctx, c.ID, flight.Number)
					if err != nil {
						return err
					}
					mu.Lock()
					statuses = append(statuses, res.Status)
					mu.Unlock()
					return nil
				})
			}
			close(start)
			require.NoError(t, g.Wait())

			assert.ElementsMatch(t, []ReservationStatus{StatusConfirmed, StatusWaitlisted}, statuses)

			got, err := svc.GetFlight(ctx, flight.Number)
			require.NoError(t, err)
			assert.Equal(t, 2, got.NumSold, "num_sold rises by exactly one")
		}
	})

	t.Run("BookFlight many callers never oversell", func(t *testing.T) {
		const seats, callers = 3, 12
		f := newFixture(t, svc, seats)
		flight := f.flight(t, svc, 0, date(2024, 11, 11))

		customers := make([]Customer, callers)
		for i := range customers {
			customers[i] = newCustomer(t, svc, "Crowd")
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, c := range customers {
			g.Go(func() error {
				_, err := svc.BookFlight(gctx, c.ID, flight.Number)
				return err
			})
		}
		require.NoError(t, g.Wait())

		confirmed, err := svc.CountPassengersWithStatus(ctx, flight.Number, StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, seats, confirmed)

		waitlisted, err := svc.CountPassengersWithStatus(ctx, flight.Number, StatusWaitlisted)
		require.NoError(t, err)
		assert.Equal(t, callers-seats, waitlisted)

		got, err := svc.GetFlight(ctx, flight.Number)
		require.NoError(t, err)
		assert.Equal(t, seats, got.NumSold)
	})

	t.Run("ListAvailableSeats", func(t *testing.T) {
		f := newFixture(t, svc, 150)
		dep := date(2024, 12, 24)
		flight := f.flight(t, svc, 42, dep)

		seats, err := svc.ListAvailableSeats(ctx, flight.Number, dep)
		require.NoError(t, err)
		assert.Equal(t, 150-42, seats)

		c := newCustomer(t, svc, "Holly")
		_, err = svc.BookFlight(ctx, c.ID, flight.Number)
		require.NoError(t, err)

		seats, err = svc.ListAvailableSeats(ctx, flight.Number, dep)
		require.NoError(t, err)
		assert.Equal(t, 150-43, seats)

		_, err = svc.ListAvailableSeats(ctx, flight.Number, dep.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, runtime.ErrNotFound)

		_, err = svc.ListAvailableSeats(ctx, 999999, dep)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	})

	t.Run("repair reports", func(t *testing.T) {
		_, err := db.Exec(ctx, "test", "TRUNCATE repairs")
		require.NoError(t, err)

		f := newFixture(t, svc, 10)
		p2, err := svc.AddPlane(ctx, PlaneInput{Make: "Boeing", Model: "777", Seats: 300})
		require.NoError(t, err)
		p3, err := svc.AddPlane(ctx, PlaneInput{Make: "Boeing", Model: "787", Seats: 250})
		require.NoError(t, err)

		repairs := []struct {
			plane int
			on    time.Time
		}{
			{p2.ID, date(2021, 3, 1)},
			{p2.ID, date(2022, 3, 1)},
			{p2.ID, date(2022, 6, 1)},
			{f.plane.ID, date(2020, 1, 1)},
			{p3.ID, date(2022, 1, 1)},
		}
		for _, r := range repairs {
			_, err := svc.AddRepair(ctx, RepairInput{
				Date: r.on, Code: "CHK", PilotID: f.pilot.ID, PlaneID: r.plane, TechnicianID: f.tech.ID,
			})
			require.NoError(t, err)
		}

		perPlane, err := svc.ListRepairsPerPlane(ctx)
		require.NoError(t, err)

		lo, hi := f.plane.ID, p3.ID
		if hi < lo {
			lo, hi = hi, lo
		}
		assert.Equal(t, []PlaneRepairCount{
			{PlaneID: p2.ID, Count: 3},
			{PlaneID: lo, Count: 1},
			{PlaneID: hi, Count: 1},
		}, perPlane)

		perYear, err := svc.ListRepairsPerYear(ctx)
		require.NoError(t, err)
		assert.Equal(t, []YearRepairCount{
			{Year: 2020, Count: 1},
			{Year: 2021, Count: 1},
			{Year: 2022, Count: 3},
		}, perYear)
	})

	t.Run("statement error keeps the session usable", func(t *testing.T) {
		_, err := svc.AddRepair(ctx, RepairInput{Date: date(2024, 1, 1), PilotID: 999999, PlaneID: 999999, TechnicianID: 999999})
		var se *runtime.StatementError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, OpAddRepair, se.Op)
		assert.NotEmpty(t, se.Constraint)

		_, err = svc.AddTechnician(ctx, TechnicianInput{FullName: "Still Working"})
		assert.NoError(t, err)
	})
}
