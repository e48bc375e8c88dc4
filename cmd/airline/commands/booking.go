package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/airline/cmd/airline/input"
	"github.com/marshallshelly/airline/cmd/airline/output"
	"github.com/marshallshelly/airline/pkg/airline"
)

var (
	bookCustomer int
	bookFlight   int
	bookNew      bool

	seatsFlight int
	seatsDate   string

	passengersFlight int
	passengersStatus string
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a seat on a flight",
	Long: `Book a seat for a customer. The reservation is confirmed while seats
remain and waitlisted otherwise.

With --new-customer the customer is registered first from the customer
flags, the way the interactive menu offers it.

Examples:
  airline book --customer 3 --flight 12
  airline book --new-customer --fname Ann --lname Lee --gender F --dob 01-31-1990 --flight 12`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBook(cmd)
	},
}

var seatsCmd = &cobra.Command{
	Use:   "seats",
	Short: "Show the seats left on a flight",
	Long: `Show plane seats minus seats sold for the flight departing on the
given date.

Examples:
  airline seats --flight 12 --date 07-04-2024`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeats(cmd)
	},
}

var passengersCmd = &cobra.Command{
	Use:   "passengers",
	Short: "Count a flight's passengers with a reservation status",
	Long: `Count the reservations on a flight with status C (confirmed),
W (waitlisted) or R (reserved).

Examples:
  airline passengers --flight 12 --status W`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPassengers(cmd)
	},
}

func init() {
	rootCmd.AddCommand(bookCmd, seatsCmd, passengersCmd)

	bookCmd.Flags().IntVar(&bookCustomer, "customer", 0, "Customer id")
	bookCmd.Flags().IntVar(&bookFlight, "flight", 0, "Flight number")
	bookCmd.Flags().BoolVar(&bookNew, "new-customer", false, "Register the customer from the customer flags first")
	bookCmd.Flags().StringVar(&customerFlags.fname, "fname", "", "First name (with --new-customer)")
	bookCmd.Flags().StringVar(&customerFlags.lname, "lname", "", "Last name (with --new-customer)")
	bookCmd.Flags().StringVar(&customerFlags.gender, "gender", "", "Gender M or F (with --new-customer)")
	bookCmd.Flags().StringVar(&customerFlags.dob, "dob", "", "Date of birth (with --new-customer)")
	bookCmd.Flags().StringVar(&customerFlags.address, "address", "", "Street address (with --new-customer)")
	bookCmd.Flags().StringVar(&customerFlags.phone, "phone", "", "Phone number (with --new-customer)")
	bookCmd.Flags().StringVar(&customerFlags.zipcode, "zipcode", "", "Zip code (with --new-customer)")
	bookCmd.MarkFlagsMutuallyExclusive("customer", "new-customer")
	_ = bookCmd.MarkFlagRequired("flight")

	seatsCmd.Flags().IntVar(&seatsFlight, "flight", 0, "Flight number")
	seatsCmd.Flags().StringVar(&seatsDate, "date", "", "Departure date")
	_ = seatsCmd.MarkFlagRequired("flight")
	_ = seatsCmd.MarkFlagRequired("date")

	passengersCmd.Flags().IntVar(&passengersFlight, "flight", 0, "Flight number")
	passengersCmd.Flags().StringVar(&passengersStatus, "status", "", "Reservation status (C, W or R)")
	_ = passengersCmd.MarkFlagRequired("flight")
	_ = passengersCmd.MarkFlagRequired("status")
}

func runBook(cmd *cobra.Command) error {
	ctx := cmd.Context()

	var newCustomer airline.CustomerInput
	if bookNew {
		in, err := customerInput()
		if err != nil {
			return err
		}
		newCustomer = in
	}

	return withService(ctx, func(svc *airline.Service) error {
		cid := bookCustomer
		if bookNew {
			customer, err := svc.AddCustomer(ctx, newCustomer)
			if err != nil {
				return err
			}
			cid = customer.ID
			if !jsonOutput {
				output.Success("Added customer %d", cid)
			}
		}

		res, err := svc.BookFlight(ctx, cid, bookFlight)
		if err != nil {
			if bookNew {
				return fmt.Errorf("customer %d was added but the booking failed: %w", cid, err)
			}
			return err
		}

		return emit(res, func() {
			if res.Status == airline.StatusConfirmed {
				output.Success("Reservation %d on flight %d is confirmed", res.Number, res.FlightNumber)
				return
			}
			output.Warning("Flight %d is full; reservation %d is waitlisted", res.FlightNumber, res.Number)
		})
	})
}

func runSeats(cmd *cobra.Command) error {
	date, err := input.Date("departure_date", seatsDate)
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *airline.Service) error {
		seats, err := svc.ListAvailableSeats(cmd.Context(), seatsFlight, date)
		if err != nil {
			return err
		}
		return emit(map[string]any{"flight_number": seatsFlight, "departure_date": date.Format("2006-01-02"), "available": seats}, func() {
			output.Info("Flight %d on %s: %d seat(s) available", seatsFlight, date.Format("01-02-2006"), seats)
		})
	})
}

func runPassengers(cmd *cobra.Command) error {
	status, err := input.Status("status", passengersStatus)
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *airline.Service) error {
		n, err := svc.CountPassengersWithStatus(cmd.Context(), passengersFlight, status)
		if err != nil {
			return err
		}
		return emit(map[string]any{"flight_number": passengersFlight, "status": status, "passengers": n}, func() {
			output.Info("Flight %d: %d %s passenger(s)", passengersFlight, n, status)
		})
	})
}
