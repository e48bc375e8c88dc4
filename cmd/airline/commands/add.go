package commands

import (
	"github.com/spf13/cobra"

	"github.com/marshallshelly/airline/cmd/airline/input"
	"github.com/marshallshelly/airline/cmd/airline/output"
	"github.com/marshallshelly/airline/pkg/airline"
)

var (
	planeFlags struct {
		make, model string
		age, seats  int
	}
	pilotFlags struct {
		name, nationality string
	}
	flightFlags struct {
		cost, sold, stops      int
		departure, arrival     string
		fromAirport, toAirport string
		pilot, plane           int
	}
	technicianFlags struct {
		name string
	}
	customerFlags struct {
		fname, lname, gender, dob string
		address, phone, zipcode   string
	}
	repairFlags struct {
		date, code               string
		pilot, plane, technician int
	}
)

var planeCmd = &cobra.Command{Use: "plane", Short: "Manage planes"}

var planeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a plane",
	Long: `Register a plane and print its generated id.

Examples:
  airline plane add --make Boeing --model 737 --age 4 --seats 180`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlaneAdd(cmd)
	},
}

var pilotCmd = &cobra.Command{Use: "pilot", Short: "Manage pilots"}

var pilotAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a pilot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPilotAdd(cmd)
	},
}

var flightCmd = &cobra.Command{Use: "flight", Short: "Manage flights"}

var flightAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a flight with its pilot and plane",
	Long: `Schedule a flight and link it to a pilot and a plane. Both rows are
written together; when the link fails no flight is left behind.

Dates are MM-DD-YYYY or YYYY-MM-DD.

Examples:
  airline flight add --cost 300 --departure 07-04-2024 --arrival 07-04-2024 \
    --from JFK --to LAX --pilot 1 --plane 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlightAdd(cmd)
	},
}

var technicianCmd = &cobra.Command{Use: "technician", Short: "Manage technicians"}

var technicianAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a technician",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTechnicianAdd(cmd)
	},
}

var customerCmd = &cobra.Command{Use: "customer", Short: "Manage customers"}

var customerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a customer",
	Long: `Register a customer and print the generated id. Customers that share a
name and date of birth are kept apart by that id.

Examples:
  airline customer add --fname Ann --lname Lee --gender F --dob 01-31-1990`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCustomerAdd(cmd)
	},
}

var repairCmd = &cobra.Command{Use: "repair", Short: "Record plane repairs"}

var repairAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a repair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepairAdd(cmd)
	},
}

func init() {
	rootCmd.AddCommand(planeCmd, pilotCmd, flightCmd, technicianCmd, customerCmd, repairCmd)
	planeCmd.AddCommand(planeAddCmd)
	pilotCmd.AddCommand(pilotAddCmd)
	flightCmd.AddCommand(flightAddCmd)
	technicianCmd.AddCommand(technicianAddCmd)
	customerCmd.AddCommand(customerAddCmd)
	repairCmd.AddCommand(repairAddCmd)

	f := planeAddCmd.Flags()
	f.StringVar(&planeFlags.make, "make", "", "Manufacturer")
	f.StringVar(&planeFlags.model, "model", "", "Model")
	f.IntVar(&planeFlags.age, "age", 0, "Age in years")
	f.IntVar(&planeFlags.seats, "seats", 0, "Number of seats")

	f = pilotAddCmd.Flags()
	f.StringVar(&pilotFlags.name, "name", "", "Full name")
	f.StringVar(&pilotFlags.nationality, "nationality", "", "Nationality")

	f = flightAddCmd.Flags()
	f.IntVar(&flightFlags.cost, "cost", 0, "Ticket cost")
	f.IntVar(&flightFlags.sold, "sold", 0, "Seats already sold")
	f.IntVar(&flightFlags.stops, "stops", 0, "Number of stops")
	f.StringVar(&flightFlags.departure, "departure", "", "Departure date")
	f.StringVar(&flightFlags.arrival, "arrival", "", "Arrival date")
	f.StringVar(&flightFlags.fromAirport, "from", "", "Departure airport code")
	f.StringVar(&flightFlags.toAirport, "to", "", "Arrival airport code")
	f.IntVar(&flightFlags.pilot, "pilot", 0, "Pilot id")
	f.IntVar(&flightFlags.plane, "plane", 0, "Plane id")

	f = technicianAddCmd.Flags()
	f.StringVar(&technicianFlags.name, "name", "", "Full name")

	f = customerAddCmd.Flags()
	f.StringVar(&customerFlags.fname, "fname", "", "First name")
	f.StringVar(&customerFlags.lname, "lname", "", "Last name")
	f.StringVar(&customerFlags.gender, "gender", "", "Gender (M or F)")
	f.StringVar(&customerFlags.dob, "dob", "", "Date of birth")
	f.StringVar(&customerFlags.address, "address", "", "Street address")
	f.StringVar(&customerFlags.phone, "phone", "", "Phone number")
	f.StringVar(&customerFlags.zipcode, "zipcode", "", "Zip code")

	f = repairAddCmd.Flags()
	f.StringVar(&repairFlags.date, "date", "", "Repair date")
	f.StringVar(&repairFlags.code, "code", "", "Repair code")
	f.IntVar(&repairFlags.pilot, "pilot", 0, "Pilot id")
	f.IntVar(&repairFlags.plane, "plane", 0, "Plane id")
	f.IntVar(&repairFlags.technician, "technician", 0, "Technician id")
}

func runPlaneAdd(cmd *cobra.Command) error {
	in := airline.PlaneInput{
		Make:  planeFlags.make,
		Model: planeFlags.model,
		Age:   planeFlags.age,
		Seats: planeFlags.seats,
	}
	if err := in.Validate(); err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *airline.Service) error {
		plane, err := svc.AddPlane(cmd.Context(), in)
		if err != nil {
			return err
		}
		return emit(plane, func() { output.Success("Added plane %d", plane.ID) })
	})
}

func runPilotAdd(cmd *cobra.Command) error {
	in := airline.PilotInput{FullName: pilotFlags.name, Nationality: pilotFlags.nationality}
	if err := in.Validate(); err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *airline.Service) error {
		pilot, err := svc.AddPilot(cmd.Context(), in)
		if err != nil {
			return err
		}
		return emit(pilot, func() { output.Success("Added pilot %d", pilot.ID) })
	})
}

func runFlightAdd(cmd *cobra.Command) error {
	var p input.Parser
	in := airline.FlightInput{
		Cost:             flightFlags.cost,
		NumSold:          flightFlags.sold,
		NumStops:         flightFlags.stops,
		DepartureDate:    p.Date("departure_date", flightFlags.departure),
		ArrivalDate:      p.Date("arrival_date", flightFlags.arrival),
		ArrivalAirport:   flightFlags.toAirport,
		DepartureAirport: flightFlags.fromAirport,
		PilotID:          flightFlags.pilot,
		PlaneID:          flightFlags.plane,
	}
	if err := p.Err(); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *airline.Service) error {
		flight, err := svc.AddFlight(cmd.Context(), in)
		if err != nil {
			return err
		}
		return emit(flight, func() { output.Success("Added flight %d", flight.Number) })
	})
}

func runTechnicianAdd(cmd *cobra.Command) error {
	in := airline.TechnicianInput{FullName: technicianFlags.name}
	if err := in.Validate(); err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *airline.Service) error {
		tech, err := svc.AddTechnician(cmd.Context(), in)
		if err != nil {
			return err
		}
		return emit(tech, func() { output.Success("Added technician %d", tech.ID) })
	})
}

// customerInput parses the customer flags. Range checks are left to
// AddCustomer, which knows the current date.
func customerInput() (airline.CustomerInput, error) {
	var p input.Parser
	in := airline.CustomerInput{
		FirstName: customerFlags.fname,
		LastName:  customerFlags.lname,
		Gender:    p.Gender("gender", customerFlags.gender),
		DOB:       p.Date("dob", customerFlags.dob),
		Address:   customerFlags.address,
		Phone:     customerFlags.phone,
		Zipcode:   customerFlags.zipcode,
	}
	return in, p.Err()
}

func runCustomerAdd(cmd *cobra.Command) error {
	in, err := customerInput()
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *airline.Service) error {
		customer, err := svc.AddCustomer(cmd.Context(), in)
		if err != nil {
			return err
		}
		return emit(customer, func() { output.Success("Added customer %d", customer.ID) })
	})
}

func runRepairAdd(cmd *cobra.Command) error {
	date, err := input.Date("repair_date", repairFlags.date)
	if err != nil {
		return err
	}
	in := airline.RepairInput{
		Date:         date,
		Code:         repairFlags.code,
		PilotID:      repairFlags.pilot,
		PlaneID:      repairFlags.plane,
		TechnicianID: repairFlags.technician,
	}
	if err := in.Validate(); err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *airline.Service) error {
		repair, err := svc.AddRepair(cmd.Context(), in)
		if err != nil {
			return err
		}
		return emit(repair, func() { output.Success("Recorded repair %d for plane %d", repair.ID, repair.PlaneID) })
	})
}
