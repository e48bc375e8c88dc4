package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marshallshelly/airline/cmd/airline/input"
	"github.com/marshallshelly/airline/cmd/airline/output"
	"github.com/marshallshelly/airline/pkg/airline"
)

type action int

const (
	actionAddPlane action = iota
	actionAddPilot
	actionAddFlight
	actionAddTechnician
	actionBookFlight
	actionAvailableSeats
	actionRepairsPerPlane
	actionRepairsPerYear
	actionPassengersWithStatus
	actionAddCustomer
	actionAddRepair
)

func menuItems() []list.Item {
	return []list.Item{
		menuItem{"Add Plane", "register a plane with its make, model, age and seats", actionAddPlane},
		menuItem{"Add Pilot", "register a pilot", actionAddPilot},
		menuItem{"Add Flight", "schedule a flight and assign its pilot and plane", actionAddFlight},
		menuItem{"Add Technician", "register a repair technician", actionAddTechnician},
		menuItem{"Book Flight", "reserve a seat, or join the waitlist when the flight is full", actionBookFlight},
		menuItem{"List Available Seats", "seats left on a flight departing on a given date", actionAvailableSeats},
		menuItem{"List Repairs Per Plane", "repair counts per plane, most repaired first", actionRepairsPerPlane},
		menuItem{"List Repairs Per Year", "repair counts per calendar year", actionRepairsPerYear},
		menuItem{"Passengers With Status", "count a flight's passengers that are confirmed, waitlisted or reserved", actionPassengersWithStatus},
		menuItem{"Add Customer", "register a customer without booking", actionAddCustomer},
		menuItem{"Add Repair", "record a repair of a plane", actionAddRepair},
	}
}

const datePlaceholder = "MM-DD-YYYY"

var (
	planeFields = []Field{
		{Key: "make", Label: "Make"},
		{Key: "model", Label: "Model"},
		{Key: "age", Label: "Age (years)"},
		{Key: "seats", Label: "Seats"},
	}
	pilotFields = []Field{
		{Key: "full_name", Label: "Full name"},
		{Key: "nationality", Label: "Nationality"},
	}
	flightFields = []Field{
		{Key: "cost", Label: "Cost"},
		{Key: "num_sold", Label: "Seats sold"},
		{Key: "num_stops", Label: "Stops"},
		{Key: "departure_date", Label: "Departure date", Placeholder: datePlaceholder},
		{Key: "arrival_date", Label: "Arrival date", Placeholder: datePlaceholder},
		{Key: "arrival_airport", Label: "Arrival airport", Placeholder: "LAX"},
		{Key: "departure_airport", Label: "Departure airport", Placeholder: "JFK"},
		{Key: "pilot_id", Label: "Pilot ID"},
		{Key: "plane_id", Label: "Plane ID"},
	}
	technicianFields = []Field{
		{Key: "full_name", Label: "Full name"},
	}
	customerFields = []Field{
		{Key: "fname", Label: "First name"},
		{Key: "lname", Label: "Last name"},
		{Key: "gender", Label: "Gender", Placeholder: "M or F"},
		{Key: "dob", Label: "Date of birth", Placeholder: datePlaceholder},
		{Key: "address", Label: "Address", Placeholder: "optional"},
		{Key: "phone", Label: "Phone", Placeholder: "optional"},
		{Key: "zipcode", Label: "Zip code", Placeholder: "optional"},
	}
	repairFields = []Field{
		{Key: "repair_date", Label: "Repair date", Placeholder: datePlaceholder},
		{Key: "repair_code", Label: "Repair code"},
		{Key: "pilot_id", Label: "Pilot ID"},
		{Key: "plane_id", Label: "Plane ID"},
		{Key: "technician_id", Label: "Technician ID"},
	}
	flightNumberField = Field{Key: "flight_number", Label: "Flight number"}
)

// formFor returns the input form of a, or nil when a takes no input.
func (m Model) formFor(a action) *Form {
	switch a {
	case actionAddPlane:
		return NewForm("Add Plane", planeFields, m.addPlane)
	case actionAddPilot:
		return NewForm("Add Pilot", pilotFields, m.addPilot)
	case actionAddFlight:
		return NewForm("Add Flight", flightFields, m.addFlight)
	case actionAddTechnician:
		return NewForm("Add Technician", technicianFields, m.addTechnician)
	case actionAddCustomer:
		return NewForm("Add Customer", customerFields, m.addCustomer)
	case actionAddRepair:
		return NewForm("Add Repair", repairFields, m.addRepair)
	case actionAvailableSeats:
		return NewForm("List Available Seats", []Field{
			flightNumberField,
			{Key: "departure_date", Label: "Departure date", Placeholder: datePlaceholder},
		}, m.availableSeats)
	case actionPassengersWithStatus:
		return NewForm("Passengers With Status", []Field{
			flightNumberField,
			{Key: "status", Label: "Status", Placeholder: "C, W or R"},
		}, m.passengersWithStatus)
	}
	return nil
}

// bookForm asks for a new customer's details, or an existing customer's id,
// followed by the flight number.
func (m Model) bookForm(newCustomer bool) *Form {
	if newCustomer {
		fields := append(append([]Field{}, customerFields...), flightNumberField)
		return NewForm("Book Flight: new customer", fields, m.bookNewCustomer)
	}
	return NewForm("Book Flight", []Field{
		{Key: "customer_id", Label: "Customer ID"},
		flightNumberField,
	}, m.bookExistingCustomer)
}

// do runs fn as a command and turns its outcome into a message.
func do(fn func() (resultMsg, error)) tea.Cmd {
	return func() tea.Msg {
		res, err := fn()
		if err != nil {
			return failedMsg{err: err}
		}
		return res
	}
}

func added(what string, id int) resultMsg {
	return resultMsg{title: what + " added", body: successStyle.Render(fmt.Sprintf("✓ id %d", id))}
}

func (m Model) addPlane(v []string) (tea.Cmd, error) {
	var p input.Parser
	in := airline.PlaneInput{
		Make:  input.Text(v[0]),
		Model: input.Text(v[1]),
		Age:   p.Int("age", v[2]),
		Seats: p.Int("seats", v[3]),
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return do(func() (resultMsg, error) {
		plane, err := m.ops.AddPlane(m.ctx, in)
		return added("Plane", plane.ID), err
	}), nil
}

func (m Model) addPilot(v []string) (tea.Cmd, error) {
	in := airline.PilotInput{FullName: input.Text(v[0]), Nationality: input.Text(v[1])}
	return do(func() (resultMsg, error) {
		pilot, err := m.ops.AddPilot(m.ctx, in)
		return added("Pilot", pilot.ID), err
	}), nil
}

func (m Model) addFlight(v []string) (tea.Cmd, error) {
	var p input.Parser
	in := airline.FlightInput{
		Cost:             p.Int("cost", v[0]),
		NumSold:          p.Int("num_sold", v[1]),
		NumStops:         p.Int("num_stops", v[2]),
		DepartureDate:    p.Date("departure_date", v[3]),
		ArrivalDate:      p.Date("arrival_date", v[4]),
		ArrivalAirport:   input.Text(v[5]),
		DepartureAirport: input.Text(v[6]),
		PilotID:          p.Int("pilot_id", v[7]),
		PlaneID:          p.Int("plane_id", v[8]),
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return do(func() (resultMsg, error) {
		flight, err := m.ops.AddFlight(m.ctx, in)
		return resultMsg{
			title: "Flight added",
			body:  successStyle.Render(fmt.Sprintf("✓ flight number %d", flight.Number)),
		}, err
	}), nil
}

func (m Model) addTechnician(v []string) (tea.Cmd, error) {
	in := airline.TechnicianInput{FullName: input.Text(v[0])}
	return do(func() (resultMsg, error) {
		tech, err := m.ops.AddTechnician(m.ctx, in)
		return added("Technician", tech.ID), err
	}), nil
}

func parseCustomer(v []string) (airline.CustomerInput, error) {
	var p input.Parser
	in := airline.CustomerInput{
		FirstName: input.Text(v[0]),
		LastName:  input.Text(v[1]),
		Gender:    p.Gender("gender", v[2]),
		DOB:       p.Date("dob", v[3]),
		Address:   input.Text(v[4]),
		Phone:     input.Text(v[5]),
		Zipcode:   input.Text(v[6]),
	}
	return in, p.Err()
}

func (m Model) addCustomer(v []string) (tea.Cmd, error) {
	in, err := parseCustomer(v)
	if err != nil {
		return nil, err
	}
	return do(func() (resultMsg, error) {
		c, err := m.ops.AddCustomer(m.ctx, in)
		return added("Customer", c.ID), err
	}), nil
}

func (m Model) addRepair(v []string) (tea.Cmd, error) {
	var p input.Parser
	in := airline.RepairInput{
		Date:         p.Date("repair_date", v[0]),
		Code:         input.Text(v[1]),
		PilotID:      p.Int("pilot_id", v[2]),
		PlaneID:      p.Int("plane_id", v[3]),
		TechnicianID: p.Int("technician_id", v[4]),
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return do(func() (resultMsg, error) {
		r, err := m.ops.AddRepair(m.ctx, in)
		return added("Repair", r.ID), err
	}), nil
}

func booked(res airline.Reservation, customerLine string) resultMsg {
	status := successStyle.Render("confirmed")
	if res.Status != airline.StatusConfirmed {
		status = warningStyle.Render(res.Status.String())
	}
	body := fmt.Sprintf("Reservation %d on flight %d: %s", res.Number, res.FlightNumber, status)
	if customerLine != "" {
		body = customerLine + "\n" + body
	}
	return resultMsg{title: "Flight booked", body: body}
}

func (m Model) bookNewCustomer(v []string) (tea.Cmd, error) {
	in, err := parseCustomer(v)
	if err != nil {
		return nil, err
	}
	fnum, err := input.Int("flight_number", v[7])
	if err != nil {
		return nil, err
	}
	return do(func() (resultMsg, error) {
		c, err := m.ops.AddCustomer(m.ctx, in)
		if err != nil {
			return resultMsg{}, err
		}
		res, err := m.ops.BookFlight(m.ctx, c.ID, fnum)
		if err != nil {
			return resultMsg{}, fmt.Errorf("customer %d was added but the booking failed: %w", c.ID, err)
		}
		return booked(res, fmt.Sprintf("Customer id %d", c.ID)), nil
	}), nil
}

func (m Model) bookExistingCustomer(v []string) (tea.Cmd, error) {
	var p input.Parser
	cid := p.Int("customer_id", v[0])
	fnum := p.Int("flight_number", v[1])
	if err := p.Err(); err != nil {
		return nil, err
	}
	return do(func() (resultMsg, error) {
		res, err := m.ops.BookFlight(m.ctx, cid, fnum)
		return booked(res, ""), err
	}), nil
}

func (m Model) availableSeats(v []string) (tea.Cmd, error) {
	var p input.Parser
	fnum := p.Int("flight_number", v[0])
	dep := p.Date("departure_date", v[1])
	if err := p.Err(); err != nil {
		return nil, err
	}
	return do(func() (resultMsg, error) {
		seats, err := m.ops.ListAvailableSeats(m.ctx, fnum, dep)
		return resultMsg{
			title: "Available Seats",
			body:  fmt.Sprintf("Flight %d on %s: %d seat(s) available", fnum, dep.Format("01-02-2006"), seats),
		}, err
	}), nil
}

func (m Model) passengersWithStatus(v []string) (tea.Cmd, error) {
	var p input.Parser
	fnum := p.Int("flight_number", v[0])
	status := p.Status("status", v[1])
	if err := p.Err(); err != nil {
		return nil, err
	}
	return do(func() (resultMsg, error) {
		n, err := m.ops.CountPassengersWithStatus(m.ctx, fnum, status)
		return resultMsg{
			title: "Passengers With Status",
			body:  fmt.Sprintf("Flight %d: %d %s passenger(s)", fnum, n, status),
		}, err
	}), nil
}

func (m Model) repairsPerPlane() tea.Cmd {
	return do(func() (resultMsg, error) {
		counts, err := m.ops.ListRepairsPerPlane(m.ctx)
		if err != nil {
			return resultMsg{}, err
		}
		rows := make([][]string, len(counts))
		for i, c := range counts {
			rows[i] = []string{strconv.Itoa(c.PlaneID), strconv.Itoa(c.Count)}
		}
		return resultMsg{title: "Repairs Per Plane", body: table([]string{"PLANE", "REPAIRS"}, rows)}, nil
	})
}

func (m Model) repairsPerYear() tea.Cmd {
	return do(func() (resultMsg, error) {
		counts, err := m.ops.ListRepairsPerYear(m.ctx)
		if err != nil {
			return resultMsg{}, err
		}
		rows := make([][]string, len(counts))
		for i, c := range counts {
			rows[i] = []string{strconv.Itoa(c.Year), strconv.Itoa(c.Count)}
		}
		return resultMsg{title: "Repairs Per Year", body: table([]string{"YEAR", "REPAIRS"}, rows)}, nil
	})
}

func table(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No repairs recorded")
	}
	var b strings.Builder
	_ = output.Table(&b, headers, rows)
	return strings.TrimRight(b.String(), "\n")
}
