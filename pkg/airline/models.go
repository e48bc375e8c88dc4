package airline

import (
	"fmt"
	"strings"
	"time"
)

// Gender is a customer's gender code as stored in customer.gtype.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// ParseGender accepts "M" or "F" in any case.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToUpper(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale:
		return g, nil
	default:
		return "", fmt.Errorf("invalid gender %q: expected M or F", s)
	}
}

// ReservationStatus is the state of a reservation.
type ReservationStatus string

const (
	StatusConfirmed  ReservationStatus = "C"
	StatusWaitlisted ReservationStatus = "W"
	// StatusReserved is the third value the schema allows. BookFlight never
	// assigns it; it is accepted as a report filter only.
	StatusReserved ReservationStatus = "R"
)

// ParseReservationStatus accepts C, W or R in any case.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch st := ReservationStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusConfirmed, StatusWaitlisted, StatusReserved:
		return st, nil
	default:
		return "", fmt.Errorf("invalid status %q: expected C, W or R", s)
	}
}

// String returns a readable name for the status.
func (s ReservationStatus) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusWaitlisted:
		return "waitlisted"
	case StatusReserved:
		return "reserved"
	default:
		return string(s)
	}
}

// Plane is a row of the plane table.
type Plane struct {
	ID    int    `db:"id" json:"id"`
	Make  string `db:"make" json:"make"`
	Model string `db:"model" json:"model"`
	Age   int    `db:"age" json:"age"`
	Seats int    `db:"seats" json:"seats"`
}

// Pilot is a row of the pilot table.
type Pilot struct {
	ID          int    `db:"id" json:"id"`
	FullName    string `db:"fullname" json:"full_name"`
	Nationality string `db:"nationality" json:"nationality"`
}

// Flight is a flight row together with the pilot and plane assigned to it
// through flightinfo.
type Flight struct {
	Number           int       `db:"fnum" json:"number"`
	Cost             int       `db:"cost" json:"cost"`
	NumSold          int       `db:"num_sold" json:"num_sold"`
	NumStops         int       `db:"num_stops" json:"num_stops"`
	DepartureDate    time.Time `db:"actual_departure_date" json:"departure_date"`
	ArrivalDate      time.Time `db:"actual_arrival_date" json:"arrival_date"`
	ArrivalAirport   string    `db:"arrival_airport" json:"arrival_airport"`
	DepartureAirport string    `db:"departure_airport" json:"departure_airport"`
	PilotID          int       `db:"pilot_id" json:"pilot_id"`
	PlaneID          int       `db:"plane_id" json:"plane_id"`
}

// FlightInfo links a flight to its pilot and plane. There is one per
// flight and its key is the flight number.
type FlightInfo struct {
	ID       int `db:"fiid" json:"id"`
	FlightID int `db:"flight_id" json:"flight_id"`
	PilotID  int `db:"pilot_id" json:"pilot_id"`
	PlaneID  int `db:"plane_id" json:"plane_id"`
}

// Info returns the flightinfo row for f.
func (f Flight) Info() FlightInfo {
	return FlightInfo{ID: f.Number, FlightID: f.Number, PilotID: f.PilotID, PlaneID: f.PlaneID}
}

// Technician is a row of the technician table.
type Technician struct {
	ID       int    `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
}

// Customer is a row of the customer table. Optional contact fields read
// back as empty strings.
type Customer struct {
	ID        int       `db:"id" json:"id"`
	FirstName string    `db:"fname" json:"first_name"`
	LastName  string    `db:"lname" json:"last_name"`
	Gender    Gender    `db:"gtype" json:"gender"`
	DOB       time.Time `db:"dob" json:"dob"`
	Address   string    `db:"address" json:"address"`
	Phone     string    `db:"phone" json:"phone"`
	Zipcode   string    `db:"zipcode" json:"zipcode"`
}

// Reservation is a row of the reservation table.
type Reservation struct {
	Number       int               `db:"rnum" json:"number"`
	CustomerID   int               `db:"cid" json:"customer_id"`
	FlightNumber int               `db:"fid" json:"flight_number"`
	Status       ReservationStatus `db:"status" json:"status"`
}

// Repair is a row of the repairs table.
type Repair struct {
	ID           int       `db:"rid" json:"id"`
	Date         time.Time `db:"repair_date" json:"date"`
	Code         string    `db:"repair_code" json:"code"`
	PilotID      int       `db:"pilot_id" json:"pilot_id"`
	PlaneID      int       `db:"plane_id" json:"plane_id"`
	TechnicianID int       `db:"technician_id" json:"technician_id"`
}

// PlaneRepairCount is one row of the repairs-per-plane report.
type PlaneRepairCount struct {
	PlaneID int `db:"plane_id" json:"plane_id"`
	Count   int `db:"repair_count" json:"repairs"`
}

// YearRepairCount is one row of the repairs-per-year report.
type YearRepairCount struct {
	Year  int `db:"year" json:"year"`
	Count int `db:"repair_count" json:"repairs"`
}

// PlaneInput holds the fields of a plane to register.
type PlaneInput struct {
	Make  string
	Model string
	Age   int
	Seats int
}

// PilotInput holds the fields of a pilot to register.
type PilotInput struct {
	FullName    string
	Nationality string
}

// FlightInput holds the fields of a flight and the pilot and plane to
// assign to it.
type FlightInput struct {
	Cost             int
	NumSold          int
	NumStops         int
	DepartureDate    time.Time
	ArrivalDate      time.Time
	ArrivalAirport   string
	DepartureAirport string
	PilotID          int
	PlaneID          int
}

// TechnicianInput holds the fields of a technician to register.
type TechnicianInput struct {
	FullName string
}

// CustomerInput holds the fields of a customer to register.
type CustomerInput struct {
	FirstName string
	LastName  string
	Gender    Gender
	DOB       time.Time
	Address   string
	Phone     string
	Zipcode   string
}

// RepairInput holds the fields of a repair to record.
type RepairInput struct {
	Date         time.Time
	Code         string
	PilotID      int
	PlaneID      int
	TechnicianID int
}

// dateOnly drops the clock and zone so a value binds to a DATE column as
// the calendar day the caller sees.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
