package airline

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/marshallshelly/airline/pkg/runtime"
)

func invalid(field, format string, args ...any) error {
	return &runtime.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func requireText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "must not be empty")
	}
	return limitText(field, value, max)
}

func limitText(field, value string, max int) error {
	if n := utf8.RuneCountInString(value); n > max {
		return invalid(field, "must be at most %d characters, got %d", max, n)
	}
	return nil
}

func requireNonNegative(field string, v int) error {
	if v < 0 {
		return invalid(field, "must not be negative, got %d", v)
	}
	return nil
}

func requireID(field string, v int) error {
	if v <= 0 {
		return invalid(field, "must be a positive id, got %d", v)
	}
	return nil
}

func requireDate(field string, t time.Time) error {
	if t.IsZero() {
		return invalid(field, "is required")
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the input against the plane table's constraints.
func (in PlaneInput) Validate() error {
	if err := firstError(
		requireText("make", in.Make, 32),
		requireText("model", in.Model, 64),
		requireNonNegative("age", in.Age),
	); err != nil {
		return err
	}
	if in.Seats <= 0 {
		return invalid("seats", "must be greater than zero, got %d", in.Seats)
	}
	return nil
}

// Validate checks the input against the pilot table's constraints.
func (in PilotInput) Validate() error {
	return firstError(
		requireText("full_name", in.FullName, 128),
		requireText("nationality", in.Nationality, 24),
	)
}

// Validate checks the input against the flight table's constraints.
func (in FlightInput) Validate() error {
	if err := firstError(
		requireNonNegative("cost", in.Cost),
		requireNonNegative("num_sold", in.NumSold),
		requireNonNegative("num_stops", in.NumStops),
		requireDate("departure_date", in.DepartureDate),
		requireDate("arrival_date", in.ArrivalDate),
		requireText("arrival_airport", in.ArrivalAirport, 5),
		requireText("departure_airport", in.DepartureAirport, 5),
		requireID("pilot_id", in.PilotID),
		requireID("plane_id", in.PlaneID),
	); err != nil {
		return err
	}
	if dateOnly(in.ArrivalDate).Before(dateOnly(in.DepartureDate)) {
		return invalid("arrival_date", "must not be before the departure date")
	}
	return nil
}

// Validate checks the input against the technician table's constraints.
func (in TechnicianInput) Validate() error {
	return requireText("full_name", in.FullName, 128)
}

// Validate checks the input against the customer table's constraints. now
// bounds the date of birth.
func (in CustomerInput) Validate(now time.Time) error {
	if err := firstError(
		requireText("fname", in.FirstName, 24),
		requireText("lname", in.LastName, 24),
		limitText("address", in.Address, 256),
		limitText("phone", in.Phone, 16),
		limitText("zipcode", in.Zipcode, 10),
		requireDate("dob", in.DOB),
	); err != nil {
		return err
	}
	if in.Gender != GenderMale && in.Gender != GenderFemale {
		return invalid("gender", "must be M or F, got %q", in.Gender)
	}
	if dateOnly(in.DOB).After(dateOnly(now)) {
		return invalid("dob", "must not be in the future")
	}
	return nil
}

// Validate checks the input against the repairs table's constraints.
func (in RepairInput) Validate() error {
	return firstError(
		requireDate("repair_date", in.Date),
		limitText("repair_code", in.Code, 10),
		requireID("pilot_id", in.PilotID),
		requireID("plane_id", in.PlaneID),
		requireID("technician_id", in.TechnicianID),
	)
}

func validateStatus(s ReservationStatus) error {
	switch s {
	case StatusConfirmed, StatusWaitlisted, StatusReserved:
		return nil
	default:
		return invalid("status", "must be C, W or R, got %q", s)
	}
}
