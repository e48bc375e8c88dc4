package airline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/airline/pkg/runtime"
)

func assertInvalidField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *runtime.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, field, ve.Field)
}

func TestPlaneInput_Validate(t *testing.T) {
	valid := PlaneInput{Make: "Boeing", Model: "737-800", Age: 0, Seats: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(in *PlaneInput)
		field string
	}{
		{"empty make", func(in *PlaneInput) { in.Make = "  " }, "make"},
		{"empty model", func(in *PlaneInput) { in.Model = "" }, "model"},
		{"long make", func(in *PlaneInput) { in.Make = strings.Repeat("x", 33) }, "make"},
		{"negative age", func(in *PlaneInput) { in.Age = -1 }, "age"},
		{"zero seats", func(in *PlaneInput) { in.Seats = 0 }, "seats"},
		{"negative seats", func(in *PlaneInput) { in.Seats = -5 }, "seats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)
			assertInvalidField(t, in.Validate(), tt.field)
		})
	}
}

func TestPilotAndTechnicianInput_Validate(t *testing.T) {
	assert.NoError(t, PilotInput{FullName: "Amelia Earhart", Nationality: "US"}.Validate())
	assertInvalidField(t, PilotInput{FullName: "", Nationality: "US"}.Validate(), "full_name")
	assertInvalidField(t, PilotInput{FullName: "A", Nationality: strings.Repeat("n", 25)}.Validate(), "nationality")

	assert.NoError(t, TechnicianInput{FullName: "Sam"}.Validate())
	assertInvalidField(t, TechnicianInput{}.Validate(), "full_name")
}

func TestFlightInput_Validate(t *testing.T) {
	dep := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	valid := FlightInput{
		Cost: 250, NumSold: 0, NumStops: 1,
		DepartureDate: dep, ArrivalDate: dep,
		ArrivalAirport: "LAX", DepartureAirport: "JFK",
		PilotID: 1, PlaneID: 1,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(in *FlightInput)
		field string
	}{
		{"negative cost", func(in *FlightInput) { in.Cost = -1 }, "cost"},
		{"negative sold", func(in *FlightInput) { in.NumSold = -1 }, "num_sold"},
		{"negative stops", func(in *FlightInput) { in.NumStops = -2 }, "num_stops"},
		{"missing departure", func(in *FlightInput) { in.DepartureDate = time.Time{} }, "departure_date"},
		{"missing arrival", func(in *FlightInput) { in.ArrivalDate = time.Time{} }, "arrival_date"},
		{"arrival before departure", func(in *FlightInput) { in.ArrivalDate = dep.AddDate(0, 0, -1) }, "arrival_date"},
		{"airport too long", func(in *FlightInput) { in.ArrivalAirport = "LONGER" }, "arrival_airport"},
		{"empty airport", func(in *FlightInput) { in.DepartureAirport = "" }, "departure_airport"},
		{"missing pilot", func(in *FlightInput) { in.PilotID = 0 }, "pilot_id"},
		{"missing plane", func(in *FlightInput) { in.PlaneID = -3 }, "plane_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)
			assertInvalidField(t, in.Validate(), tt.field)
		})
	}
}

func TestCustomerInput_Validate(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	valid := CustomerInput{
		FirstName: "Ann", LastName: "Lee", Gender: GenderFemale,
		DOB: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, valid.Validate(now))

	born := valid
	born.DOB = now
	assert.NoError(t, born.Validate(now), "born today is allowed")

	tests := []struct {
		name  string
		mut   func(in *CustomerInput)
		field string
	}{
		{"empty first name", func(in *CustomerInput) { in.FirstName = "" }, "fname"},
		{"empty last name", func(in *CustomerInput) { in.LastName = " " }, "lname"},
		{"bad gender", func(in *CustomerInput) { in.Gender = "X" }, "gender"},
		{"missing dob", func(in *CustomerInput) { in.DOB = time.Time{} }, "dob"},
		{"future dob", func(in *CustomerInput) { in.DOB = now.AddDate(0, 0, 1) }, "dob"},
		{"long zipcode", func(in *CustomerInput) { in.Zipcode = "12345678901" }, "zipcode"},
		{"long phone", func(in *CustomerInput) { in.Phone = strings.Repeat("5", 17) }, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)
			assertInvalidField(t, in.Validate(now), tt.field)
		})
	}
}

func TestRepairInput_Validate(t *testing.T) {
	valid := RepairInput{Date: time.Now(), Code: "ENG1", PilotID: 1, PlaneID: 2, TechnicianID: 3}
	require.NoError(t, valid.Validate())

	in := valid
	in.TechnicianID = 0
	assertInvalidField(t, in.Validate(), "technician_id")

	in = valid
	in.Code = "ABCDEFGHIJK"
	assertInvalidField(t, in.Validate(), "repair_code")
}

func TestParseGender(t *testing.T) {
	g, err := ParseGender(" f ")
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, g)

	_, err = ParseGender("x")
	assert.Error(t, err)
}

func TestParseReservationStatus(t *testing.T) {
	for in, want := range map[string]ReservationStatus{"c": StatusConfirmed, "W": StatusWaitlisted, "r": StatusReserved} {
		got, err := ParseReservationStatus(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseReservationStatus("Z")
	assert.Error(t, err)

	assert.Equal(t, "confirmed", StatusConfirmed.String())
	assert.Equal(t, "waitlisted", StatusWaitlisted.String())
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	in := time.Date(2024, 3, 9, 23, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), dateOnly(in))
}

func TestFlight_Info(t *testing.T) {
	f := Flight{Number: 42, PilotID: 7, PlaneID: 3}
	assert.Equal(t, FlightInfo{ID: 42, FlightID: 42, PilotID: 7, PlaneID: 3}, f.Info())
}
