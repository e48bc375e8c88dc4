// Package input converts the text a user types into the values the airline
// operations take. Parse failures are *runtime.ValidationError so callers
// can reprompt for the offending field.
package input

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/marshallshelly/airline/pkg/airline"
	"github.com/marshallshelly/airline/pkg/runtime"
)

// DateLayouts are tried in order by Date.
var DateLayouts = []string{"01-02-2006", "2006-01-02", "1/2/2006"}

// Int parses a whole number.
func Int(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &runtime.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a whole number", s)}
	}
	return n, nil
}

// Date parses MM-DD-YYYY or YYYY-MM-DD.
func Date(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &runtime.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a date (use MM-DD-YYYY or YYYY-MM-DD)", s)}
}

// Gender parses M or F.
func Gender(field, s string) (airline.Gender, error) {
	g, err := airline.ParseGender(s)
	if err != nil {
		return "", &runtime.ValidationError{Field: field, Message: err.Error()}
	}
	return g, nil
}

// Status parses C, W or R.
func Status(field, s string) (airline.ReservationStatus, error) {
	st, err := airline.ParseReservationStatus(s)
	if err != nil {
		return "", &runtime.ValidationError{Field: field, Message: err.Error()}
	}
	return st, nil
}

// Text trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// Parser collects the first parse error over a sequence of fields so a
// form can be converted without checking every call.
type Parser struct {
	err error
}

// Err returns the first error seen.
func (p *Parser) Err() error { return p.err }

// Int parses s as an integer unless an earlier field failed.
func (p *Parser) Int(field, s string) int {
	if p.err != nil {
		return 0
	}
	n, err := Int(field, s)
	p.err = err
	return n
}

// Date parses s as a calendar date unless an earlier field failed.
func (p *Parser) Date(field, s string) time.Time {
	if p.err != nil {
		return time.Time{}
	}
	t, err := Date(field, s)
	p.err = err
	return t
}

// Gender parses s as M or F unless an earlier field failed.
func (p *Parser) Gender(field, s string) airline.Gender {
	if p.err != nil {
		return ""
	}
	g, err := Gender(field, s)
	p.err = err
	return g
}

// Status parses s as a reservation status unless an earlier field failed.
func (p *Parser) Status(field, s string) airline.ReservationStatus {
	if p.err != nil {
		return ""
	}
	st, err := Status(field, s)
	p.err = err
	return st
}
