package airline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marshallshelly/airline/pkg/builder"
)

var customerColumns = []string{
	"id", "fname", "lname", "gtype", "dob",
	"COALESCE(address, '') AS address",
	"COALESCE(phone, '') AS phone",
	"COALESCE(zipcode, '') AS zipcode",
}

// AddCustomer registers a customer. The id is the one the insert itself
// generated, so customers sharing a name and date of birth stay distinct.
func (s *Service) AddCustomer(ctx context.Context, in CustomerInput) (Customer, error) {
	return run(s, OpAddCustomer, func(log *zap.SugaredLogger) (Customer, error) {
		if err := in.Validate(s.now()); err != nil {
			return Customer{}, err
		}

		customer := Customer{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Gender:    in.Gender,
			DOB:       dateOnly(in.DOB),
			Address:   in.Address,
			Phone:     in.Phone,
			Zipcode:   in.Zipcode,
		}

		stmt := builder.InsertInto("customer").
			Set("fname", customer.FirstName).
			Set("lname", customer.LastName).
			Set("gtype", string(customer.Gender)).
			Set("dob", customer.DOB).
			Set("address", customer.Address).
			Set("phone", customer.Phone).
			Set("zipcode", customer.Zipcode).
			Returning("id")

		if err := scanOne(ctx, s.db, OpAddCustomer, stmt, &customer.ID); err != nil {
			return Customer{}, err
		}

		log.Infow("customer added", "customer_id", customer.ID)
		return customer, nil
	})
}

// GetCustomer returns the customer with the given id.
func (s *Service) GetCustomer(ctx context.Context, id int) (Customer, error) {
	return run(s, OpGetCustomer, func(log *zap.SugaredLogger) (Customer, error) {
		stmt := builder.Select(customerColumns...).From("customer").Where(builder.Eq("id", id))

		return collectOne[Customer](ctx, s.db, OpGetCustomer, stmt)
	})
}

// FindCustomers returns every customer with the given name and date of
// birth, ordered by id. It returns an empty slice when nobody matches.
func (s *Service) FindCustomers(ctx context.Context, fname, lname string, dob time.Time) ([]Customer, error) {
	return run(s, OpFindCustomers, func(log *zap.SugaredLogger) ([]Customer, error) {
		stmt := builder.Select(customerColumns...).
			From("customer").
			Where(
				builder.Eq("fname", fname),
				builder.Eq("lname", lname),
				builder.Eq("dob", dateOnly(dob)),
			).
			OrderBy("id", builder.Asc)

		return collect[Customer](ctx, s.db, OpFindCustomers, stmt)
	})
}
