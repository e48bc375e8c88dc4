package airline

import (
	"context"

	"go.uber.org/zap"

	"github.com/marshallshelly/airline/pkg/builder"
)

var planeColumns = []string{"id", "make", "model", "age", "seats"}

// AddPlane registers a plane and returns it with its generated id.
func (s *Service) AddPlane(ctx context.Context, in PlaneInput) (Plane, error) {
	return run(s, OpAddPlane, func(log *zap.SugaredLogger) (Plane, error) {
		if err := in.Validate(); err != nil {
			return Plane{}, err
		}

		stmt := builder.InsertInto("plane").
			Set("make", in.Make).
			Set("model", in.Model).
			Set("age", in.Age).
			Set("seats", in.Seats).
			Returning("id")

		plane := Plane{Make: in.Make, Model: in.Model, Age: in.Age, Seats: in.Seats}
		if err := scanOne(ctx, s.db, OpAddPlane, stmt, &plane.ID); err != nil {
			return Plane{}, err
		}

		log.Infow("plane added", "plane_id", plane.ID)
		return plane, nil
	})
}

// GetPlane returns the plane with the given id.
func (s *Service) GetPlane(ctx context.Context, id int) (Plane, error) {
	return run(s, OpGetPlane, func(log *zap.SugaredLogger) (Plane, error) {
		stmt := builder.Select(planeColumns...).From("plane").Where(builder.Eq("id", id))

		var p Plane
		err := scanOne(ctx, s.db, OpGetPlane, stmt, &p.ID, &p.Make, &p.Model, &p.Age, &p.Seats)
		return p, err
	})
}
