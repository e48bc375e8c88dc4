package airline

import (
	"context"

	"go.uber.org/zap"

	"github.com/marshallshelly/airline/pkg/builder"
)

// ListRepairsPerPlane counts repairs per plane, most repaired first. Planes
// with equal counts are ordered by id.
func (s *Service) ListRepairsPerPlane(ctx context.Context) ([]PlaneRepairCount, error) {
	return run(s, OpListRepairsPerPlane, func(log *zap.SugaredLogger) ([]PlaneRepairCount, error) {
		stmt := builder.Select("plane_id", "COUNT(*) AS repair_count").
			From("repairs").
			GroupBy("plane_id").
			OrderBy("repair_count", builder.Desc).
			OrderBy("plane_id", builder.Asc)

		return collect[PlaneRepairCount](ctx, s.db, OpListRepairsPerPlane, stmt)
	})
}

// ListRepairsPerYear counts repairs per calendar year, oldest year first.
func (s *Service) ListRepairsPerYear(ctx context.Context) ([]YearRepairCount, error) {
	return run(s, OpListRepairsPerYear, func(log *zap.SugaredLogger) ([]YearRepairCount, error) {
		stmt := builder.Select("EXTRACT(YEAR FROM repair_date)::int AS year", "COUNT(*) AS repair_count").
			From("repairs").
			GroupBy("year").
			OrderBy("year", builder.Asc)

		return collect[YearRepairCount](ctx, s.db, OpListRepairsPerYear, stmt)
	})
}
