package airline

import (
	"context"

	"go.uber.org/zap"

	"github.com/marshallshelly/airline/pkg/builder"
)

// AddPilot registers a pilot.
func (s *Service) AddPilot(ctx context.Context, in PilotInput) (Pilot, error) {
	return run(s, OpAddPilot, func(log *zap.SugaredLogger) (Pilot, error) {
		if err := in.Validate(); err != nil {
			return Pilot{}, err
		}

		stmt := builder.InsertInto("pilot").
			Set("fullname", in.FullName).
			Set("nationality", in.Nationality).
			Returning("id")

		pilot := Pilot{FullName: in.FullName, Nationality: in.Nationality}
		if err := scanOne(ctx, s.db, OpAddPilot, stmt, &pilot.ID); err != nil {
			return Pilot{}, err
		}

		log.Infow("pilot added", "pilot_id", pilot.ID)
		return pilot, nil
	})
}

// AddTechnician registers a technician.
func (s *Service) AddTechnician(ctx context.Context, in TechnicianInput) (Technician, error) {
	return run(s, OpAddTechnician, func(log *zap.SugaredLogger) (Technician, error) {
		if err := in.Validate(); err != nil {
			return Technician{}, err
		}

		stmt := builder.InsertInto("technician").
			Set("full_name", in.FullName).
			Returning("id")

		tech := Technician{FullName: in.FullName}
		if err := scanOne(ctx, s.db, OpAddTechnician, stmt, &tech.ID); err != nil {
			return Technician{}, err
		}

		log.Infow("technician added", "technician_id", tech.ID)
		return tech, nil
	})
}

// AddRepair records a repair of a plane.
func (s *Service) AddRepair(ctx context.Context, in RepairInput) (Repair, error) {
	return run(s, OpAddRepair, func(log *zap.SugaredLogger) (Repair, error) {
		if err := in.Validate(); err != nil {
			return Repair{}, err
		}

		date := dateOnly(in.Date)
		stmt := builder.InsertInto("repairs").
			Set("repair_date", date).
			Set("repair_code", in.Code).
			Set("pilot_id", in.PilotID).
			Set("plane_id", in.PlaneID).
			Set("technician_id", in.TechnicianID).
			Returning("rid")

		repair := Repair{
			Date:         date,
			Code:         in.Code,
			PilotID:      in.PilotID,
			PlaneID:      in.PlaneID,
			TechnicianID: in.TechnicianID,
		}
		if err := scanOne(ctx, s.db, OpAddRepair, stmt, &repair.ID); err != nil {
			return Repair{}, err
		}

		log.Infow("repair added", "repair_id", repair.ID, "plane_id", repair.PlaneID)
		return repair, nil
	})
}
