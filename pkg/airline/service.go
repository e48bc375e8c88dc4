// Package airline implements the airline operations: registering planes,
// pilots, flights, technicians, customers and repairs, booking seats, and
// the seat and repair reports.
//
// Every operation validates its input before any statement is sent and
// passes user values to the database only as bound parameters.
package airline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/marshallshelly/airline/pkg/builder"
	"github.com/marshallshelly/airline/pkg/runtime"
)

// Operation names carried by errors and log entries.
const (
	OpAddPlane                  = "AddPlane"
	OpAddPilot                  = "AddPilot"
	OpAddFlight                 = "AddFlight"
	OpAddTechnician             = "AddTechnician"
	OpAddCustomer               = "AddCustomer"
	OpAddRepair                 = "AddRepair"
	OpBookFlight                = "BookFlight"
	OpListAvailableSeats        = "ListAvailableSeats"
	OpListRepairsPerPlane       = "ListRepairsPerPlane"
	OpListRepairsPerYear        = "ListRepairsPerYear"
	OpCountPassengersWithStatus = "CountPassengersWithStatus"
	OpGetPlane                  = "GetPlane"
	OpGetFlight                 = "GetFlight"
	OpGetCustomer               = "GetCustomer"
	OpFindCustomers             = "FindCustomers"
)

// Service runs the airline operations against one database session.
type Service struct {
	db     runtime.Executor
	logger *zap.SugaredLogger
	now    func() time.Time
}

// New creates a Service. A nil logger discards log output.
func New(db runtime.Executor, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{db: db, logger: logger, now: time.Now}
}

// run executes fn as operation op, logging its outcome with a correlation id.
func run[T any](s *Service, op string, fn func(log *zap.SugaredLogger) (T, error)) (T, error) {
	log := s.logger.With("op", op, "op_id", uuid.NewString())
	start := time.Now()
	log.Debug("operation started")

	result, err := fn(log)

	elapsed := time.Since(start)
	var ve *runtime.ValidationError
	switch {
	case err == nil:
		log.Infow("operation completed", "duration", elapsed)
	case errors.As(err, &ve):
		log.Debugw("operation rejected", "field", ve.Field, "error", err)
	case errors.Is(err, runtime.ErrNotFound):
		log.Debugw("no matching rows", "duration", elapsed)
	default:
		log.Warnw("operation failed", "duration", elapsed, "error", err)
	}

	return result, err
}

func render(op string, stmt builder.Statement) (string, []any, error) {
	sql, args, err := stmt.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("%s: failed to build statement: %w", op, err)
	}
	return sql, args, nil
}

func execStmt(ctx context.Context, q runtime.Querier, op string, stmt builder.Statement) (int64, error) {
	sql, args, err := render(op, stmt)
	if err != nil {
		return 0, err
	}
	return q.Exec(ctx, op, sql, args...)
}

// scanOne runs stmt and scans its single row into dest. An empty result is
// runtime.ErrNotFound.
func scanOne(ctx context.Context, q runtime.Querier, op string, stmt builder.Statement, dest ...any) error {
	sql, args, err := render(op, stmt)
	if err != nil {
		return err
	}
	return q.QueryRow(ctx, op, sql, args...).Scan(dest...)
}

// collect runs stmt and maps every row onto T by column name.
func collect[T any](ctx context.Context, q runtime.Querier, op string, stmt builder.Statement) ([]T, error) {
	sql, args, err := render(op, stmt)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, op, sql, args...)
	if err != nil {
		return nil, err
	}
	return runtime.CollectRows(op, sql, rows, pgx.RowToStructByName[T])
}

// collectOne runs stmt and maps its single row onto T. An empty result is
// runtime.ErrNotFound.
func collectOne[T any](ctx context.Context, q runtime.Querier, op string, stmt builder.Statement) (T, error) {
	sql, args, err := render(op, stmt)
	if err != nil {
		var zero T
		return zero, err
	}
	rows, err := q.Query(ctx, op, sql, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return runtime.CollectOne(op, sql, rows, pgx.RowToStructByName[T])
}
