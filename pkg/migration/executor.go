package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/marshallshelly/airline/pkg/runtime"
)

const migrationLockID int64 = 1234567890

var (
	// ErrAlreadyApplied is returned by Apply when the version is recorded as applied.
	ErrAlreadyApplied = errors.New("migration already applied")

	// ErrNotApplied is returned by Rollback when the version is not applied.
	ErrNotApplied = errors.New("migration not applied")
)

// Executor applies migrations and records them in schema_migrations.
// Every apply or rollback runs in one transaction that first takes a
// transaction-scoped advisory lock, so concurrent runs serialise.
type Executor struct {
	db     runtime.Executor
	logger *zap.SugaredLogger
}

// NewExecutor creates a new migration executor.
func NewExecutor(db runtime.Executor, logger *zap.SugaredLogger) *Executor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Executor{db: db, logger: logger}
}

// Initialize creates the schema_migrations table if it doesn't exist.
func (e *Executor) Initialize(ctx context.Context) error {
	_, err := e.db.Exec(ctx, "migrate init", `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(14) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			applied_at TIMESTAMPTZ,
			error TEXT
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// Records returns every row of the tracking table ordered by version.
func (e *Executor) Records(ctx context.Context) ([]MigrationRecord, error) {
	const query = `SELECT version, name, status, applied_at, error FROM schema_migrations ORDER BY version ASC`

	rows, err := e.db.Query(ctx, "migrate status", query)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	return runtime.CollectRows("migrate status", query, rows, pgx.RowToStructByPos[MigrationRecord])
}

// Status merges the tracking table with the known migrations. Versions
// never attempted are reported as pending.
func (e *Executor) Status(ctx context.Context, migrations []Migration) ([]MigrationRecord, error) {
	recorded, err := e.Records(ctx)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string]MigrationRecord, len(recorded))
	for _, r := range recorded {
		byVersion[r.Version] = r
	}

	records := make([]MigrationRecord, 0, len(migrations))
	for _, m := range migrations {
		if r, ok := byVersion[m.Version]; ok {
			records = append(records, r)
			continue
		}
		records = append(records, MigrationRecord{Version: m.Version, Name: m.Name, Status: StatusPending})
	}
	return records, nil
}

// Apply runs m's up SQL and records it as applied. When a statement fails
// the transaction is rolled back and the failure is recorded separately.
func (e *Executor) Apply(ctx context.Context, m Migration) error {
	err := e.db.WithTx(ctx, pgx.TxOptions{}, func(q runtime.Querier) error {
		if err := e.lock(ctx, q); err != nil {
			return err
		}

		applied, err := isApplied(ctx, q, m.Version)
		if err != nil {
			return err
		}
		if applied {
			return ErrAlreadyApplied
		}

		if err := execStatements(ctx, q, "migrate up", m.UpSQL); err != nil {
			return err
		}

		_, err = q.Exec(ctx, "migrate up", `
			INSERT INTO schema_migrations (version, name, status, applied_at, error)
			VALUES ($1, $2, 'applied', NOW(), NULL)
			ON CONFLICT (version) DO UPDATE SET status = 'applied', applied_at = NOW(), error = NULL`,
			m.Version, m.Name,
		)
		return err
	})

	switch {
	case err == nil:
		e.logger.Infow("migration applied", "version", m.Version, "name", m.Name)
		return nil
	case errors.Is(err, ErrAlreadyApplied):
		return err
	}

	if recErr := e.recordFailure(ctx, m, err); recErr != nil {
		e.logger.Warnw("failed to record migration failure", "version", m.Version, "error", recErr)
	}
	return fmt.Errorf("migration %s failed: %w", m.Version, err)
}

// ApplyAll applies every migration not yet applied, in order, and returns
// the ones it applied.
func (e *Executor) ApplyAll(ctx context.Context, migrations []Migration) ([]Migration, error) {
	var applied []Migration
	for _, m := range migrations {
		err := e.Apply(ctx, m)
		if errors.Is(err, ErrAlreadyApplied) {
			continue
		}
		if err != nil {
			return applied, err
		}
		applied = append(applied, m)
	}
	return applied, nil
}

// Rollback runs m's down SQL and removes its tracking row.
func (e *Executor) Rollback(ctx context.Context, m Migration) error {
	if strings.TrimSpace(m.DownSQL) == "" {
		return fmt.Errorf("migration %s has no down SQL", m.Version)
	}

	err := e.db.WithTx(ctx, pgx.TxOptions{}, func(q runtime.Querier) error {
		if err := e.lock(ctx, q); err != nil {
			return err
		}

		applied, err := isApplied(ctx, q, m.Version)
		if err != nil {
			return err
		}
		if !applied {
			return ErrNotApplied
		}

		if err := execStatements(ctx, q, "migrate down", m.DownSQL); err != nil {
			return err
		}

		_, err = q.Exec(ctx, "migrate down", "DELETE FROM schema_migrations WHERE version = $1", m.Version)
		return err
	})
	if err != nil {
		return fmt.Errorf("rollback of %s failed: %w", m.Version, err)
	}

	e.logger.Infow("migration rolled back", "version", m.Version, "name", m.Name)
	return nil
}

// RollbackLast rolls back the highest applied version. It returns nil and
// no error when nothing is applied.
func (e *Executor) RollbackLast(ctx context.Context, migrations []Migration) (*Migration, error) {
	records, err := e.Records(ctx)
	if err != nil {
		return nil, err
	}

	var last *MigrationRecord
	for i := range records {
		if records[i].Status == StatusApplied {
			last = &records[i]
		}
	}
	if last == nil {
		return nil, nil
	}

	for _, m := range migrations {
		if m.Version == last.Version {
			if err := e.Rollback(ctx, m); err != nil {
				return nil, err
			}
			return &m, nil
		}
	}
	return nil, fmt.Errorf("migration file not found for version %s", last.Version)
}

func (e *Executor) lock(ctx context.Context, q runtime.Querier) error {
	if _, err := q.Exec(ctx, "migrate lock", "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	return nil
}

func (e *Executor) recordFailure(ctx context.Context, m Migration, cause error) error {
	_, err := e.db.Exec(ctx, "migrate up", `
		INSERT INTO schema_migrations (version, name, status, error)
		VALUES ($1, $2, 'failed', $3)
		ON CONFLICT (version) DO UPDATE SET status = 'failed', error = EXCLUDED.error`,
		m.Version, m.Name, cause.Error(),
	)
	return err
}

func isApplied(ctx context.Context, q runtime.Querier, version string) (bool, error) {
	var applied bool
	err := q.QueryRow(ctx, "migrate check",
		"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1 AND status = 'applied')",
		version,
	).Scan(&applied)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return applied, nil
}

func execStatements(ctx context.Context, q runtime.Querier, op, sql string) error {
	for i, stmt := range splitStatements(sql) {
		if _, err := q.Exec(ctx, op, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// splitStatements splits a script on semicolons that are outside string
// literals, dollar-quoted bodies and line comments.
func splitStatements(sql string) []string {
	var (
		stmts     []string
		cur       strings.Builder
		dollarTag string
		inQuote   bool
	)

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(sql); i++ {
		c := sql[i]

		switch {
		case dollarTag != "":
			if strings.HasPrefix(sql[i:], dollarTag) {
				cur.WriteString(dollarTag)
				i += len(dollarTag) - 1
				dollarTag = ""
				continue
			}
		case inQuote:
			if c == '\'' {
				inQuote = false
			}
		case c == '\'':
			inQuote = true
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
			continue
		case c == '$':
			if tag, ok := dollarQuoteTag(sql[i:]); ok {
				dollarTag = tag
				cur.WriteString(tag)
				i += len(tag) - 1
				continue
			}
		case c == ';':
			flush()
			continue
		}

		cur.WriteByte(c)
	}
	flush()

	return stmts
}

// dollarQuoteTag returns the opening tag ("$$" or "$body$") at the start of s.
func dollarQuoteTag(s string) (string, bool) {
	end := strings.IndexByte(s[1:], '$')
	if end < 0 {
		return "", false
	}
	tag := s[1 : end+1]
	for i, r := range tag {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if !letter && !(digit && i > 0) {
			return "", false
		}
	}
	return s[:end+2], true
}
