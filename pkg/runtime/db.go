package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier runs parameterized statements. Both *DB and the handle passed to a
// WithTx callback implement it, so callers are written once.
type Querier interface {
	Exec(ctx context.Context, op, sql string, args ...any) (int64, error)
	Query(ctx context.Context, op, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, op, sql string, args ...any) Row
}

// Executor is a Querier that can also open transactions.
type Executor interface {
	Querier
	WithTx(ctx context.Context, opts pgx.TxOptions, fn func(q Querier) error) error
}

// DB is the single database session owned by the process.
type DB struct {
	pool      *pgxpool.Pool
	config    *Config
	closeOnce sync.Once
	closed    atomic.Bool
}

// Config represents database configuration.
type Config struct {
	Host           string
	Port           int
	Database       string
	User           string
	Password       string
	SSLMode        string
	MaxConns       int32
	ConnectTimeout time.Duration
}

// DefaultConfig returns a default database configuration: one connection to
// a local server.
func DefaultConfig() *Config {
	return &Config{
		Host:           "localhost",
		Port:           5432,
		Database:       "postgres",
		User:           "postgres",
		SSLMode:        "prefer",
		MaxConns:       1,
		ConnectTimeout: 10 * time.Second,
	}
}

// ConnString builds a postgres:// URL from the configuration. Credentials are
// URL-escaped so any character is allowed in them.
func (c *Config) ConnString() string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}
	return u.String()
}

// Connect opens the session described by config and verifies it with a ping.
func Connect(ctx context.Context, config *Config) (*DB, error) {
	if config == nil {
		config = DefaultConfig()
	}
	target := fmt.Sprintf("%s@%s:%d/%s", config.User, config.Host, config.Port, config.Database)
	return connect(ctx, config.ConnString(), target, config)
}

// ConnectWithURL opens the session described by a connection URL. Pool
// size and connect timeout come from config (DefaultConfig when nil);
// pool_max_conns in the URL takes precedence over config.MaxConns.
func ConnectWithURL(ctx context.Context, connURL string, config *Config) (*DB, error) {
	if config == nil {
		config = DefaultConfig()
	}
	target := connURL
	if u, err := url.Parse(connURL); err == nil {
		target = u.Redacted()
	}
	return connect(ctx, connURL, target, config)
}

// poolConfig parses connString and applies the pool settings of config.
func poolConfig(connString string, config *Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	if config.MaxConns > 0 && !strings.Contains(connString, "pool_max_conns") {
		pc.MaxConns = config.MaxConns
	}
	pc.MinConns = 0
	if config.ConnectTimeout > 0 {
		pc.ConnConfig.ConnectTimeout = config.ConnectTimeout
	}
	return pc, nil
}

func connect(ctx context.Context, connString, target string, config *Config) (*DB, error) {
	pc, err := poolConfig(connString, config)
	if err != nil {
		return nil, &ConnectionError{Target: target, Err: fmt.Errorf("failed to parse config: %w", err)}
	}

	if config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, &ConnectionError{Target: target, Err: fmt.Errorf("failed to create connection: %w", err)}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Target: target, Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	return &DB{pool: pool, config: config}, nil
}

// NewDB wraps an existing pool. Close closes the pool.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool, config: &Config{}}
}

// Close releases the session. It is safe to call more than once and from
// every exit path.
func (db *DB) Close() {
	db.closeOnce.Do(func() {
		db.closed.Store(true)
		if db.pool != nil {
			db.pool.Close()
		}
	})
}

// Closed reports whether Close has been called.
func (db *DB) Closed() bool {
	return db.closed.Load()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.Closed() {
		return ErrClosed
	}
	return db.pool.Ping(ctx)
}

// Exec executes a statement without returning any rows.
func (db *DB) Exec(ctx context.Context, op, sql string, args ...any) (int64, error) {
	if db.Closed() {
		return 0, newStatementError(op, sql, ErrClosed)
	}
	tag, err := db.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, newStatementError(op, sql, err)
	}
	return tag.RowsAffected(), nil
}

// Query executes a statement that returns rows.
func (db *DB) Query(ctx context.Context, op, sql string, args ...any) (pgx.Rows, error) {
	if db.Closed() {
		return nil, newStatementError(op, sql, ErrClosed)
	}
	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, newStatementError(op, sql, err)
	}
	return rows, nil
}

// QueryRow executes a statement that returns at most one row.
func (db *DB) QueryRow(ctx context.Context, op, sql string, args ...any) Row {
	if db.Closed() {
		return Row{op: op, sql: sql, err: ErrClosed}
	}
	return Row{row: db.pool.QueryRow(ctx, sql, args...), op: op, sql: sql}
}

// WithTx runs fn inside one transaction: commit when fn returns nil, roll
// back on error or panic.
func (db *DB) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(q Querier) error) error {
	if db.Closed() {
		return newStatementError("begin", "BEGIN", ErrClosed)
	}

	pgxTx, err := db.pool.BeginTx(ctx, opts)
	if err != nil {
		return newStatementError("begin", "BEGIN", err)
	}
	tx := &Tx{tx: pgxTx}

	// Rollback must still reach the server after ctx is cancelled.
	rbCtx := context.WithoutCancel(ctx)

	defer func() {
		if p := recover(); p != nil {
			_ = pgxTx.Rollback(rbCtx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		rbErr := pgxTx.Rollback(rbCtx)
		var ce *ConsistencyError
		if errors.As(err, &ce) {
			ce.RolledBack = rbErr == nil
		}
		return err
	}

	if err := pgxTx.Commit(ctx); err != nil {
		return newStatementError("commit", "COMMIT", err)
	}
	return nil
}

// Tx is the Querier handed to WithTx callbacks.
type Tx struct {
	tx pgx.Tx
}

// Exec executes a statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, op, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, newStatementError(op, sql, err)
	}
	return tag.RowsAffected(), nil
}

// Query executes a row-returning statement inside the transaction.
func (t *Tx) Query(ctx context.Context, op, sql string, args ...any) (pgx.Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, newStatementError(op, sql, err)
	}
	return rows, nil
}

// QueryRow executes a single-row statement inside the transaction.
func (t *Tx) QueryRow(ctx context.Context, op, sql string, args ...any) Row {
	return Row{row: t.tx.QueryRow(ctx, sql, args...), op: op, sql: sql}
}

// Row is a pgx.Row whose Scan reports ErrNotFound for an empty result and a
// *StatementError for anything else.
type Row struct {
	row pgx.Row
	op  string
	sql string
	err error
}

// Scan copies the row's columns into dest.
func (r Row) Scan(dest ...any) error {
	if r.err != nil {
		return newStatementError(r.op, r.sql, r.err)
	}
	if r.row == nil {
		return newStatementError(r.op, r.sql, ErrClosed)
	}
	if err := r.row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return newStatementError(r.op, r.sql, err)
	}
	return nil
}

// CollectRows maps every row with fn and closes rows.
func CollectRows[T any](op, sql string, rows pgx.Rows, fn pgx.RowToFunc[T]) ([]T, error) {
	items, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, newStatementError(op, sql, err)
	}
	return items, nil
}

// CollectOne maps the single row of rows with fn. An empty result yields
// ErrNotFound.
func CollectOne[T any](op, sql string, rows pgx.Rows, fn pgx.RowToFunc[T]) (T, error) {
	item, err := pgx.CollectExactlyOneRow(rows, fn)
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, newStatementError(op, sql, err)
	}
	return item, nil
}
