package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ConnString(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{
			name:     "user without password",
			config:   Config{Host: "localhost", Port: 5432, Database: "airline", User: "admin"},
			expected: "postgres://admin@localhost:5432/airline?sslmode=prefer",
		},
		{
			name:     "password is escaped",
			config:   Config{Host: "db", Port: 6543, Database: "airline", User: "admin", Password: "p@ss w/rd", SSLMode: "disable"},
			expected: "postgres://admin:p%40ss%20w%2Frd@db:6543/airline?sslmode=disable",
		},
		{
			name:     "zero port falls back to 5432",
			config:   Config{Host: "db", Database: "x", User: "u"},
			expected: "postgres://u@db:5432/x?sslmode=prefer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.ConnString())
		})
	}
}

func TestDefaultConfig_SingleConnection(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int32(1), cfg.MaxConns)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
}

func TestConnectWithURL_InvalidURL(t *testing.T) {
	_, err := ConnectWithURL(context.Background(), "postgres://user@localhost:notaport/db", nil)
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, connErr.Error(), "failed to parse config")
}

func TestPoolConfig(t *testing.T) {
	cfg := &Config{MaxConns: 6, ConnectTimeout: 3 * time.Second}

	pc, err := poolConfig("postgres://u@db:5432/airline", cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(6), pc.MaxConns)
	assert.Equal(t, int32(0), pc.MinConns)
	assert.Equal(t, 3*time.Second, pc.ConnConfig.ConnectTimeout)

	pc, err = poolConfig("postgres://u@db:5432/airline?pool_max_conns=9", cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(9), pc.MaxConns, "URL setting wins")

	pc, err = poolConfig("postgres://u@db:5432/airline", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, int32(1), pc.MaxConns)
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := &Config{
		Host:           "127.0.0.1",
		Port:           1,
		Database:       "airline",
		User:           "nobody",
		SSLMode:        "disable",
		ConnectTimeout: 2 * time.Second,
	}

	_, err := Connect(context.Background(), cfg)
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "nobody@127.0.0.1:1/airline", connErr.Target)
}

func TestDB_CloseIsIdempotent(t *testing.T) {
	db := NewDB(nil)
	assert.False(t, db.Closed())

	db.Close()
	db.Close()

	assert.True(t, db.Closed())
}

func TestDB_StatementsAfterClose(t *testing.T) {
	db := NewDB(nil)
	db.Close()
	ctx := context.Background()

	_, err := db.Exec(ctx, "AddPilot", "INSERT INTO pilot (fullname) VALUES ($1)", "x")
	var se *StatementError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "AddPilot", se.Op)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = db.Query(ctx, "ListRepairsPerYear", "SELECT 1")
	assert.ErrorIs(t, err, ErrClosed)

	var n int
	err = db.QueryRow(ctx, "GetPlane", "SELECT 1").Scan(&n)
	assert.ErrorIs(t, err, ErrClosed)

	err = db.WithTx(ctx, pgx.TxOptions{}, func(q Querier) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, db.Ping(ctx), ErrClosed)
}

type fakeRow struct {
	err error
}

func (r fakeRow) Scan(dest ...any) error { return r.err }

func TestRow_Scan(t *testing.T) {
	err := Row{row: fakeRow{err: pgx.ErrNoRows}, op: "GetPlane"}.Scan()
	assert.ErrorIs(t, err, ErrNotFound)

	pgErr := &pgconn.PgError{Code: "42P01", Message: "relation \"plane\" does not exist"}
	err = Row{row: fakeRow{err: pgErr}, op: "GetPlane", sql: "SELECT"}.Scan()
	var se *StatementError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "42P01", se.Code)
	assert.True(t, errors.Is(err, pgErr))

	assert.NoError(t, Row{row: fakeRow{}}.Scan())
}

func TestRow_ScanZeroValue(t *testing.T) {
	var n int
	err := Row{op: "GetPlane", sql: "SELECT 1"}.Scan(&n)

	var se *StatementError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "GetPlane", se.Op)
	assert.ErrorIs(t, err, ErrClosed)
}
