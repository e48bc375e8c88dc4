package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertBuilder_ToSQL(t *testing.T) {
	sql, args, err := InsertInto("plane").
		Set("make", "Boeing").
		Set("model", "737").
		Set("age", 4).
		Set("seats", 180).
		Returning("id").
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO plane (make, model, age, seats) VALUES ($1, $2, $3, $4) RETURNING id", sql)
	assert.Equal(t, []any{"Boeing", "737", 4, 180}, args)
}

func TestInsertBuilder_NoReturning(t *testing.T) {
	sql, args, err := InsertInto("technician").Set("full_name", "Sam").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO technician (full_name) VALUES ($1)", sql)
	assert.Equal(t, []any{"Sam"}, args)
}

func TestInsertBuilder_Errors(t *testing.T) {
	_, _, err := InsertInto("plane").ToSQL()
	assert.ErrorContains(t, err, "no values")

	_, _, err = InsertInto("").Set("a", 1).ToSQL()
	assert.ErrorContains(t, err, "no table")
}

func TestUpdateBuilder_ToSQL(t *testing.T) {
	tests := []struct {
		name         string
		query        *UpdateBuilder
		expectedSQL  string
		expectedArgs []any
	}{
		{
			name:         "expression assignment binds only the condition",
			query:        Update("flight").Set("num_sold", Expr("num_sold + 1")).Where(Eq("fnum", 9)),
			expectedSQL:  "UPDATE flight SET num_sold = num_sold + 1 WHERE fnum = $1",
			expectedArgs: []any{9},
		},
		{
			name: "values numbered before the condition",
			query: Update("customer").
				Set("address", "2 Main St").
				Set("phone", "555-0101").
				Where(Eq("id", 4)).
				Returning("id"),
			expectedSQL:  "UPDATE customer SET address = $1, phone = $2 WHERE id = $3 RETURNING id",
			expectedArgs: []any{"2 Main St", "555-0101", 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.query.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSQL, sql)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestUpdateBuilder_Errors(t *testing.T) {
	_, _, err := Update("flight").Where(Eq("fnum", 1)).ToSQL()
	assert.ErrorContains(t, err, "no columns")

	_, _, err = Update("flight").Set("num_sold", 0).ToSQL()
	assert.ErrorContains(t, err, "without a condition")
}
