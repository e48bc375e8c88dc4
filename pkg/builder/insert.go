package builder

import (
	"fmt"
	"strings"
)

// InsertBuilder builds a single-row INSERT.
type InsertBuilder struct {
	table     string
	columns   []string
	values    []any
	returning []string
}

// InsertInto starts an INSERT into table.
func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Set adds a column and its value. Columns keep call order.
func (q *InsertBuilder) Set(column string, value any) *InsertBuilder {
	q.columns = append(q.columns, column)
	q.values = append(q.values, value)
	return q
}

// Returning asks the database to return columns of the inserted row,
// typically the generated key.
func (q *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	q.returning = columns
	return q
}

// ToSQL renders the statement.
func (q *InsertBuilder) ToSQL() (string, []any, error) {
	if q.table == "" {
		return "", nil, fmt.Errorf("insert: no table")
	}
	if len(q.columns) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no values", q.table)
	}

	p := &params{}
	placeholders := make([]string, len(q.values))
	for i, v := range q.values {
		placeholders[i] = p.bind(v)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		q.table, strings.Join(q.columns, ", "), strings.Join(placeholders, ", "))

	if len(q.returning) > 0 {
		b.WriteString(" RETURNING ")
		b.WriteString(strings.Join(q.returning, ", "))
	}

	return b.String(), p.args, nil
}
