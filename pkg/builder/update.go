package builder

import (
	"fmt"
	"strings"
)

type assignment struct {
	column string
	value  any
}

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	table     string
	sets      []assignment
	where     []Condition
	returning []string
}

// Update starts an UPDATE of table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set assigns value to column. An Expr value is written verbatim.
func (q *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	q.sets = append(q.sets, assignment{column: column, value: value})
	return q
}

// Where appends conditions.
func (q *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	q.where = append(q.where, conds...)
	return q
}

// Returning asks for columns of the updated rows.
func (q *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	q.returning = columns
	return q
}

// ToSQL renders the statement. An UPDATE without conditions is rejected.
func (q *UpdateBuilder) ToSQL() (string, []any, error) {
	if len(q.sets) == 0 {
		return "", nil, fmt.Errorf("update %s: no columns to update", q.table)
	}
	if len(q.where) == 0 {
		return "", nil, fmt.Errorf("update %s: refusing to update without a condition", q.table)
	}

	p := &params{}
	sets := make([]string, len(q.sets))
	for i, a := range q.sets {
		if expr, ok := a.value.(Expr); ok {
			sets[i] = a.column + " = " + string(expr)
			continue
		}
		sets[i] = a.column + " = " + p.bind(a.value)
	}

	clause, err := renderConditions(q.where, p)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s WHERE %s", q.table, strings.Join(sets, ", "), clause)

	if len(q.returning) > 0 {
		b.WriteString(" RETURNING ")
		b.WriteString(strings.Join(q.returning, ", "))
	}

	return b.String(), p.args, nil
}
