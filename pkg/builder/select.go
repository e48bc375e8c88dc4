package builder

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectBuilder builds a SELECT statement.
type SelectBuilder struct {
	columns   []string
	from      string
	joins     []join
	where     []Condition
	groupBy   []string
	having    []Condition
	orderBy   []orderTerm
	limit     int
	forUpdate bool
	lockOf    []string
}

// Select starts a SELECT of the given column expressions.
func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

// From sets the source table, optionally with an alias ("flight f").
func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.from = table
	return s
}

// Join adds a JOIN of the given kind.
func (s *SelectBuilder) Join(kind JoinType, table, on string) *SelectBuilder {
	s.joins = append(s.joins, join{kind: kind, table: table, on: on})
	return s
}

// InnerJoin adds an INNER JOIN.
func (s *SelectBuilder) InnerJoin(table, on string) *SelectBuilder {
	return s.Join(InnerJoin, table, on)
}

// Where appends conditions; consecutive calls are ANDed.
func (s *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	s.where = append(s.where, conds...)
	return s
}

// GroupBy adds GROUP BY expressions.
func (s *SelectBuilder) GroupBy(exprs ...string) *SelectBuilder {
	s.groupBy = append(s.groupBy, exprs...)
	return s
}

// Having appends HAVING conditions.
func (s *SelectBuilder) Having(conds ...Condition) *SelectBuilder {
	s.having = append(s.having, conds...)
	return s
}

// OrderBy adds an ORDER BY term. Terms are applied in call order.
func (s *SelectBuilder) OrderBy(expr string, dir OrderDirection) *SelectBuilder {
	s.orderBy = append(s.orderBy, orderTerm{expr: expr, dir: dir})
	return s
}

// Limit caps the number of rows. Zero means no limit.
func (s *SelectBuilder) Limit(n int) *SelectBuilder {
	s.limit = n
	return s
}

// ForUpdate locks the selected rows. With tables given, only rows of those
// tables (or aliases) are locked.
func (s *SelectBuilder) ForUpdate(of ...string) *SelectBuilder {
	s.forUpdate = true
	s.lockOf = of
	return s
}

// ToSQL renders the statement.
func (s *SelectBuilder) ToSQL() (string, []any, error) {
	if s.from == "" {
		return "", nil, fmt.Errorf("select: no table")
	}

	p := &params{}
	var b strings.Builder

	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(s.columns, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(s.from)

	for _, j := range s.joins {
		fmt.Fprintf(&b, " %s %s ON %s", j.kind, j.table, j.on)
	}

	if len(s.where) > 0 {
		clause, err := renderConditions(s.where, p)
		if err != nil {
			return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(clause)
	}

	if len(s.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(s.groupBy, ", "))
	}

	if len(s.having) > 0 {
		clause, err := renderConditions(s.having, p)
		if err != nil {
			return "", nil, fmt.Errorf("failed to build HAVING clause: %w", err)
		}
		b.WriteString(" HAVING ")
		b.WriteString(clause)
	}

	if len(s.orderBy) > 0 {
		terms := make([]string, len(s.orderBy))
		for i, o := range s.orderBy {
			dir := o.dir
			if dir == "" {
				dir = Asc
			}
			terms[i] = o.expr + " " + string(dir)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	if s.limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(s.limit))
	}

	if s.forUpdate {
		b.WriteString(" FOR UPDATE")
		if len(s.lockOf) > 0 {
			b.WriteString(" OF ")
			b.WriteString(strings.Join(s.lockOf, ", "))
		}
	}

	return b.String(), p.args, nil
}
