// Package builder renders parameterized PostgreSQL statements.
//
// Values handed to a builder are always returned as bound arguments and
// referenced from the SQL text through $n placeholders. Identifiers (tables,
// columns, expressions) are written by the caller and are never user input.
package builder

// Statement is anything that renders to SQL text plus its bound arguments.
type Statement interface {
	ToSQL() (sql string, args []any, err error)
}

// Condition is one WHERE or HAVING predicate, or a parenthesised group of them.
type Condition struct {
	Column   string
	Operator Operator
	Value    any
	Logic    LogicOperator
	Not      bool
	Group    []Condition
}

// Operator is a comparison operator.
type Operator string

const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "<>"
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpIn                 Operator = "IN"
	OpIsNull             Operator = "IS NULL"
	OpIsNotNull          Operator = "IS NOT NULL"
	OpBetween            Operator = "BETWEEN"
)

// LogicOperator joins a condition to the one before it.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// JoinType is the kind of JOIN.
type JoinType string

const (
	InnerJoin JoinType = "INNER JOIN"
	LeftJoin  JoinType = "LEFT JOIN"
)

// OrderDirection is the sort direction of an ORDER BY term.
type OrderDirection string

const (
	Asc  OrderDirection = "ASC"
	Desc OrderDirection = "DESC"
)

type join struct {
	kind  JoinType
	table string
	on    string
}

type orderTerm struct {
	expr string
	dir  OrderDirection
}

// Expr is raw SQL used as an assignment value, e.g. "num_sold + 1".
// It is written into the statement verbatim and takes no arguments.
type Expr string
