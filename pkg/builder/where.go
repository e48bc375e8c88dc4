package builder

import (
	"fmt"
	"strconv"
	"strings"
)

// params hands out placeholder numbers across every clause of one statement.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

// renderConditions writes conds joined by their logic operators.
func renderConditions(conds []Condition, p *params) (string, error) {
	var b strings.Builder

	for i, cond := range conds {
		if i > 0 {
			logic := cond.Logic
			if logic == "" {
				logic = LogicAnd
			}
			b.WriteString(" ")
			b.WriteString(string(logic))
			b.WriteString(" ")
		}

		var part string
		if len(cond.Group) > 0 {
			inner, err := renderConditions(cond.Group, p)
			if err != nil {
				return "", err
			}
			part = "(" + inner + ")"
		} else {
			var err error
			part, err = renderCondition(cond, p)
			if err != nil {
				return "", err
			}
		}

		if cond.Not {
			part = "NOT (" + part + ")"
		}
		b.WriteString(part)
	}

	return b.String(), nil
}

func renderCondition(cond Condition, p *params) (string, error) {
	if cond.Column == "" {
		return "", fmt.Errorf("condition has no column")
	}

	switch cond.Operator {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return fmt.Sprintf("%s %s %s", cond.Column, cond.Operator, p.bind(cond.Value)), nil

	case OpIn:
		values, ok := cond.Value.([]any)
		if !ok || len(values) == 0 {
			return "", fmt.Errorf("IN on %s requires at least one value", cond.Column)
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = p.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", cond.Column, strings.Join(placeholders, ", ")), nil

	case OpIsNull, OpIsNotNull:
		return fmt.Sprintf("%s %s", cond.Column, cond.Operator), nil

	case OpBetween:
		bounds, ok := cond.Value.([2]any)
		if !ok {
			return "", fmt.Errorf("BETWEEN on %s requires two bounds", cond.Column)
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", cond.Column, p.bind(bounds[0]), p.bind(bounds[1])), nil

	default:
		return "", fmt.Errorf("unknown operator %q", cond.Operator)
	}
}

// Eq matches column = value.
func Eq(column string, value any) Condition {
	return Condition{Column: column, Operator: OpEqual, Value: value}
}

// NotEq matches column <> value.
func NotEq(column string, value any) Condition {
	return Condition{Column: column, Operator: OpNotEqual, Value: value}
}

// Gt matches column > value.
func Gt(column string, value any) Condition {
	return Condition{Column: column, Operator: OpGreaterThan, Value: value}
}

// Gte matches column >= value.
func Gte(column string, value any) Condition {
	return Condition{Column: column, Operator: OpGreaterThanOrEqual, Value: value}
}

// Lt matches column < value.
func Lt(column string, value any) Condition {
	return Condition{Column: column, Operator: OpLessThan, Value: value}
}

// Lte matches column <= value.
func Lte(column string, value any) Condition {
	return Condition{Column: column, Operator: OpLessThanOrEqual, Value: value}
}

// In matches column against a list of values.
func In(column string, values ...any) Condition {
	return Condition{Column: column, Operator: OpIn, Value: values}
}

// Between matches lo <= column <= hi.
func Between(column string, lo, hi any) Condition {
	return Condition{Column: column, Operator: OpBetween, Value: [2]any{lo, hi}}
}

// IsNull matches column IS NULL.
func IsNull(column string) Condition {
	return Condition{Column: column, Operator: OpIsNull}
}

// IsNotNull matches column IS NOT NULL.
func IsNotNull(column string) Condition {
	return Condition{Column: column, Operator: OpIsNotNull}
}

// Or joins cond to the previous condition with OR instead of AND.
func Or(cond Condition) Condition {
	cond.Logic = LogicOr
	return cond
}

// Not negates cond.
func Not(cond Condition) Condition {
	cond.Not = true
	return cond
}

// Group parenthesises conds.
func Group(conds ...Condition) Condition {
	return Condition{Group: conds}
}
