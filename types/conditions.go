package types

import (
	"fmt"
	"strings"
)

// Condition is a filter predicate rendered with "?" placeholders. Field
// references are resolved to qualified column names through the context,
// so an unknown field surfaces as an error before any query is built.
type Condition interface {
	ToSQL(ctx *ConditionContext) (string, []any, error)
}

// ConditionContext provides column resolution for SQL generation
type ConditionContext struct {
	// Resolve maps a field reference ("short_name" or "Asset.short_name")
	// to a quoted, table-qualified column.
	Resolve func(field string) (string, error)
}

func (ctx *ConditionContext) column(field string) (string, error) {
	if ctx == nil || ctx.Resolve == nil {
		return field, nil
	}
	return ctx.Resolve(field)
}

// FieldCondition compares one field against zero or more values
type FieldCondition struct {
	Field    string
	Operator string
	Values   []any
}

func (c *FieldCondition) ToSQL(ctx *ConditionContext) (string, []any, error) {
	col, err := ctx.column(c.Field)
	if err != nil {
		return "", nil, err
	}

	switch c.Operator {
	case "IS NULL", "IS NOT NULL":
		return col + " " + c.Operator, nil, nil
	case "IN", "NOT IN":
		if len(c.Values) == 0 {
			if c.Operator == "IN" {
				return "1 = 0", nil, nil // Always false
			}
			return "1 = 1", nil, nil // Always true
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(c.Values)), ",")
		return fmt.Sprintf("%s %s (%s)", col, c.Operator, placeholders), c.Values, nil
	default:
		return fmt.Sprintf("%s %s ?", col, c.Operator), c.Values, nil
	}
}

// AndCondition represents AND logic
type AndCondition struct {
	Conditions []Condition
}

func (c *AndCondition) ToSQL(ctx *ConditionContext) (string, []any, error) {
	return joinConditions(ctx, c.Conditions, " AND ")
}

// OrCondition represents OR logic
type OrCondition struct {
	Conditions []Condition
}

func (c *OrCondition) ToSQL(ctx *ConditionContext) (string, []any, error) {
	return joinConditions(ctx, c.Conditions, " OR ")
}

func joinConditions(ctx *ConditionContext, conditions []Condition, sep string) (string, []any, error) {
	var parts []string
	var args []any

	for _, condition := range conditions {
		if condition == nil {
			continue
		}
		sql, condArgs, err := condition.ToSQL(ctx)
		if err != nil {
			return "", nil, err
		}
		if sql != "" {
			parts = append(parts, fmt.Sprintf("(%s)", sql))
			args = append(args, condArgs...)
		}
	}

	if len(parts) == 0 {
		return "", nil, nil
	}

	return strings.Join(parts, sep), args, nil
}

// NotCondition represents NOT logic
type NotCondition struct {
	Condition Condition
}

func (c *NotCondition) ToSQL(ctx *ConditionContext) (string, []any, error) {
	sql, args, err := c.Condition.ToSQL(ctx)
	if err != nil || sql == "" {
		return "", nil, err
	}
	return fmt.Sprintf("NOT (%s)", sql), args, nil
}

// RawCondition for raw SQL conditions
type RawCondition struct {
	SQL  string
	Args []any
}

func (c *RawCondition) ToSQL(*ConditionContext) (string, []any, error) {
	return c.SQL, c.Args, nil
}

func Eq(field string, value any) Condition {
	return &FieldCondition{Field: field, Operator: "=", Values: []any{value}}
}

func Neq(field string, value any) Condition {
	return &FieldCondition{Field: field, Operator: "!=", Values: []any{value}}
}

func Gt(field string, value any) Condition {
	return &FieldCondition{Field: field, Operator: ">", Values: []any{value}}
}

func Gte(field string, value any) Condition {
	return &FieldCondition{Field: field, Operator: ">=", Values: []any{value}}
}

func Lt(field string, value any) Condition {
	return &FieldCondition{Field: field, Operator: "<", Values: []any{value}}
}

func Lte(field string, value any) Condition {
	return &FieldCondition{Field: field, Operator: "<=", Values: []any{value}}
}

func In(field string, values ...any) Condition {
	return &FieldCondition{Field: field, Operator: "IN", Values: values}
}

func NotIn(field string, values ...any) Condition {
	return &FieldCondition{Field: field, Operator: "NOT IN", Values: values}
}

func Like(field string, pattern string) Condition {
	return &FieldCondition{Field: field, Operator: "LIKE", Values: []any{pattern}}
}

func IsNull(field string) Condition {
	return &FieldCondition{Field: field, Operator: "IS NULL"}
}

func IsNotNull(field string) Condition {
	return &FieldCondition{Field: field, Operator: "IS NOT NULL"}
}

// Utility functions for building conditions
func And(conditions ...Condition) Condition {
	return &AndCondition{Conditions: conditions}
}

func Or(conditions ...Condition) Condition {
	return &OrCondition{Conditions: conditions}
}

func Not(condition Condition) Condition {
	return &NotCondition{Condition: condition}
}

func Raw(sql string, args ...any) Condition {
	return &RawCondition{SQL: sql, Args: args}
}
