package types

import (
	"gorm.io/gorm/clause"

	"github.com/inkwell/blog/pkg/errs"
)

type CommonFilterOperator string

const (
	CommonFilterOperatorEq        CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq     CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt        CommonFilterOperator = "lt"
	CommonFilterOperatorLte       CommonFilterOperator = "lte"
	CommonFilterOperatorGt        CommonFilterOperator = "gt"
	CommonFilterOperatorGte       CommonFilterOperator = "gte"
	CommonFilterOperatorDateRange CommonFilterOperator = "date_range"
	CommonFilterOperatorRange     CommonFilterOperator = "range"
	CommonFilterOperatorIn        CommonFilterOperator = "in"
)

// arity is the number of values each operator reads; -1 means one or more.
var arity = map[CommonFilterOperator]int{
	CommonFilterOperatorEq:        1,
	CommonFilterOperatorNotEq:     1,
	CommonFilterOperatorLt:        1,
	CommonFilterOperatorLte:       1,
	CommonFilterOperatorGt:        1,
	CommonFilterOperatorGte:       1,
	CommonFilterOperatorDateRange: 2,
	CommonFilterOperatorRange:     2,
	CommonFilterOperatorIn:        -1,
}

// CommonFilter is one column condition posted by admin list endpoints.
// Field must be checked against a whitelist by the caller.
type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

// Validate rejects unknown operators and a wrong number of values.
func (f *CommonFilter) Validate() error {
	n, ok := arity[f.Operator]
	switch {
	case !ok:
		return errs.Invalid("unsupported operator %q on %s", f.Operator, f.Field)
	case n == -1 && len(f.Values) == 0:
		return errs.Invalid("%s %s needs at least one value", f.Field, f.Operator)
	case n > 0 && len(f.Values) != n:
		return errs.Invalid("%s %s needs %d value(s)", f.Field, f.Operator, n)
	}
	return nil
}

// Build writes the condition. An invalid filter writes nothing, so callers
// validate first.
func (f *CommonFilter) Build(builder clause.Builder) {
	if f.Validate() != nil {
		return
	}
	col := clause.Column{Name: f.Field}
	v := f.Values[0]

	var expr clause.Expression
	switch f.Operator {
	case CommonFilterOperatorEq:
		expr = clause.Eq{Column: col, Value: v}
	case CommonFilterOperatorNotEq:
		expr = clause.Neq{Column: col, Value: v}
	case CommonFilterOperatorLt:
		expr = clause.Lt{Column: col, Value: v}
	case CommonFilterOperatorLte:
		expr = clause.Lte{Column: col, Value: v}
	case CommonFilterOperatorGt:
		expr = clause.Gt{Column: col, Value: v}
	case CommonFilterOperatorGte:
		expr = clause.Gte{Column: col, Value: v}
	case CommonFilterOperatorRange:
		expr = clause.And(clause.Gte{Column: col, Value: v}, clause.Lte{Column: col, Value: f.Values[1]})
	case CommonFilterOperatorDateRange:
		// half-open so consecutive days never overlap
		expr = clause.And(clause.Gte{Column: col, Value: v}, clause.Lt{Column: col, Value: f.Values[1]})
	case CommonFilterOperatorIn:
		expr = clause.IN{Column: col, Values: f.Values}
	}
	expr.Build(builder)
}
