package types

import "gorm.io/gorm/clause"

// FiltersAnd combines filters into one AND expression usable in Where.
type FiltersAnd []*CommonFilter

func (w FiltersAnd) Build(builder clause.Builder) {
	if len(w) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w))
	for _, f := range w {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// Where returns a clause usable directly in db.Where.
func (w FiltersAnd) Where() clause.Where {
	return clause.Where{Exprs: []clause.Expression{w}}
}

// Eq is a shorthand for an equality filter.
func Eq(field string, value any) *CommonFilter {
	return &CommonFilter{Field: field, Operator: CommonFilterOperatorEq, Values: []any{value}}
}
