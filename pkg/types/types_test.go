package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/inkwell/blog/pkg/errs"
)

func TestPageRequest_Normalize(t *testing.T) {
	p := PageRequest{}.Normalize(5, 100)
	require.Equal(t, PageRequest{Page: 1, PageSize: 5}, p)
	require.Equal(t, 0, p.Offset())

	p = PageRequest{Page: 3, PageSize: 500}.Normalize(5, 100)
	require.Equal(t, 100, p.PageSize)
	require.Equal(t, 200, p.Offset())
}

func TestParsePage_IgnoresGarbage(t *testing.T) {
	require.Equal(t, PageRequest{Page: 2}, ParsePage("2", "abc"))
}

func TestSlicePage(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7}
	p := SlicePage(PageRequest{Page: 2, PageSize: 5}, all)
	require.Equal(t, int64(7), p.Count)
	require.Equal(t, []int{6, 7}, p.Results)

	p = SlicePage(PageRequest{Page: 9, PageSize: 5}, all)
	require.Empty(t, p.Results)
	require.NotNil(t, p.Results)
}

func TestCommonFilter_Validate(t *testing.T) {
	require.NoError(t, Eq("status", "paid").Validate())
	require.NoError(t, (&CommonFilter{Field: "id", Operator: CommonFilterOperatorIn, Values: []any{"a", "b", "c"}}).Validate())

	for _, f := range []*CommonFilter{
		{Field: "status", Operator: "like", Values: []any{"x"}},
		{Field: "status", Operator: CommonFilterOperatorEq},
		{Field: "price", Operator: CommonFilterOperatorRange, Values: []any{1}},
		{Field: "id", Operator: CommonFilterOperatorIn},
	} {
		assert.ErrorIs(t, f.Validate(), errs.ErrInvalid, "%+v", f)
	}
}

func TestFiltersAnd_SQL(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)

	where := FiltersAnd{
		Eq("post.category_id", "c1"),
		{Field: "price", Operator: CommonFilterOperatorRange, Values: []any{1, 9}},
		{Field: "created_at", Operator: CommonFilterOperatorDateRange, Values: []any{"2024-01-01", "2024-01-02"}},
	}.Where()
	stmt := db.Table("post").Where(where).Find(&[]map[string]any{}).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "`post`.`category_id` = ?")
	assert.Contains(t, sql, "`price` >= ? AND `price` <= ?")
	assert.Contains(t, sql, "`created_at` >= ? AND `created_at` < ?")
	assert.Len(t, stmt.Vars, 5)

	stmt = db.Table("post").Where(FiltersAnd{}.Where()).Find(&[]map[string]any{}).Statement
	assert.Contains(t, stmt.SQL.String(), "1=1")
}
