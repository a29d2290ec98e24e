package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/testutil"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

var staff = &account.Principal{UserID: "staff", IsStaff: true}

func TestGet(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db, zap.NewNop().Sugar())
	author := testutil.CreateUser(t, db, "author", true, false)
	cat := testutil.CreateCategory(t, db, "Go")
	other := testutil.CreateCategory(t, db, "Rust")
	testutil.CreatePost(t, db, author, cat, "a", time.Now())
	testutil.CreatePost(t, db, author, cat, "b", time.Now())
	testutil.CreatePost(t, db, author, other, "c", time.Now())

	for _, o := range []struct {
		status models.OrderStatus
		total  string
	}{{models.OrderStatusPaid, "10.50"}, {models.OrderStatusDelivered, "4.50"}, {models.OrderStatusPending, "99"}} {
		require.NoError(t, db.Create(&models.Order{
			ID: tool.GenerateUUIDV7(), CustomerID: author.ID, Status: o.status, TotalAmount: decimal.RequireFromString(o.total),
		}).Error)
	}

	res, err := s.Get(context.Background(), staff, &Request{
		Filters: []*types.CommonFilter{types.Eq("category_id", cat.ID)},
		DataItems: []*DataItem{
			{ID: StatisticTypeDailyPostCount},
			{ID: StatisticTypeDailyNewUserCount},
			{ID: StatisticTypeDailyOrderCount},
			{ID: StatisticTypeTotalGmv},
			{ID: StatisticTypeActivePremiumCount},
		},
	})
	require.NoError(t, err)

	posts := res.DataItems[StatisticTypeDailyPostCount]
	require.Len(t, posts, 1)
	assert.Equal(t, 2.0, posts[0].Value, "category filter applies to posts")
	assert.Equal(t, time.Now().UTC().Format(time.DateOnly), posts[0].Date)

	orders := res.DataItems[StatisticTypeDailyOrderCount]
	require.Len(t, orders, 1)
	assert.Equal(t, 3.0, orders[0].Value, "category filter ignored for orders")

	gmv := res.DataItems[StatisticTypeTotalGmv]
	require.Len(t, gmv, 1)
	assert.InDelta(t, 15.0, gmv[0].Value, 1e-9)

	assert.Equal(t, 0.0, res.DataItems[StatisticTypeActivePremiumCount][0].Value)
}

func TestGetValidates(t *testing.T) {
	s := New(testutil.NewDB(t), zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := s.Get(ctx, &account.Principal{UserID: "u"}, &Request{DataItems: []*DataItem{{ID: StatisticTypeTotalGmv}}})
	assert.True(t, errors.Is(err, errs.ErrForbidden))
	_, err = s.Get(ctx, staff, &Request{})
	assert.True(t, errors.Is(err, errs.ErrInvalid))
	_, err = s.Get(ctx, staff, &Request{DataItems: []*DataItem{{ID: "nope"}}})
	assert.True(t, errors.Is(err, errs.ErrInvalid))
	_, err = s.Get(ctx, staff, &Request{
		Filters:   []*types.CommonFilter{types.Eq("password_hash", "x")},
		DataItems: []*DataItem{{ID: StatisticTypeTotalGmv}},
	})
	assert.True(t, errors.Is(err, errs.ErrInvalid))
}
