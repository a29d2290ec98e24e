package premium

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/billing"
	"github.com/inkwell/blog/internal/platform/billing/billingtest"
	"github.com/inkwell/blog/internal/testutil"
	"github.com/inkwell/blog/pkg/errs"
)

func setup(t *testing.T) (*Service, *billingtest.Fake, *gorm.DB, *account.Principal) {
	t.Helper()
	db := testutil.NewDB(t)
	fake := billingtest.NewFake()
	u := testutil.CreateUser(t, db, "reader", false, false)
	return NewService(db, fake, testutil.Config(), zap.NewNop().Sugar()), fake, db, &account.Principal{UserID: u.ID}
}

func TestSubscribe(t *testing.T) {
	s, fake, db, me := setup(t)
	ctx := context.Background()

	_, err := s.Subscribe(ctx, me, &SubscribeRequest{})
	assert.True(t, errors.Is(err, errs.ErrInvalid), "new customer needs a source")

	st, err := s.Subscribe(ctx, me, &SubscribeRequest{Source: "tok_visa"})
	require.NoError(t, err)
	assert.True(t, st.Active)
	assert.Len(t, fake.Customers, 1)

	_, err = s.Subscribe(ctx, me, &SubscribeRequest{})
	assert.True(t, errors.Is(err, errs.ErrConflict))

	var pu models.PremiumUser
	require.NoError(t, db.First(&pu, "user_id = ?", me.UserID).Error)
	assert.Equal(t, st.SubscriptionID, pu.StripeSubscriptionID)
	assert.True(t, pu.HasActiveSubscription)
	assert.True(t, s.IsActive(ctx, me.UserID))
}

func TestSubscribeReusesCustomer(t *testing.T) {
	s, fake, _, me := setup(t)
	fake.Customers["cus_1"] = &billing.Customer{ID: "cus_1", Email: "reader@example.com"}

	st, err := s.Subscribe(context.Background(), me, &SubscribeRequest{})
	require.NoError(t, err)
	assert.Equal(t, "cus_1", st.CustomerID)
	assert.Len(t, fake.Customers, 1)
}

func TestCancelAndStatus(t *testing.T) {
	s, _, _, me := setup(t)
	ctx := context.Background()

	st, err := s.Status(ctx, me)
	require.NoError(t, err)
	assert.False(t, st.Active)
	_, err = s.Cancel(ctx, me)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = s.Subscribe(ctx, me, &SubscribeRequest{Source: "tok_visa"})
	require.NoError(t, err)
	st, err = s.Cancel(ctx, me)
	require.NoError(t, err)
	assert.False(t, st.Active)
	assert.False(t, s.IsActive(ctx, me.UserID))
}

func TestIsActiveFallsBackToStoredFlag(t *testing.T) {
	s, fake, _, me := setup(t)
	ctx := context.Background()
	_, err := s.Subscribe(ctx, me, &SubscribeRequest{Source: "tok_visa"})
	require.NoError(t, err)

	fake.Err = errors.New("down")
	assert.True(t, s.IsActive(ctx, me.UserID))
	st, err := s.Status(ctx, me)
	require.NoError(t, err)
	assert.True(t, st.Active)

	assert.False(t, s.IsActive(ctx, "nobody"))
}

func TestApplyEvent(t *testing.T) {
	s, _, db, me := setup(t)
	ctx := context.Background()
	st, err := s.Subscribe(ctx, me, &SubscribeRequest{Source: "tok_visa"})
	require.NoError(t, err)

	userID, err := s.ApplyEvent(ctx, &billing.Event{
		Type:         billing.EventSubscriptionDeleted,
		Subscription: &billing.Subscription{ID: st.SubscriptionID, Status: "canceled"},
	})
	require.NoError(t, err)
	assert.Equal(t, me.UserID, userID)

	var pu models.PremiumUser
	require.NoError(t, db.First(&pu, "user_id = ?", me.UserID).Error)
	assert.False(t, pu.HasActiveSubscription)

	userID, err = s.ApplyEvent(ctx, &billing.Event{Type: "invoice.paid"})
	require.NoError(t, err)
	assert.Empty(t, userID)
}
