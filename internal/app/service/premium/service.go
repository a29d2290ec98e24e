// Package premium sells the premium subscription that unlocks premium posts.
package premium

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/billing"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
)

type Service struct {
	db       *gorm.DB
	provider billing.Provider
	priceID  string
	log      *zap.SugaredLogger
}

func NewService(db *gorm.DB, provider billing.Provider, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, provider: provider, priceID: cfg.Billing.PremiumPriceID, log: log}
}

var Module = fx.Options(
	fx.Provide(NewService),
)

type SubscribeRequest struct {
	// Source is the card token used when a new billing customer is created.
	Source string `json:"source"`
}

type Status struct {
	Active         bool   `json:"active"`
	Status         string `json:"status,omitempty"`
	CustomerID     string `json:"customer_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

func (s *Service) user(ctx context.Context, actor *account.Principal) (*models.User, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", actor.UserID).Error; err != nil {
		return nil, errs.FromDB(err, "user")
	}
	return &u, nil
}

func (s *Service) record(ctx context.Context, userID string) (*models.PremiumUser, error) {
	var pu models.PremiumUser
	if err := s.db.WithContext(ctx).First(&pu, "user_id = ?", userID).Error; err != nil {
		return nil, errs.FromDB(err, "premium subscription")
	}
	return &pu, nil
}

// Subscribe starts the premium subscription for the caller. An existing
// billing customer with the caller's email is reused.
func (s *Service) Subscribe(ctx context.Context, actor *account.Principal, req *SubscribeRequest) (*Status, error) {
	u, err := s.user(ctx, actor)
	if err != nil {
		return nil, err
	}
	if s.priceID == "" {
		return nil, fmt.Errorf("premium price is not configured")
	}
	log := logctx.FromCtx(ctx, s.log)

	customer, err := s.provider.FindCustomerByEmail(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		if req.Source == "" {
			return nil, errs.Invalid("source is required for a new customer")
		}
		if customer, err = s.provider.CreateCustomer(ctx, u.Email, req.Source); err != nil {
			return nil, err
		}
		log.Infow("billing_customer_created", "customer_id", customer.ID)
	}

	active, err := s.provider.ListActiveSubscriptions(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	for _, sub := range active {
		if sub.Active() && sub.HasPrice(s.priceID) {
			return nil, errs.Conflict("already subscribed to premium")
		}
	}

	sub, err := s.provider.CreateSubscription(ctx, customer.ID, s.priceID)
	if err != nil {
		return nil, err
	}
	pu := &models.PremiumUser{
		ID:                    tool.GenerateUUIDV7(),
		UserID:                u.ID,
		StripeCustomerID:      customer.ID,
		StripeSubscriptionID:  sub.ID,
		HasActiveSubscription: sub.Active(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stripe_customer_id", "stripe_subscription_id", "has_active_subscription", "updated_at"}),
	}).Create(pu).Error
	if err != nil {
		return nil, fmt.Errorf("save premium user: %w", err)
	}
	log.Infow("premium_subscribed", "subscription_id", sub.ID, "status", sub.Status)
	return &Status{Active: sub.Active(), Status: sub.Status, CustomerID: customer.ID, SubscriptionID: sub.ID}, nil
}

// Cancel cancels the caller's premium subscription.
func (s *Service) Cancel(ctx context.Context, actor *account.Principal) (*Status, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	pu, err := s.record(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	sub, err := s.provider.CancelSubscription(ctx, pu.StripeSubscriptionID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(pu).Update("has_active_subscription", sub.Active()).Error; err != nil {
		return nil, fmt.Errorf("save premium user: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("premium_cancelled", "subscription_id", sub.ID)
	return &Status{Active: sub.Active(), Status: sub.Status, CustomerID: pu.StripeCustomerID, SubscriptionID: sub.ID}, nil
}

// Status reports the caller's subscription as the provider sees it.
func (s *Service) Status(ctx context.Context, actor *account.Principal) (*Status, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	pu, err := s.record(ctx, actor.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		return &Status{}, nil
	}
	if err != nil {
		return nil, err
	}
	st := &Status{CustomerID: pu.StripeCustomerID, SubscriptionID: pu.StripeSubscriptionID}
	sub, err := s.provider.GetSubscription(ctx, pu.StripeSubscriptionID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("premium_status_fallback", "err", err)
		st.Active = pu.HasActiveSubscription
		return st, nil
	}
	st.Active = s.grants(sub)
	st.Status = sub.Status
	return st, nil
}

func (s *Service) grants(sub *billing.Subscription) bool {
	return sub.Active() && sub.HasPrice(s.priceID)
}

// IsActive asks the provider whether userID's subscription grants premium
// access and falls back to the stored flag when the provider fails.
func (s *Service) IsActive(ctx context.Context, userID string) bool {
	pu, err := s.record(ctx, userID)
	if err != nil {
		return false
	}
	sub, err := s.provider.GetSubscription(ctx, pu.StripeSubscriptionID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("premium_check_fallback", "user_id", userID, "err", err)
		return pu.HasActiveSubscription
	}
	active := s.grants(sub)
	if active != pu.HasActiveSubscription {
		if err := s.db.WithContext(ctx).Model(pu).Update("has_active_subscription", active).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("premium_flag_sync_failed", "user_id", userID, "err", err)
		}
	}
	return active
}

// ApplyEvent syncs the stored flag from a subscription webhook event and
// returns the affected user, if any.
func (s *Service) ApplyEvent(ctx context.Context, ev *billing.Event) (string, error) {
	if ev.Subscription == nil {
		return "", nil
	}
	if ev.Type != billing.EventSubscriptionUpdated && ev.Type != billing.EventSubscriptionDeleted {
		return "", nil
	}
	var pu models.PremiumUser
	res := s.db.WithContext(ctx).Where("stripe_subscription_id = ?", ev.Subscription.ID).Limit(1).Find(&pu)
	if res.Error != nil {
		return "", fmt.Errorf("find premium user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		logctx.FromCtx(ctx, s.log).Infow("billing_event_unknown_subscription", "subscription_id", ev.Subscription.ID)
		return "", nil
	}
	active := ev.Type == billing.EventSubscriptionUpdated && s.grants(ev.Subscription)
	if err := s.db.WithContext(ctx).Model(&pu).Update("has_active_subscription", active).Error; err != nil {
		return pu.UserID, fmt.Errorf("save premium user: %w", err)
	}
	return pu.UserID, nil
}
