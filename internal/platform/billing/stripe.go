package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
)

type Stripe struct {
	api           *client.API
	webhookSecret string
	log           *zap.SugaredLogger
}

func NewStripe(cfg *config.Config, log *zap.SugaredLogger) Provider {
	if cfg.Billing.SecretKey == "" {
		log.Warnw("billing secret key is empty; provider calls will fail")
	}
	return newStripe(cfg.Billing, nil, log)
}

func newStripe(cfg config.BillingConfig, backends *stripe.Backends, log *zap.SugaredLogger) *Stripe {
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	return &Stripe{api: api, webhookSecret: cfg.WebhookSecret, log: log}
}

var Module = fx.Options(
	fx.Provide(NewStripe),
)

func upstream(op string, err error) error {
	return fmt.Errorf("%w: stripe %s: %v", errs.ErrUpstream, op, err)
}

func (s *Stripe) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)
	it := s.api.Customers.List(params)
	for it.Next() {
		c := it.Customer()
		return &Customer{ID: c.ID, Email: c.Email}, nil
	}
	if err := it.Err(); err != nil {
		return nil, upstream("list customers", err)
	}
	return nil, nil
}

func (s *Stripe) CreateCustomer(ctx context.Context, email, source string) (*Customer, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	if source != "" {
		params.Source = stripe.String(source)
	}
	params.Context = ctx
	c, err := s.api.Customers.New(params)
	if err != nil {
		return nil, upstream("create customer", err)
	}
	return &Customer{ID: c.ID, Email: c.Email}, nil
}

func (s *Stripe) ListActiveSubscriptions(ctx context.Context, customerID string) ([]*Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	var out []*Subscription
	it := s.api.Subscriptions.List(params)
	for it.Next() {
		out = append(out, fromStripeSubscription(it.Subscription()))
	}
	if err := it.Err(); err != nil {
		return nil, upstream("list subscriptions", err)
	}
	return out, nil
}

func (s *Stripe) CreateSubscription(ctx context.Context, customerID, priceID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items:    []*stripe.SubscriptionItemsParams{{Price: stripe.String(priceID)}},
	}
	params.Context = ctx
	sub, err := s.api.Subscriptions.New(params)
	if err != nil {
		return nil, upstream("create subscription", err)
	}
	return fromStripeSubscription(sub), nil
}

func (s *Stripe) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := s.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, upstream("get subscription", err)
	}
	return fromStripeSubscription(sub), nil
}

func (s *Stripe) CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	sub, err := s.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		return nil, upstream("cancel subscription", err)
	}
	return fromStripeSubscription(sub), nil
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, upstream("create payment intent", err)
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Amount: pi.Amount, Currency: string(pi.Currency)}, nil
}

func (s *Stripe) ConstructEvent(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errs.Invalid("webhook signature: %v", err)
	}
	out := &Event{ID: ev.ID, Type: string(ev.Type), Created: time.Unix(ev.Created, 0)}
	if ev.Data != nil {
		out.Raw = ev.Data.Raw
		if strings.HasPrefix(out.Type, "customer.subscription.") {
			var sub stripe.Subscription
			if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
				return nil, errs.Invalid("webhook subscription payload: %v", err)
			}
			out.Subscription = fromStripeSubscription(&sub)
		}
	}
	return out, nil
}

func fromStripeSubscription(sub *stripe.Subscription) *Subscription {
	if sub == nil {
		return nil
	}
	out := &Subscription{ID: sub.ID, Status: string(sub.Status)}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil {
		for _, it := range sub.Items.Data {
			if it.Price != nil {
				out.PriceIDs = append(out.PriceIDs, it.Price.ID)
			}
		}
	}
	return out
}
