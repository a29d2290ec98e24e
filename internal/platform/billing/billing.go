// Package billing wraps the payment provider used for premium subscriptions
// and shop payment intents.
package billing

import (
	"context"
	"encoding/json"
	"time"
)

const (
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Subscription struct {
	ID         string   `json:"id"`
	CustomerID string   `json:"customer_id"`
	Status     string   `json:"status"`
	PriceIDs   []string `json:"price_ids"`
}

// Active reports whether the subscription currently grants access.
func (s *Subscription) Active() bool {
	return s != nil && (s.Status == "active" || s.Status == "trialing")
}

func (s *Subscription) HasPrice(priceID string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.PriceIDs {
		if p == priceID {
			return true
		}
	}
	return false
}

type PaymentIntentRequest struct {
	// Amount is in the currency's minor unit.
	Amount   int64
	Currency string
	Metadata map[string]string
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Event is a verified webhook delivery. Subscription is set for
// customer.subscription.* events.
type Event struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Created      time.Time       `json:"created"`
	Subscription *Subscription   `json:"subscription,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

// Provider is the billing provider surface the services rely on. Every call
// error wraps errs.ErrUpstream; signature failures wrap errs.ErrInvalid.
type Provider interface {
	// FindCustomerByEmail returns nil without error when no customer exists.
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	CreateCustomer(ctx context.Context, email, source string) (*Customer, error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]*Subscription, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	ConstructEvent(payload []byte, signature string) (*Event, error)
}
