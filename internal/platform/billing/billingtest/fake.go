// Package billingtest provides an in-memory billing provider for tests.
package billingtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/inkwell/blog/internal/platform/billing"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/tool"
)

// Fake keeps customers and subscriptions in memory. Set Err to make every
// provider call fail.
type Fake struct {
	mu            sync.Mutex
	Customers     map[string]*billing.Customer
	Subscriptions map[string]*billing.Subscription
	Intents       []billing.PaymentIntentRequest
	Err           error
	// Signature is the only signature ConstructEvent accepts.
	Signature string
}

func NewFake() *Fake {
	return &Fake{
		Customers:     map[string]*billing.Customer{},
		Subscriptions: map[string]*billing.Subscription{},
		Signature:     "valid",
	}
}

func (f *Fake) fail(op string) error {
	if f.Err == nil {
		return nil
	}
	return fmt.Errorf("%w: fake %s: %v", errs.ErrUpstream, op, f.Err)
}

func (f *Fake) FindCustomerByEmail(_ context.Context, email string) (*billing.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("list customers"); err != nil {
		return nil, err
	}
	for _, c := range f.Customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (f *Fake) CreateCustomer(_ context.Context, email, _ string) (*billing.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("create customer"); err != nil {
		return nil, err
	}
	c := &billing.Customer{ID: "cus_" + tool.GenerateUUIDV7(), Email: email}
	f.Customers[c.ID] = c
	return c, nil
}

func (f *Fake) ListActiveSubscriptions(_ context.Context, customerID string) ([]*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("list subscriptions"); err != nil {
		return nil, err
	}
	var out []*billing.Subscription
	for _, s := range f.Subscriptions {
		if s.CustomerID == customerID && s.Active() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *Fake) CreateSubscription(_ context.Context, customerID, priceID string) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("create subscription"); err != nil {
		return nil, err
	}
	s := &billing.Subscription{ID: "sub_" + tool.GenerateUUIDV7(), CustomerID: customerID, Status: "active", PriceIDs: []string{priceID}}
	f.Subscriptions[s.ID] = s
	return s, nil
}

func (f *Fake) GetSubscription(_ context.Context, id string) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("get subscription"); err != nil {
		return nil, err
	}
	s, ok := f.Subscriptions[id]
	if !ok {
		return nil, fmt.Errorf("%w: no subscription %s", errs.ErrUpstream, id)
	}
	cp := *s
	return &cp, nil
}

func (f *Fake) CancelSubscription(_ context.Context, id string) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("cancel subscription"); err != nil {
		return nil, err
	}
	s, ok := f.Subscriptions[id]
	if !ok {
		return nil, fmt.Errorf("%w: no subscription %s", errs.ErrUpstream, id)
	}
	s.Status = "canceled"
	cp := *s
	return &cp, nil
}

func (f *Fake) CreatePaymentIntent(_ context.Context, req billing.PaymentIntentRequest) (*billing.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("create payment intent"); err != nil {
		return nil, err
	}
	f.Intents = append(f.Intents, req)
	id := "pi_" + tool.GenerateUUIDV7()
	return &billing.PaymentIntent{ID: id, ClientSecret: id + "_secret", Amount: req.Amount, Currency: req.Currency}, nil
}

// ConstructEvent decodes payload as a billing.Event when signature matches.
func (f *Fake) ConstructEvent(payload []byte, signature string) (*billing.Event, error) {
	if signature != f.Signature {
		return nil, errs.Invalid("bad webhook signature")
	}
	var ev billing.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, errs.Invalid("bad webhook payload: %v", err)
	}
	ev.Raw = payload
	return &ev, nil
}
