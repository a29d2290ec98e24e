// Package order places shop orders against attribute stock and starts their
// payment.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/billing"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/metrics"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

// StockCache drops cached product reads whose stock changed.
type StockCache interface {
	InvalidateProducts(ctx context.Context, productIDs ...string)
}

type Service struct {
	db       *gorm.DB
	provider billing.Provider
	stock    StockCache
	currency string
	log      *zap.SugaredLogger
}

func NewService(db *gorm.DB, provider billing.Provider, stock StockCache, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, provider: provider, stock: stock, currency: cfg.Billing.Currency, log: log}
}

// touched collects the products whose stock moved inside one transaction.
type touched map[string]struct{}

func (t touched) add(ids ...string) {
	for _, id := range ids {
		t[id] = struct{}{}
	}
}

// flush runs after commit only; a rolled back transaction changed nothing.
func (s *Service) flush(ctx context.Context, t touched) {
	if len(t) == 0 {
		return
	}
	s.stock.InvalidateProducts(ctx, lo.Keys(t)...)
}

var Module = fx.Options(
	fx.Provide(NewService),
)

type ItemRequest struct {
	AttributeID string `json:"attribute_id"`
	Quantity    int64  `json:"quantity"`
}

type CreateRequest struct {
	Items []ItemRequest `json:"items"`
}

type StatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// Create opens a pending order for the caller, placing any initial items.
func (s *Service) Create(ctx context.Context, actor *account.Principal, req *CreateRequest) (*models.Order, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	o := &models.Order{
		ID:          tool.GenerateUUIDV7(),
		CustomerID:  actor.UserID,
		TotalAmount: decimal.Zero,
		Status:      models.OrderStatusPending,
	}
	moved := touched{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return errs.FromDB(err, "order")
		}
		for _, item := range req.Items {
			productID, err := placeItem(tx, o.ID, item)
			if err != nil {
				return err
			}
			moved.add(productID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, moved)
	logctx.FromCtx(ctx, s.log).Infow("order_created", "id", o.ID, "items", len(req.Items))
	return s.load(ctx, o.ID)
}

func (s *Service) load(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		return nil, errs.FromDB(err, "order")
	}
	return &o, nil
}

// readable loads an order the caller owns, or any order for staff.
func (s *Service) readable(ctx context.Context, actor *account.Principal, id string) (*models.Order, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(o.CustomerID) && !actor.Editor() {
		return nil, errs.Forbidden("not your order")
	}
	return o, nil
}

// List pages orders newest first: all of them for staff, otherwise the
// caller's own.
func (s *Service) List(ctx context.Context, actor *account.Principal, status models.OrderStatus, req types.PageRequest) (*types.Page[models.Order], error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	filters := types.FiltersAnd{}
	if !actor.Editor() {
		filters = append(filters, types.Eq("customer_id", actor.UserID))
	}
	if status != "" {
		if !status.Valid() {
			return nil, errs.Invalid("unknown status %q", status)
		}
		filters = append(filters, types.Eq("status", status))
	}
	q := s.db.WithContext(ctx).Model(&models.Order{}).Where(filters.Where())
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	var rows []models.Order
	if err := q.Preload("Items").Order("created_at DESC").Order("id DESC").Offset(req.Offset()).Limit(req.PageSize).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return types.NewPage(req, total, rows), nil
}

func (s *Service) Get(ctx context.Context, actor *account.Principal, id string) (*models.Order, error) {
	return s.readable(ctx, actor, id)
}

// restock returns the stock of every item of orderID and reports the
// products it changed.
func restock(tx *gorm.DB, orderID string) ([]string, error) {
	var items []models.OrderItem
	if err := tx.Preload("Attribute").Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	products := make([]string, 0, len(items))
	for _, it := range items {
		if err := tx.Model(&models.Attribute{}).Where("id = ?", it.AttributeID).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", it.Quantity)).Error; err != nil {
			return nil, fmt.Errorf("restock: %w", err)
		}
		if it.Attribute != nil {
			products = append(products, it.Attribute.ProductID)
		}
	}
	return products, nil
}

// UpdateStatus moves an order to status. Cancelling a pending order puts its
// stock back. Staff only.
func (s *Service) UpdateStatus(ctx context.Context, actor *account.Principal, id string, status models.OrderStatus) (*models.Order, error) {
	if !actor.Editor() {
		return nil, errs.Forbidden("only staff can change order status")
	}
	if !status.Valid() {
		return nil, errs.Invalid("unknown status %q", status)
	}
	moved := touched{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.First(&o, "id = ?", id).Error; err != nil {
			return errs.FromDB(err, "order")
		}
		if o.Status == status {
			return nil
		}
		if o.Status == models.OrderStatusCancelled {
			return errs.Invalid("order is cancelled")
		}
		// status before restock, pairs with stillPending in AddItem
		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", o.ID, o.Status).Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("update status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.Conflict("order changed concurrently")
		}
		if status == models.OrderStatusCancelled && o.Status == models.OrderStatusPending {
			products, err := restock(tx, o.ID)
			if err != nil {
				return err
			}
			moved.add(products...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, moved)
	logctx.FromCtx(ctx, s.log).Infow("order_status_changed", "id", id, "status", status)
	return s.load(ctx, id)
}

// Delete removes an order. A pending order's stock is put back. Staff only.
func (s *Service) Delete(ctx context.Context, actor *account.Principal, id string) error {
	if !actor.Editor() {
		return errs.Forbidden("only staff can delete orders")
	}
	moved := touched{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.First(&o, "id = ?", id).Error; err != nil {
			return errs.FromDB(err, "order")
		}
		if o.Status == models.OrderStatusPending {
			products, err := restock(tx, o.ID)
			if err != nil {
				return err
			}
			moved.add(products...)
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		return tx.Delete(&o).Error
	})
	if err != nil {
		return err
	}
	s.flush(ctx, moved)
	return nil
}

// placeItem takes stock for one line and adds it to the order total. Nothing
// changes when the attribute has too little stock. It returns the product
// whose stock moved.
func placeItem(tx *gorm.DB, orderID string, req ItemRequest) (string, error) {
	if req.Quantity <= 0 {
		return "", errs.Invalid("quantity must be positive")
	}
	var attr models.Attribute
	if err := tx.Preload("Product").First(&attr, "id = ?", req.AttributeID).Error; err != nil {
		return "", errs.FromDB(err, "attribute")
	}
	res := tx.Model(&models.Attribute{}).
		Where("id = ? AND stock_quantity >= ?", attr.ID, req.Quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", req.Quantity))
	if res.Error != nil {
		return "", fmt.Errorf("take stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		metrics.OrderItems.WithLabelValues("insufficient_stock").Inc()
		return "", errs.Invalid("insufficient stock for %s %s", attr.Name, attr.Value)
	}
	item := &models.OrderItem{
		ID:          tool.GenerateUUIDV7(),
		OrderID:     orderID,
		AttributeID: attr.ID,
		Quantity:    req.Quantity,
		UnitPrice:   attr.Product.Price,
	}
	if err := tx.Create(item).Error; err != nil {
		return "", errs.FromDB(err, "order item")
	}
	line := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
	if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
		Updates(map[string]any{
			"total_amount": gorm.Expr("total_amount + ?", line),
			"updated_at":   time.Now(),
		}).Error; err != nil {
		return "", fmt.Errorf("update total: %w", err)
	}
	metrics.OrderItems.WithLabelValues("placed").Inc()
	return attr.ProductID, nil
}

// stillPending touches the order only while it is pending.
func stillPending(tx *gorm.DB, orderID string) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("updated_at", time.Now())
	if res.Error != nil {
		return fmt.Errorf("lock order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Invalid("order is no longer pending")
	}
	return nil
}

// AddItem places one line on a pending order of the caller.
func (s *Service) AddItem(ctx context.Context, actor *account.Principal, orderID string, req *ItemRequest) (*models.Order, error) {
	o, err := s.readable(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderStatusPending {
		return nil, errs.Invalid("order is %s", o.Status)
	}
	moved := touched{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// holds the order row until commit; cancels serialize behind it
		if err := stillPending(tx, orderID); err != nil {
			return err
		}
		productID, err := placeItem(tx, orderID, *req)
		if err != nil {
			return err
		}
		moved.add(productID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, moved)
	return s.load(ctx, orderID)
}

// PaymentIntent starts payment of the caller's order for its total.
func (s *Service) PaymentIntent(ctx context.Context, actor *account.Principal, orderID string) (*billing.PaymentIntent, error) {
	o, err := s.readable(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(o.CustomerID) {
		return nil, errs.Forbidden("only the customer can pay an order")
	}
	if o.Status != models.OrderStatusPending {
		return nil, errs.Invalid("order is %s", o.Status)
	}
	if !o.TotalAmount.IsPositive() {
		return nil, errs.Invalid("order is empty")
	}
	intent, err := s.provider.CreatePaymentIntent(ctx, billing.PaymentIntentRequest{
		Amount:   minorUnits(o.TotalAmount),
		Currency: s.currency,
		Metadata: map[string]string{"order_id": o.ID, "user_id": o.CustomerID},
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(o).Update("payment_intent_id", intent.ID).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("payment_intent_save_failed", "order_id", o.ID, "err", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("payment_intent_created", "order_id", o.ID, "amount", intent.Amount, "items", len(o.Items))
	return intent, nil
}

// minorUnits converts an amount to cents.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
