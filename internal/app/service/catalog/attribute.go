package catalog

import (
	"context"
	"strings"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

type AttributeRequest struct {
	ProductID     string               `json:"product_id"`
	Name          models.AttributeName `json:"name"`
	Value         string               `json:"attribute_value"`
	StockQuantity int64                `json:"stock_quantity"`
}

type AttributeUpdateRequest struct {
	Name          *models.AttributeName `json:"name"`
	Value         *string               `json:"attribute_value"`
	StockQuantity *int64                `json:"stock_quantity"`
}

// ListAttributes pages attributes, optionally of one product.
func (s *Service) ListAttributes(ctx context.Context, productID string, req types.PageRequest) (*types.Page[models.Attribute], error) {
	q := s.db.WithContext(ctx).Model(&models.Attribute{})
	if productID != "" {
		q = q.Where("product_id = ?", productID)
	}
	return pageOf[models.Attribute](q, "id ASC", req)
}

func (s *Service) GetAttribute(ctx context.Context, id string) (*models.Attribute, error) {
	return getByID[models.Attribute](ctx, s.db, id, "attribute")
}

func validAttribute(name models.AttributeName, value string, stock int64) error {
	if !name.Valid() {
		return errs.Invalid("name must be %q or %q", models.AttributeNameSize, models.AttributeNamePhoneModel)
	}
	if strings.TrimSpace(value) == "" {
		return errs.Invalid("attribute_value is required")
	}
	if stock < 0 {
		return errs.Invalid("stock_quantity must not be negative")
	}
	return nil
}

func (s *Service) CreateAttribute(ctx context.Context, actor *account.Principal, req *AttributeRequest) (*models.Attribute, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := validAttribute(req.Name, req.Value, req.StockQuantity); err != nil {
		return nil, err
	}
	if err := checkRef(s.db.WithContext(ctx), &models.Product{}, req.ProductID, "product_id"); err != nil {
		return nil, err
	}
	a := &models.Attribute{
		ID:            tool.GenerateUUIDV7(),
		ProductID:     req.ProductID,
		Name:          req.Name,
		Value:         strings.TrimSpace(req.Value),
		StockQuantity: req.StockQuantity,
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, errs.FromDB(err, "attribute")
	}
	s.invalidateProduct(ctx, a.ProductID)
	return a, nil
}

func (s *Service) UpdateAttribute(ctx context.Context, actor *account.Principal, id string, req *AttributeUpdateRequest) (*models.Attribute, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	a, err := s.GetAttribute(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Value != nil {
		a.Value = strings.TrimSpace(*req.Value)
	}
	if req.StockQuantity != nil {
		a.StockQuantity = *req.StockQuantity
	}
	if err := validAttribute(a.Name, a.Value, a.StockQuantity); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit("Product").Save(a).Error; err != nil {
		return nil, errs.FromDB(err, "attribute")
	}
	s.invalidateProduct(ctx, a.ProductID)
	return a, nil
}

func (s *Service) DeleteAttribute(ctx context.Context, actor *account.Principal, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	a, err := s.GetAttribute(ctx, id)
	if err != nil {
		return err
	}
	var ordered int64
	if err := s.db.WithContext(ctx).Model(&models.OrderItem{}).Where("attribute_id = ?", id).Count(&ordered).Error; err != nil {
		return errs.FromDB(err, "attribute")
	}
	if ordered > 0 {
		return errs.Conflict("attribute has been ordered")
	}
	if err := deleteByID[models.Attribute](ctx, s.db, id, "attribute"); err != nil {
		return err
	}
	s.invalidateProduct(ctx, a.ProductID)
	return nil
}
