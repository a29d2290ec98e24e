package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/cache"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

type ProductRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"category_id"`
	Description string          `json:"description"`
	Details     string          `json:"details"`
	ColorID     string          `json:"color_id"`
	Slug        string          `json:"slug"`
}

type ProductUpdateRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"category_id"`
	Description *string          `json:"description"`
	Details     *string          `json:"details"`
	ColorID     *string          `json:"color_id"`
	Slug        *string          `json:"slug"`
}

// ProductFilter narrows the product list. Zero values are ignored.
type ProductFilter struct {
	CategoryID string           `form:"category_id"`
	ColorID    string           `form:"color_id"`
	MinPrice   *decimal.Decimal `form:"min_price"`
	MaxPrice   *decimal.Decimal `form:"max_price"`
}

func (f ProductFilter) empty() bool {
	return f.CategoryID == "" && f.ColorID == "" && f.MinPrice == nil && f.MaxPrice == nil
}

func (f ProductFilter) filters() types.FiltersAnd {
	var out types.FiltersAnd
	if f.CategoryID != "" {
		out = append(out, types.Eq("category_id", f.CategoryID))
	}
	if f.ColorID != "" {
		out = append(out, types.Eq("color_id", f.ColorID))
	}
	if f.MinPrice != nil {
		out = append(out, &types.CommonFilter{Field: "price", Operator: types.CommonFilterOperatorGte, Values: []any{*f.MinPrice}})
	}
	if f.MaxPrice != nil {
		out = append(out, &types.CommonFilter{Field: "price", Operator: types.CommonFilterOperatorLte, Values: []any{*f.MaxPrice}})
	}
	return out
}

func withProductRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Color").Preload("Attributes").Preload("Images")
}

// ListProducts pages products by name. The unfiltered list is cached whole.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter, req types.PageRequest) (*types.Page[models.Product], error) {
	if !f.empty() {
		q := s.db.WithContext(ctx).Model(&models.Product{}).Where(f.filters().Where())
		return pageOf[models.Product](q, "name ASC", req, withProductRelations)
	}
	all, err := cache.Remember(ctx, s.cache, s.log, productsListKey, s.ttl, func() ([]models.Product, error) {
		var rows []models.Product
		if err := s.db.WithContext(ctx).Scopes(withProductRelations).Order("name ASC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		if rows == nil {
			rows = []models.Product{}
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return types.SlicePage(req, all), nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return cache.Remember(ctx, s.cache, s.log, productKey(id), s.ttl, func() (*models.Product, error) {
		var p models.Product
		if err := s.db.WithContext(ctx).Scopes(withProductRelations).First(&p, "id = ?", id).Error; err != nil {
			return nil, errs.FromDB(err, "product")
		}
		return &p, nil
	})
}

func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Scopes(withProductRelations).First(&p, "slug = ?", slug).Error; err != nil {
		return nil, errs.FromDB(err, "product")
	}
	return &p, nil
}

func validPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return errs.Invalid("price must not be negative")
	}
	return nil
}

func checkRef(tx *gorm.DB, model any, id, field string) error {
	if id == "" {
		return errs.Invalid("%s is required", field)
	}
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check %s: %w", field, err)
	}
	if n == 0 {
		return errs.Invalid("unknown %s %s", field, id)
	}
	return nil
}

func uniqueProductSlug(tx *gorm.DB, source, selfID string) (string, error) {
	return tool.UniqueSlug(source, func(candidate string) (bool, error) {
		var n int64
		q := tx.Model(&models.Product{}).Where("slug = ?", candidate)
		if selfID != "" {
			q = q.Where("id <> ?", selfID)
		}
		if err := q.Count(&n).Error; err != nil {
			return false, fmt.Errorf("check slug: %w", err)
		}
		return n > 0, nil
	})
}

func (s *Service) CreateProduct(ctx context.Context, actor *account.Principal, req *ProductRequest) (*models.Product, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	name, err := required("name", req.Name, 200)
	if err != nil {
		return nil, err
	}
	details, err := required("details", req.Details, 2000)
	if err != nil {
		return nil, err
	}
	if err := validPrice(req.Price); err != nil {
		return nil, err
	}
	p := &models.Product{
		ID:          tool.GenerateUUIDV7(),
		Name:        name,
		Price:       req.Price.Round(2),
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Details:     details,
		ColorID:     req.ColorID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRef(tx, &models.ProductCategory{}, p.CategoryID, "category_id"); err != nil {
			return err
		}
		if err := checkRef(tx, &models.Color{}, p.ColorID, "color_id"); err != nil {
			return err
		}
		source := strings.TrimSpace(req.Slug)
		if source == "" {
			source = name
		}
		var err error
		if p.Slug, err = uniqueProductSlug(tx, source, ""); err != nil {
			return err
		}
		return errs.FromDB(tx.Create(p).Error, "product")
	})
	if err != nil {
		return nil, err
	}
	s.invalidateProduct(ctx, "")
	logctx.FromCtx(ctx, s.log).Infow("product_created", "id", p.ID, "slug", p.Slug)
	return s.GetProduct(ctx, p.ID)
}

func (s *Service) UpdateProduct(ctx context.Context, actor *account.Principal, id string, req *ProductUpdateRequest) (*models.Product, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return errs.FromDB(err, "product")
		}
		if req.Name != nil {
			name, err := required("name", *req.Name, 200)
			if err != nil {
				return err
			}
			p.Name = name
		}
		if req.Details != nil {
			details, err := required("details", *req.Details, 2000)
			if err != nil {
				return err
			}
			p.Details = details
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			if err := validPrice(*req.Price); err != nil {
				return err
			}
			p.Price = req.Price.Round(2)
		}
		if req.CategoryID != nil {
			if err := checkRef(tx, &models.ProductCategory{}, *req.CategoryID, "category_id"); err != nil {
				return err
			}
			p.CategoryID = *req.CategoryID
		}
		if req.ColorID != nil {
			if err := checkRef(tx, &models.Color{}, *req.ColorID, "color_id"); err != nil {
				return err
			}
			p.ColorID = *req.ColorID
		}
		if req.Slug != nil {
			source := strings.TrimSpace(*req.Slug)
			if source == "" {
				source = p.Name
			}
			slug, err := uniqueProductSlug(tx, source, p.ID)
			if err != nil {
				return err
			}
			p.Slug = slug
		}
		return errs.FromDB(tx.Omit("Category", "Color", "Attributes", "Images").Save(&p).Error, "product")
	})
	if err != nil {
		return nil, err
	}
	s.invalidateProduct(ctx, id)
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product with its attributes and images. Products
// already ordered cannot be deleted.
func (s *Service) DeleteProduct(ctx context.Context, actor *account.Principal, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ordered int64
		if err := tx.Model(&models.OrderItem{}).
			Where("attribute_id IN (?)", tx.Model(&models.Attribute{}).Select("id").Where("product_id = ?", id)).
			Count(&ordered).Error; err != nil {
			return fmt.Errorf("check orders: %w", err)
		}
		if ordered > 0 {
			return errs.Conflict("product has been ordered")
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Attribute{}).Error; err != nil {
			return fmt.Errorf("delete attributes: %w", err)
		}
		return deleteByID[models.Product](ctx, tx, id, "product")
	})
	if err != nil {
		return err
	}
	s.invalidateProduct(ctx, id)
	return nil
}
