package catalog

import (
	"context"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

type NameRequest struct {
	Name string `json:"name"`
}

func (s *Service) ListCategories(ctx context.Context, req types.PageRequest) (*types.Page[models.ProductCategory], error) {
	return pageOf[models.ProductCategory](s.db.WithContext(ctx).Model(&models.ProductCategory{}), "name ASC", req)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*models.ProductCategory, error) {
	return getByID[models.ProductCategory](ctx, s.db, id, "product category")
}

func (s *Service) CreateCategory(ctx context.Context, actor *account.Principal, req *NameRequest) (*models.ProductCategory, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	name, err := required("name", req.Name, 100)
	if err != nil {
		return nil, err
	}
	c := &models.ProductCategory{ID: tool.GenerateUUIDV7(), Name: name}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, errs.FromDB(err, "product category")
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, actor *account.Principal, id string, req *NameRequest) (*models.ProductCategory, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	name, err := required("name", req.Name, 100)
	if err != nil {
		return nil, err
	}
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(c).Update("name", name).Error; err != nil {
		return nil, errs.FromDB(err, "product category")
	}
	c.Name = name
	// products embed their category
	s.invalidateProduct(ctx, "")
	return c, nil
}

// DeleteCategory fails with a conflict while products still use it.
func (s *Service) DeleteCategory(ctx context.Context, actor *account.Principal, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	var used int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&used).Error; err != nil {
		return errs.FromDB(err, "product category")
	}
	if used > 0 {
		return errs.Conflict("product category is used by %d products", used)
	}
	return deleteByID[models.ProductCategory](ctx, s.db, id, "product category")
}

func (s *Service) ListColors(ctx context.Context, req types.PageRequest) (*types.Page[models.Color], error) {
	return pageOf[models.Color](s.db.WithContext(ctx).Model(&models.Color{}), "name ASC", req)
}

func (s *Service) GetColor(ctx context.Context, id string) (*models.Color, error) {
	return getByID[models.Color](ctx, s.db, id, "color")
}

func (s *Service) CreateColor(ctx context.Context, actor *account.Principal, req *NameRequest) (*models.Color, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	name, err := required("name", req.Name, 50)
	if err != nil {
		return nil, err
	}
	c := &models.Color{ID: tool.GenerateUUIDV7(), Name: name}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, errs.FromDB(err, "color")
	}
	return c, nil
}

func (s *Service) UpdateColor(ctx context.Context, actor *account.Principal, id string, req *NameRequest) (*models.Color, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	name, err := required("name", req.Name, 50)
	if err != nil {
		return nil, err
	}
	c, err := s.GetColor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(c).Update("name", name).Error; err != nil {
		return nil, errs.FromDB(err, "color")
	}
	c.Name = name
	s.invalidateProduct(ctx, "")
	return c, nil
}

func (s *Service) DeleteColor(ctx context.Context, actor *account.Principal, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	var used int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("color_id = ?", id).Count(&used).Error; err != nil {
		return errs.FromDB(err, "color")
	}
	if used > 0 {
		return errs.Conflict("color is used by %d products", used)
	}
	return deleteByID[models.Color](ctx, s.db, id, "color")
}
