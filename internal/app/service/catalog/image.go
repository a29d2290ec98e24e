package catalog

import (
	"context"
	"net/url"
	"strings"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

type ImageRequest struct {
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
}

func validURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if raw == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return "", errs.Invalid("url must be an absolute URL")
	}
	return raw, nil
}

func (s *Service) ListImages(ctx context.Context, productID string, req types.PageRequest) (*types.Page[models.Image], error) {
	q := s.db.WithContext(ctx).Model(&models.Image{})
	if productID != "" {
		q = q.Where("product_id = ?", productID)
	}
	return pageOf[models.Image](q, "id ASC", req)
}

func (s *Service) GetImage(ctx context.Context, id string) (*models.Image, error) {
	return getByID[models.Image](ctx, s.db, id, "image")
}

func (s *Service) CreateImage(ctx context.Context, actor *account.Principal, req *ImageRequest) (*models.Image, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	link, err := validURL(req.URL)
	if err != nil {
		return nil, err
	}
	if err := checkRef(s.db.WithContext(ctx), &models.Product{}, req.ProductID, "product_id"); err != nil {
		return nil, err
	}
	img := &models.Image{ID: tool.GenerateUUIDV7(), ProductID: req.ProductID, URL: link}
	if err := s.db.WithContext(ctx).Create(img).Error; err != nil {
		return nil, errs.FromDB(err, "image")
	}
	s.invalidateProduct(ctx, img.ProductID)
	return img, nil
}

func (s *Service) UpdateImage(ctx context.Context, actor *account.Principal, id string, req *ImageRequest) (*models.Image, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	link, err := validURL(req.URL)
	if err != nil {
		return nil, err
	}
	img, err := s.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(img).Update("url", link).Error; err != nil {
		return nil, errs.FromDB(err, "image")
	}
	img.URL = link
	s.invalidateProduct(ctx, img.ProductID)
	return img, nil
}

func (s *Service) DeleteImage(ctx context.Context, actor *account.Principal, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	img, err := s.GetImage(ctx, id)
	if err != nil {
		return err
	}
	if err := deleteByID[models.Image](ctx, s.db, id, "image"); err != nil {
		return err
	}
	s.invalidateProduct(ctx, img.ProductID)
	return nil
}
