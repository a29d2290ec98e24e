// Package catalog manages the shop: product categories, colors, products,
// their stock attributes and images.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/platform/cache"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/types"
)

const productsListKey = "products_list"

func productKey(id string) string { return "product_" + id }

type Service struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
	log   *zap.SugaredLogger
}

func NewService(db *gorm.DB, c cache.Cache, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, cache: c, ttl: cfg.Cache.TTL, log: log}
}

var Module = fx.Options(
	fx.Provide(NewService),
)

func requireStaff(actor *account.Principal) error {
	if !actor.Editor() {
		return errs.Forbidden("only staff can change the catalog")
	}
	return nil
}

func required(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errs.Invalid("%s is required", field)
	}
	if len(value) > max {
		return "", errs.Invalid("%s is longer than %d characters", field, max)
	}
	return value, nil
}

func (s *Service) invalidateProduct(ctx context.Context, productID string) {
	if productID == "" {
		s.InvalidateProducts(ctx)
		return
	}
	s.InvalidateProducts(ctx, productID)
}

// InvalidateProducts drops the cached product list and the detail entries of
// productIDs. Orders call it after stock moves.
func (s *Service) InvalidateProducts(ctx context.Context, productIDs ...string) {
	keys := []string{productsListKey}
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	cache.Invalidate(ctx, s.cache, s.log, keys...)
}

// pageOf counts q and loads one page of it. scopes apply to the page query only.
func pageOf[T any](q *gorm.DB, order string, req types.PageRequest, scopes ...func(*gorm.DB) *gorm.DB) (*types.Page[T], error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	var rows []T
	if err := q.Scopes(scopes...).Order(order).Offset(req.Offset()).Limit(req.PageSize).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return types.NewPage(req, total, rows), nil
}

func getByID[T any](ctx context.Context, db *gorm.DB, id, what string) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, errs.FromDB(err, what)
	}
	return &row, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id, what string) error {
	var row T
	res := db.WithContext(ctx).Delete(&row, "id = ?", id)
	if res.Error != nil {
		return errs.FromDB(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound(what)
	}
	return nil
}
