// Package taxonomy manages post categories and tags behind a read-through cache.
package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/cache"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
)

// Kind selects categories or tags. Both share one table shape.
type Kind string

const (
	KindCategory Kind = "category"
	KindTag      Kind = "tag"
)

// Term is a category or tag.
type Term struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (k Kind) model() any {
	if k == KindCategory {
		return &models.Category{}
	}
	return &models.Tag{}
}

func (k Kind) table() string {
	if k == KindCategory {
		return models.Category{}.TableName()
	}
	return models.Tag{}.TableName()
}

// ListKey and ItemKey are the cache keys, e.g. post_tags_list and post_tag_<id>.
func (k Kind) ListKey() string {
	if k == KindCategory {
		return "post_categories_list"
	}
	return "post_tags_list"
}

func (k Kind) ItemKey(id string) string { return fmt.Sprintf("post_%s_%s", k, id) }

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

// List returns every term of kind, cached as a whole.
func (s *Service) List(ctx context.Context, kind Kind) ([]Term, error) {
	return cache.Remember(ctx, s.cache, s.log, kind.ListKey(), s.ttl, func() ([]Term, error) {
		var rows []Term
		if err := s.db.WithContext(ctx).Table(kind.table()).Select("id", "title").Order("title ASC").Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("list %s: %w", kind, err)
		}
		if rows == nil {
			rows = []Term{}
		}
		return rows, nil
	})
}

func (s *Service) Get(ctx context.Context, kind Kind, id string) (*Term, error) {
	return cache.Remember(ctx, s.cache, s.log, kind.ItemKey(id), s.ttl, func() (*Term, error) {
		var t Term
		res := s.db.WithContext(ctx).Table(kind.table()).Select("id", "title").Where("id = ?", id).Limit(1).Scan(&t)
		if res.Error != nil {
			return nil, fmt.Errorf("get %s: %w", kind, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, errs.NotFound(string(kind))
		}
		return &t, nil
	})
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errs.Invalid("title is required")
	}
	if len(title) > 100 {
		return "", errs.Invalid("title is longer than 100 characters")
	}
	return title, nil
}

func (s *Service) Create(ctx context.Context, actor *account.Principal, kind Kind, title string) (*Term, error) {
	if !actor.Admin() {
		return nil, errs.Forbidden("only a superuser can create a %s", kind)
	}
	title, err := validTitle(title)
	if err != nil {
		return nil, err
	}
	t := &Term{ID: tool.GenerateUUIDV7(), Title: title}
	if err := s.db.WithContext(ctx).Table(kind.table()).Create(map[string]any{"id": t.ID, "title": t.Title}).Error; err != nil {
		return nil, errs.FromDB(err, string(kind))
	}
	cache.Invalidate(ctx, s.cache, s.log, kind.ListKey())
	logctx.FromCtx(ctx, s.log).Infow("term_created", "kind", kind, "id", t.ID)
	return t, nil
}

func (s *Service) Update(ctx context.Context, actor *account.Principal, kind Kind, id, title string) (*Term, error) {
	if !actor.Admin() {
		return nil, errs.Forbidden("only a superuser can edit a %s", kind)
	}
	title, err := validTitle(title)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Table(kind.table()).Where("id = ?", id).Update("title", title)
	if res.Error != nil {
		return nil, errs.FromDB(res.Error, string(kind))
	}
	if res.RowsAffected == 0 {
		return nil, errs.NotFound(string(kind))
	}
	cache.Invalidate(ctx, s.cache, s.log, kind.ItemKey(id), kind.ListKey())
	return &Term{ID: id, Title: title}, nil
}

func (s *Service) Delete(ctx context.Context, actor *account.Principal, kind Kind, id string) error {
	if !actor.Admin() {
		return errs.Forbidden("only a superuser can delete a %s", kind)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if kind == KindTag {
			if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
				return fmt.Errorf("detach tag: %w", err)
			}
		} else {
			var used int64
			if err := tx.Model(&models.Post{}).Where("category_id = ?", id).Count(&used).Error; err != nil {
				return fmt.Errorf("count posts: %w", err)
			}
			if used > 0 {
				return errs.Conflict("category is used by %d posts", used)
			}
		}
		res := tx.Delete(kind.model(), "id = ?", id)
		if res.Error != nil {
			return errs.FromDB(res.Error, string(kind))
		}
		if res.RowsAffected == 0 {
			return errs.NotFound(string(kind))
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.Invalidate(ctx, s.cache, s.log, kind.ItemKey(id), kind.ListKey())
	return nil
}
