// Package post publishes, lists and edits blog posts.
package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/engagement"
	"github.com/inkwell/blog/internal/app/service/notification"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

const (
	maxTitleLen = 200
	maxSlugLen  = 255
)

// Notifier fans a new post out to every reader.
type Notifier interface {
	NotifyAll(ctx context.Context, actorID string, ev notification.Event) (int, error)
}

// PremiumChecker reports whether a user may read premium posts.
type PremiumChecker interface {
	IsActive(ctx context.Context, userID string) bool
}

type Service struct {
	db       *gorm.DB
	notifier Notifier
	premium  PremiumChecker
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewService(db *gorm.DB, notifier Notifier, premium PremiumChecker, log *zap.SugaredLogger) *Service {
	return &Service{db: db, notifier: notifier, premium: premium, log: log, now: time.Now}
}

var Module = fx.Options(
	fx.Provide(
		NewService,
		func(s *notification.Service) Notifier { return s },
	),
)

type CreateRequest struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Text          string     `json:"text"`
	Image         string     `json:"image"`
	CategoryID    string     `json:"category_id"`
	TagIDs        []string   `json:"tag_ids"`
	IsFeatured    bool       `json:"is_featured"`
	IsTopPost     bool       `json:"is_top_post"`
	IsPremiumPost bool       `json:"is_premium_post"`
	PostedAt      *time.Time `json:"posted_at"`
}

type UpdateRequest struct {
	Title         *string    `json:"title"`
	Slug          *string    `json:"slug"`
	Text          *string    `json:"text"`
	Image         *string    `json:"image"`
	CategoryID    *string    `json:"category_id"`
	TagIDs        *[]string  `json:"tag_ids"`
	IsFeatured    *bool      `json:"is_featured"`
	IsTopPost     *bool      `json:"is_top_post"`
	IsPremiumPost *bool      `json:"is_premium_post"`
	PostedAt      *time.Time `json:"posted_at"`
}

// Listing selects one of the post feeds.
type Listing string

const (
	ListAll      Listing = "all"
	ListFeatured Listing = "featured"
	ListTop      Listing = "top"
	ListPopular  Listing = "popular"
	ListTrending Listing = "trending"
)

// Filter narrows a listing. Empty fields are ignored.
type Filter struct {
	CategoryID string `form:"category_id"`
	AuthorID   string `form:"author_id"`
	TagID      string `form:"tag_id"`
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errs.Invalid("title is required")
	}
	if len(title) > maxTitleLen {
		return "", errs.Invalid("title is longer than %d characters", maxTitleLen)
	}
	return title, nil
}

func (s *Service) uniqueSlug(tx *gorm.DB, source, selfID string) (string, error) {
	if len(source) > maxSlugLen {
		source = source[:maxSlugLen]
	}
	return tool.UniqueSlug(source, func(candidate string) (bool, error) {
		var n int64
		q := tx.Model(&models.Post{}).Where("slug = ?", candidate)
		if selfID != "" {
			q = q.Where("id <> ?", selfID)
		}
		if err := q.Count(&n).Error; err != nil {
			return false, fmt.Errorf("check slug: %w", err)
		}
		return n > 0, nil
	})
}

func loadTags(tx *gorm.DB, ids []string) ([]models.Tag, error) {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	if len(tags) != len(ids) {
		return nil, errs.Invalid("unknown tag in %v", ids)
	}
	return tags, nil
}

func checkCategory(tx *gorm.DB, id string) error {
	if id == "" {
		return errs.Invalid("category_id is required")
	}
	var n int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if n == 0 {
		return errs.Invalid("unknown category %s", id)
	}
	return nil
}

// Create publishes a post. A blank slug is derived from the title and a
// future posted_at schedules it.
func (s *Service) Create(ctx context.Context, actor *account.Principal, req *CreateRequest) (*View, error) {
	if !actor.Admin() {
		return nil, errs.Forbidden("only a superuser can create posts")
	}
	title, err := validTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, errs.Invalid("text is required")
	}
	p := &models.Post{
		ID:            tool.GenerateUUIDV7(),
		AuthorID:      actor.UserID,
		CategoryID:    req.CategoryID,
		Title:         title,
		Text:          req.Text,
		Image:         req.Image,
		IsFeatured:    req.IsFeatured,
		IsTopPost:     req.IsTopPost,
		IsPremiumPost: req.IsPremiumPost,
		PostedAt:      s.now(),
	}
	if req.PostedAt != nil && !req.PostedAt.IsZero() {
		p.PostedAt = *req.PostedAt
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, p.CategoryID); err != nil {
			return err
		}
		tags, err := loadTags(tx, req.TagIDs)
		if err != nil {
			return err
		}
		source := strings.TrimSpace(req.Slug)
		if source == "" {
			source = title
		}
		if p.Slug, err = s.uniqueSlug(tx, source, ""); err != nil {
			return err
		}
		p.Tags = tags
		if err := tx.Omit("Tags.*").Create(p).Error; err != nil {
			return errs.FromDB(err, "post")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logctx.FromCtx(ctx, s.log)
	log.Infow("post_created", "id", p.ID, "slug", p.Slug, "scheduled", !p.Published(s.now()))
	if p.Published(s.now()) {
		s.announce(ctx, actor.UserID, p)
	}
	return s.view(ctx, p.ID)
}

func (s *Service) announce(ctx context.Context, actorID string, p *models.Post) {
	postID := p.ID
	_, err := s.notifier.NotifyAll(ctx, actorID, notification.Event{
		Message: fmt.Sprintf("New post: %s", p.Title),
		Type:    models.NotificationTypeNewPost,
		PostID:  &postID,
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("post_announce_failed", "id", p.ID, "err", err)
	}
}

// canReadPremium reports whether actor may read premium posts.
func (s *Service) canReadPremium(ctx context.Context, actor *account.Principal) bool {
	if actor.Editor() {
		return true
	}
	return actor.Authenticated() && s.premium.IsActive(ctx, actor.UserID)
}

// visible limits a post query to what actor may see.
func (s *Service) visible(ctx context.Context, actor *account.Principal) func(*gorm.DB) *gorm.DB {
	premium := s.canReadPremium(ctx, actor)
	now := s.now()
	return func(db *gorm.DB) *gorm.DB {
		if !actor.Editor() {
			db = db.Where("post.posted_at <= ?", now)
		}
		if !premium {
			db = db.Where("post.is_premium_post = ?", false)
		}
		return db
	}
}

// List pages one feed for actor.
func (s *Service) List(ctx context.Context, actor *account.Principal, listing Listing, f Filter, req types.PageRequest) (*types.Page[View], error) {
	q := s.db.WithContext(ctx).Model(&models.Post{}).Scopes(s.visible(ctx, actor))

	filters := types.FiltersAnd{}
	if f.CategoryID != "" {
		filters = append(filters, types.Eq("post.category_id", f.CategoryID))
	}
	if f.AuthorID != "" {
		filters = append(filters, types.Eq("post.author_id", f.AuthorID))
	}
	if len(filters) > 0 {
		q = q.Where(filters.Where())
	}
	if f.TagID != "" {
		q = q.Where("post.id IN (SELECT post_id FROM post_tags WHERE tag_id = ?)", f.TagID)
	}

	switch listing {
	case ListAll, ListPopular, ListTrending:
	case ListFeatured:
		q = q.Where("post.is_featured = ?", true)
	case ListTop:
		q = q.Where("post.is_top_post = ?", true)
	default:
		return nil, errs.Invalid("unknown listing %q", listing)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	switch listing {
	case ListPopular:
		q = q.Order("(SELECT COUNT(*) FROM likes WHERE likes.post_id = post.id) DESC").
			Order("(SELECT COUNT(*) FROM comment WHERE comment.post_id = post.id) DESC").
			Order("post.posted_at DESC")
	case ListTrending:
		q = q.Scopes(engagement.OrderByScore)
	default:
		q = q.Order("post.posted_at DESC")
	}

	var posts []models.Post
	err := q.Select("post.*").
		Preload("Author").Preload("Category").Preload("Tags").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	views, err := s.toViews(ctx, posts)
	if err != nil {
		return nil, err
	}
	return types.NewPage(req, total, views), nil
}

// Get returns a visible post by id and counts the view.
func (s *Service) Get(ctx context.Context, actor *account.Principal, id string) (*View, error) {
	return s.retrieve(ctx, actor, "post.id = ?", id)
}

// GetBySlug returns a visible post by slug and counts the view.
func (s *Service) GetBySlug(ctx context.Context, actor *account.Principal, slug string) (*View, error) {
	return s.retrieve(ctx, actor, "post.slug = ?", slug)
}

func (s *Service) retrieve(ctx context.Context, actor *account.Principal, cond string, arg string) (*View, error) {
	var p models.Post
	q := s.db.WithContext(ctx).Where(cond, arg)
	if !actor.Editor() {
		q = q.Where("post.posted_at <= ?", s.now())
	}
	if err := q.First(&p).Error; err != nil {
		return nil, errs.FromDB(err, "post")
	}
	if p.IsPremiumPost && !s.canReadPremium(ctx, actor) {
		return nil, errs.Forbidden("premium subscription required")
	}
	if err := s.db.WithContext(ctx).Model(&p).UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	return s.view(ctx, p.ID)
}

// Update applies req and appends one history snapshot of the result.
func (s *Service) Update(ctx context.Context, actor *account.Principal, id string, req *UpdateRequest) (*View, error) {
	if !actor.Editor() {
		return nil, errs.Forbidden("only staff can edit posts")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Post
		if err := tx.Preload("Tags").First(&p, "id = ?", id).Error; err != nil {
			return errs.FromDB(err, "post")
		}
		if req.Title != nil {
			title, err := validTitle(*req.Title)
			if err != nil {
				return err
			}
			p.Title = title
		}
		if req.Slug != nil {
			source := strings.TrimSpace(*req.Slug)
			if source == "" {
				source = p.Title
			}
			slug, err := s.uniqueSlug(tx, source, p.ID)
			if err != nil {
				return err
			}
			p.Slug = slug
		}
		if req.Text != nil {
			if strings.TrimSpace(*req.Text) == "" {
				return errs.Invalid("text is required")
			}
			p.Text = *req.Text
		}
		if req.CategoryID != nil {
			if err := checkCategory(tx, *req.CategoryID); err != nil {
				return err
			}
			p.CategoryID = *req.CategoryID
		}
		if req.Image != nil {
			p.Image = *req.Image
		}
		if req.IsFeatured != nil {
			p.IsFeatured = *req.IsFeatured
		}
		if req.IsTopPost != nil {
			p.IsTopPost = *req.IsTopPost
		}
		if req.IsPremiumPost != nil {
			p.IsPremiumPost = *req.IsPremiumPost
		}
		if req.PostedAt != nil && !req.PostedAt.IsZero() {
			p.PostedAt = *req.PostedAt
		}
		if req.TagIDs != nil {
			tags, err := loadTags(tx, *req.TagIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&p).Association("Tags").Replace(tags); err != nil {
				return fmt.Errorf("replace tags: %w", err)
			}
			p.Tags = tags
		}
		if err := tx.Omit("Tags", "Author", "Category").Save(&p).Error; err != nil {
			return errs.FromDB(err, "post")
		}
		return tx.Create(snapshot(&p, actor.UserID)).Error
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("post_updated", "id", id, "editor", actor.UserID)
	return s.view(ctx, id)
}

// Delete removes a post. Its history is kept.
func (s *Service) Delete(ctx context.Context, actor *account.Principal, id string) error {
	if !actor.Editor() {
		return errs.Forbidden("only staff can delete posts")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return fmt.Errorf("detach tags: %w", err)
		}
		if err := tx.Delete(&models.PostEngagement{}, "post_id = ?", id).Error; err != nil {
			return fmt.Errorf("drop engagement: %w", err)
		}
		res := tx.Delete(&models.Post{}, "id = ?", id)
		if res.Error != nil {
			return errs.FromDB(res.Error, "post")
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("post")
		}
		return nil
	})
	if err != nil {
		return err
	}
	logctx.FromCtx(ctx, s.log).Infow("post_deleted", "id", id, "actor", actor.UserID)
	return nil
}
