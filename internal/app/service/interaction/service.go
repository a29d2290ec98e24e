// Package interaction handles comments, replies and likes.
package interaction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/notification"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
)

// Notifier tells a content owner about activity on their content.
type Notifier interface {
	Notify(ctx context.Context, actorID string, ev notification.Event) (*models.Notification, error)
}

// PremiumChecker reports whether a user holds an active premium subscription.
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

// publishedPost loads a post that readers can interact with.
func (s *Service) publishedPost(tx *gorm.DB, id string) (*models.Post, error) {
	if id == "" {
		return nil, errs.Invalid("post_id is required")
	}
	var p models.Post
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		return nil, errs.FromDB(err, "post")
	}
	if !p.Published(s.now()) {
		return nil, errs.Invalid("post is not published yet")
	}
	return &p, nil
}

func (s *Service) canReadPremium(ctx context.Context, actor *account.Principal) bool {
	if actor.Editor() {
		return true
	}
	return actor.Authenticated() && s.premium.IsActive(ctx, actor.UserID)
}

// premiumGate rejects actor on a premium post they cannot read. The premium
// lookup runs outside any transaction.
func (s *Service) premiumGate(ctx context.Context, actor *account.Principal, postID string) error {
	var p models.Post
	if err := s.db.WithContext(ctx).Select("id", "is_premium_post").First(&p, "id = ?", postID).Error; err != nil {
		return errs.FromDB(err, "post")
	}
	if p.IsPremiumPost && !s.canReadPremium(ctx, actor) {
		return errs.Forbidden("premium subscription required")
	}
	return nil
}

// readableComments hides comments on premium posts from actor unless they
// may read them.
func (s *Service) readableComments(ctx context.Context, actor *account.Principal) func(*gorm.DB) *gorm.DB {
	premium := s.canReadPremium(ctx, actor)
	return func(db *gorm.DB) *gorm.DB {
		if premium {
			return db
		}
		return db.Where("post_id NOT IN (?)", s.db.Model(&models.Post{}).Select("id").Where("is_premium_post = ?", true))
	}
}

func (s *Service) username(ctx context.Context, id string) string {
	var u models.User
	if err := s.db.WithContext(ctx).Select("id", "username").First(&u, "id = ?", id).Error; err != nil {
		return "someone"
	}
	return u.Username
}

// notify is best effort: the interaction is already committed.
func (s *Service) notify(ctx context.Context, actorID string, ev notification.Event) {
	if _, err := s.notifier.Notify(ctx, actorID, ev); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("notify_failed", "type", ev.Type, "recipient", ev.RecipientID, "err", err)
	}
}

type idCount struct {
	ID string
	N  int64
}

func (s *Service) countBy(ctx context.Context, model any, column string, ids []string) (map[string]int64, error) {
	var rows []idCount
	err := s.db.WithContext(ctx).Model(model).
		Select(fmt.Sprintf("%s AS id, COUNT(*) AS n", column)).
		Where(fmt.Sprintf("%s IN ?", column), ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", column, err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.N
	}
	return out, nil
}
