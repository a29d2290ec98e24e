// Package notification persists in-app notifications and relays them to
// connected realtime clients.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/realtime"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

// EnvelopeType is the realtime frame type for notifications.
const EnvelopeType = "notification"

const fanoutBatchSize = 200

// Publisher is the relay side of the hub.
type Publisher interface {
	Publish(env realtime.Envelope)
}

// Event describes something a user should hear about.
type Event struct {
	RecipientID string
	Message     string
	Type        models.NotificationType
	PostID      *string
	CommentID   *string
}

// Payload is the data of a notification envelope. An empty RecipientID
// addresses every user.
type Payload struct {
	ID               string                  `json:"id"`
	RecipientID      string                  `json:"recipient_id"`
	Message          string                  `json:"message"`
	NotificationType models.NotificationType `json:"notification_type"`
	PostID           *string                 `json:"post_id"`
	CommentID        *string                 `json:"comment_id"`
	CreatedAt        time.Time               `json:"created_at"`
}

type Service struct {
	db  *gorm.DB
	hub Publisher
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, hub *realtime.Hub, log *zap.SugaredLogger) *Service {
	return newService(db, hub, log)
}

func newService(db *gorm.DB, hub Publisher, log *zap.SugaredLogger) *Service {
	return &Service{db: db, hub: hub, log: log}
}

var Module = fx.Options(
	fx.Provide(NewService),
)

func payloadOf(n *models.Notification) Payload {
	return Payload{
		ID:               n.ID,
		RecipientID:      n.UserID,
		Message:          n.Message,
		NotificationType: n.Type,
		PostID:           n.PostID,
		CommentID:        n.CommentID,
		CreatedAt:        n.CreatedAt,
	}
}

// Notify stores a notification for ev.RecipientID and publishes it. Nothing
// happens when the recipient is the actor.
func (s *Service) Notify(ctx context.Context, actorID string, ev Event) (*models.Notification, error) {
	if ev.RecipientID == "" || ev.RecipientID == actorID {
		return nil, nil
	}
	n := &models.Notification{
		ID:        tool.GenerateUUIDV7(),
		UserID:    ev.RecipientID,
		Message:   ev.Message,
		Type:      ev.Type,
		PostID:    ev.PostID,
		CommentID: ev.CommentID,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	s.hub.Publish(realtime.Envelope{Type: EnvelopeType, Data: payloadOf(n)})
	logctx.FromCtx(ctx, s.log).Debugw("notification_sent", "id", n.ID, "recipient", n.UserID, "type", n.Type)
	return n, nil
}

// NotifyAll stores one notification per active user other than the actor and
// publishes a single broadcast envelope. It returns the number of rows.
func (s *Service) NotifyAll(ctx context.Context, actorID string, ev Event) (int, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ? AND id <> ?", true, actorID).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("load recipients: %w", err)
	}
	now := time.Now()
	rows := lo.Map(ids, func(id string, _ int) models.Notification {
		return models.Notification{
			ID:        tool.GenerateUUIDV7(),
			UserID:    id,
			Message:   ev.Message,
			Type:      ev.Type,
			PostID:    ev.PostID,
			CommentID: ev.CommentID,
			CreatedAt: now,
		}
	})
	if len(rows) > 0 {
		if err := s.db.WithContext(ctx).CreateInBatches(rows, fanoutBatchSize).Error; err != nil {
			return 0, fmt.Errorf("save notifications: %w", err)
		}
	}
	s.hub.Publish(realtime.Envelope{Type: EnvelopeType, Data: Payload{
		Message:          ev.Message,
		NotificationType: ev.Type,
		PostID:           ev.PostID,
		CommentID:        ev.CommentID,
		CreatedAt:        now,
	}})
	logctx.FromCtx(ctx, s.log).Infow("notification_broadcast", "type", ev.Type, "recipients", len(rows))
	return len(rows), nil
}

// List pages the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, actor *account.Principal, unreadOnly bool, req types.PageRequest) (*types.Page[models.Notification], error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	q := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", actor.UserID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}
	var rows []models.Notification
	if err := q.Order("created_at DESC").Order("id DESC").Offset(req.Offset()).Limit(req.PageSize).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return types.NewPage(req, total, rows), nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *Service) MarkRead(ctx context.Context, actor *account.Principal, id string) (*models.Notification, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	var n models.Notification
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, actor.UserID).First(&n).Error; err != nil {
		return nil, errs.FromDB(err, "notification")
	}
	if !n.IsRead {
		if err := s.db.WithContext(ctx).Model(&n).Update("is_read", true).Error; err != nil {
			return nil, fmt.Errorf("mark read: %w", err)
		}
	}
	n.IsRead = true
	return &n, nil
}

// MarkAllRead flags every unread notification of the caller and returns how
// many changed.
func (s *Service) MarkAllRead(ctx context.Context, actor *account.Principal) (int64, error) {
	if !actor.Authenticated() {
		return 0, errs.ErrUnauthorized
	}
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.UserID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
