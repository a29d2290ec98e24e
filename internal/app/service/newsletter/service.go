// Package newsletter keeps the mailing list and sends newsletter and
// contact-form mail.
package newsletter

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/mailer"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

// sendBatchSize bounds recipients per SMTP session.
const sendBatchSize = 100

type Service struct {
	db     *gorm.DB
	sender mailer.Sender
	from   string
	log    *zap.SugaredLogger
}

func NewService(db *gorm.DB, sender mailer.Sender, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, sender: sender, from: cfg.Mail.From, log: log}
}

var Module = fx.Options(
	fx.Provide(NewService),
)

type SendRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactRequest struct {
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	UserEmail string `json:"user_email"`
}

func cleanEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errs.Invalid("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", errs.Invalid("invalid email %q", email)
	}
	return email, nil
}

// Subscribe adds email to the list. Subscribing twice is a conflict.
func (s *Service) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email, err := cleanEmail(email)
	if err != nil {
		return nil, err
	}
	sub := &models.Subscriber{ID: tool.GenerateUUIDV7(), Email: email}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, errs.FromDB(err, "subscriber")
	}
	logctx.FromCtx(ctx, s.log).Infow("newsletter_subscribed", "id", sub.ID)
	return sub, nil
}

func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res := s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.Subscriber{})
	if res.Error != nil {
		return fmt.Errorf("unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("subscriber")
	}
	return nil
}

// List pages the subscribers. Staff only.
func (s *Service) List(ctx context.Context, actor *account.Principal, req types.PageRequest) (*types.Page[models.Subscriber], error) {
	if !actor.Editor() {
		return nil, errs.Forbidden("only staff can list subscribers")
	}
	q := s.db.WithContext(ctx).Model(&models.Subscriber{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	var rows []models.Subscriber
	if err := q.Order("created_at ASC").Offset(req.Offset()).Limit(req.PageSize).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return types.NewPage(req, total, rows), nil
}

// Send mails the newsletter to every subscriber and returns the recipient
// count. Staff only.
func (s *Service) Send(ctx context.Context, actor *account.Principal, req *SendRequest) (int, error) {
	if !actor.Editor() {
		return 0, errs.Forbidden("only staff can send the newsletter")
	}
	return s.Broadcast(ctx, req)
}

// Broadcast mails the newsletter without an actor check, for operator tools.
func (s *Service) Broadcast(ctx context.Context, req *SendRequest) (int, error) {
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Message)
	if subject == "" || body == "" {
		return 0, errs.Invalid("subject and message are required")
	}
	var emails []string
	if err := s.db.WithContext(ctx).Model(&models.Subscriber{}).Order("email").Pluck("email", &emails).Error; err != nil {
		return 0, fmt.Errorf("load subscribers: %w", err)
	}
	if len(emails) == 0 {
		return 0, nil
	}
	// one message per recipient so addresses are not disclosed to each other
	msgs := lo.Map(emails, func(to string, _ int) mailer.Message {
		return mailer.Message{From: s.from, To: []string{to}, Subject: subject, Body: body}
	})
	for _, batch := range lo.Chunk(msgs, sendBatchSize) {
		if err := s.sender.Send(ctx, batch...); err != nil {
			return 0, err
		}
	}
	logctx.FromCtx(ctx, s.log).Infow("newsletter_sent", "recipients", len(msgs))
	return len(msgs), nil
}

// Contact forwards a message from an authenticated user to the site address.
func (s *Service) Contact(ctx context.Context, actor *account.Principal, req *ContactRequest) error {
	if !actor.Authenticated() {
		return errs.ErrUnauthorized
	}
	from, err := cleanEmail(req.UserEmail)
	if err != nil {
		return err
	}
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Message)
	if subject == "" || body == "" {
		return errs.Invalid("subject and message are required")
	}
	msg := mailer.Message{From: from, To: []string{s.from}, ReplyTo: from, Subject: subject, Body: body}
	if err := s.sender.Send(ctx, msg); err != nil {
		return err
	}
	logctx.FromCtx(ctx, s.log).Infow("contact_sent", "user_id", actor.UserID)
	return nil
}
