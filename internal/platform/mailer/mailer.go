// Package mailer delivers newsletter and contact-form mail over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
)

type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

type Sender interface {
	// Send delivers all messages over one SMTP session.
	Send(ctx context.Context, msgs ...Message) error
}

type SMTP struct {
	cfg config.MailConfig
	log *zap.SugaredLogger
}

func NewSMTP(cfg *config.Config, log *zap.SugaredLogger) Sender {
	return &SMTP{cfg: cfg.Mail, log: log}
}

var Module = fx.Options(
	fx.Provide(NewSMTP),
)

func (s *SMTP) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	return mail.NewClient(s.cfg.Host, opts...)
}

func (s *SMTP) Send(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	built := make([]*mail.Msg, 0, len(msgs))
	for _, m := range msgs {
		b, err := buildMsg(m)
		if err != nil {
			return err
		}
		built = append(built, b)
	}
	c, err := s.client()
	if err != nil {
		return fmt.Errorf("%w: smtp client: %v", errs.ErrUpstream, err)
	}
	if err := c.DialAndSendWithContext(ctx, built...); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("mail_send_failed", "host", s.cfg.Host, "count", len(built), "err", err)
		return fmt.Errorf("%w: smtp send: %v", errs.ErrUpstream, err)
	}
	logctx.FromCtx(ctx, s.log).Infow("mail_sent", "count", len(built))
	return nil
}

func buildMsg(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, errs.Invalid("sender %q: %v", m.From, err)
	}
	if len(m.To) == 0 {
		return nil, errs.Invalid("message has no recipients")
	}
	if err := msg.To(m.To...); err != nil {
		return nil, errs.Invalid("recipients: %v", err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, errs.Invalid("reply-to %q: %v", m.ReplyTo, err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return msg, nil
}
