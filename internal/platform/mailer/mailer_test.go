package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/inkwell/blog/pkg/errs"
)

func TestBuildMsg(t *testing.T) {
	msg, err := buildMsg(Message{
		From:    "reader@example.com",
		To:      []string{"admin@blog.site"},
		Subject: "Hello",
		Body:    "Nice blog",
	})
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	require.Equal(t, []string{"admin@blog.site"}, rcpts)
	require.Equal(t, []string{"Hello"}, msg.GetGenHeader(mail.HeaderSubject))
}

func TestBuildMsg_Invalid(t *testing.T) {
	_, err := buildMsg(Message{From: "not an address", To: []string{"a@b.c"}})
	require.ErrorIs(t, err, errs.ErrInvalid)

	_, err = buildMsg(Message{From: "a@b.c"})
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestSend_NoMessagesIsNoop(t *testing.T) {
	s := &SMTP{}
	require.NoError(t, s.Send(context.Background()))
}
