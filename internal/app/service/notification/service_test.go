package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/realtime"
	"github.com/inkwell/blog/internal/testutil"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/types"
)

type recorder struct {
	mu   sync.Mutex
	envs []realtime.Envelope
}

func (r *recorder) Publish(env realtime.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env)
}

func TestNotify(t *testing.T) {
	db := testutil.NewDB(t)
	rec := &recorder{}
	s := newService(db, rec, zap.NewNop().Sugar())
	owner := testutil.CreateUser(t, db, "owner", false, false)
	actor := testutil.CreateUser(t, db, "actor", false, false)

	n, err := s.Notify(context.Background(), actor.ID, Event{RecipientID: owner.ID, Message: "actor liked your post", Type: models.NotificationTypePostLike})
	require.NoError(t, err)
	require.NotNil(t, n)
	require.Len(t, rec.envs, 1)
	assert.Equal(t, EnvelopeType, rec.envs[0].Type)
	p := rec.envs[0].Data.(Payload)
	assert.Equal(t, owner.ID, p.RecipientID)
	assert.Equal(t, n.ID, p.ID)
	assert.Equal(t, models.NotificationTypePostLike, p.NotificationType)

	// self actions are silent
	n, err = s.Notify(context.Background(), owner.ID, Event{RecipientID: owner.ID, Message: "x", Type: models.NotificationTypePostLike})
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Len(t, rec.envs, 1)
}

func TestNotifyAllSkipsActorAndInactive(t *testing.T) {
	db := testutil.NewDB(t)
	rec := &recorder{}
	s := newService(db, rec, zap.NewNop().Sugar())
	author := testutil.CreateUser(t, db, "author", true, false)
	testutil.CreateUser(t, db, "a", false, false)
	testutil.CreateUser(t, db, "b", false, false)
	gone := testutil.CreateUser(t, db, "gone", false, false)
	require.NoError(t, db.Model(gone).Update("is_active", false).Error)

	n, err := s.NotifyAll(context.Background(), author.ID, Event{Message: "new post", Type: models.NotificationTypeNewPost})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, rec.envs, 1)
	assert.Empty(t, rec.envs[0].Data.(Payload).RecipientID)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", author.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListAndMarkRead(t *testing.T) {
	db := testutil.NewDB(t)
	s := newService(db, &recorder{}, zap.NewNop().Sugar())
	owner := testutil.CreateUser(t, db, "owner", false, false)
	other := testutil.CreateUser(t, db, "other", false, false)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := s.Notify(ctx, other.ID, Event{RecipientID: owner.ID, Message: "m", Type: models.NotificationTypeNewComment})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	me := &account.Principal{UserID: owner.ID}
	page, err := s.List(ctx, me, false, types.PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Count)
	assert.Len(t, page.Results, 2)

	_, err = s.MarkRead(ctx, &account.Principal{UserID: other.ID}, ids[0])
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	n, err := s.MarkRead(ctx, me, ids[0])
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	unread, err := s.List(ctx, me, true, types.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread.Count)

	changed, err := s.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	_, err = s.List(ctx, nil, false, types.PageRequest{Page: 1, PageSize: 10})
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))
}
