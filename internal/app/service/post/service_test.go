package post

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/notification"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/testutil"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

type stubNotifier struct{ events []notification.Event }

func (n *stubNotifier) NotifyAll(_ context.Context, _ string, ev notification.Event) (int, error) {
	n.events = append(n.events, ev)
	return 1, nil
}

type stubPremium map[string]bool

func (p stubPremium) IsActive(_ context.Context, userID string) bool { return p[userID] }

type fixture struct {
	db       *gorm.DB
	svc      *Service
	notifier *stubNotifier
	premium  stubPremium
	admin    *account.Principal
	editor   *account.Principal
	reader   *account.Principal
	category *models.Category
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{db: db, notifier: &stubNotifier{}, premium: stubPremium{}}
	f.svc = NewService(db, f.notifier, f.premium, zap.NewNop().Sugar())
	admin := testutil.CreateUser(t, db, "admin", true, true)
	editor := testutil.CreateUser(t, db, "editor", true, false)
	reader := testutil.CreateUser(t, db, "reader", false, false)
	f.admin = &account.Principal{UserID: admin.ID, IsStaff: true, IsSuperuser: true}
	f.editor = &account.Principal{UserID: editor.ID, IsStaff: true}
	f.reader = &account.Principal{UserID: reader.ID}
	f.category = testutil.CreateCategory(t, db, "Go")
	return f
}

func (f *fixture) create(t *testing.T, req *CreateRequest) *View {
	t.Helper()
	if req.CategoryID == "" {
		req.CategoryID = f.category.ID
	}
	if req.Text == "" {
		req.Text = "body"
	}
	v, err := f.svc.Create(context.Background(), f.admin, req)
	require.NoError(t, err)
	return v
}

func TestCreateDerivesUniqueSlug(t *testing.T) {
	f := setup(t)
	a := f.create(t, &CreateRequest{Title: "Hello World"})
	b := f.create(t, &CreateRequest{Title: "Hello World"})
	c := f.create(t, &CreateRequest{Title: "Other", Slug: "hello-world"})

	assert.Equal(t, "hello-world", a.Slug)
	assert.Equal(t, "hello-world-1", b.Slug)
	assert.Equal(t, "hello-world-2", c.Slug)
	assert.Equal(t, "admin", a.Author.Username)
	assert.Equal(t, "Go", a.Category)
}

func TestCreateRequiresSuperuser(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), f.editor, &CreateRequest{Title: "x", Text: "y", CategoryID: f.category.ID})
	assert.True(t, errors.Is(err, errs.ErrForbidden))

	_, err = f.svc.Create(context.Background(), f.admin, &CreateRequest{Title: "x", Text: "y", CategoryID: "missing"})
	assert.True(t, errors.Is(err, errs.ErrInvalid))
}

func TestCreateAnnouncesOnlyPublishedPosts(t *testing.T) {
	f := setup(t)
	f.create(t, &CreateRequest{Title: "now"})
	later := time.Now().Add(24 * time.Hour)
	f.create(t, &CreateRequest{Title: "later", PostedAt: &later})

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, models.NotificationTypeNewPost, f.notifier.events[0].Type)

	var history int64
	require.NoError(t, f.db.Model(&models.PostHistory{}).Count(&history).Error)
	assert.Zero(t, history)
}

func TestScheduledPostsHiddenFromReaders(t *testing.T) {
	f := setup(t)
	later := time.Now().Add(time.Hour)
	v := f.create(t, &CreateRequest{Title: "soon", PostedAt: &later})
	f.create(t, &CreateRequest{Title: "live"})

	page, err := f.svc.List(context.Background(), f.reader, ListAll, Filter{}, types.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Count)

	_, err = f.svc.Get(context.Background(), nil, v.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	got, err := f.svc.Get(context.Background(), f.editor, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "soon", got.Title)
}

func TestPremiumPostsNeedActiveSubscription(t *testing.T) {
	f := setup(t)
	v := f.create(t, &CreateRequest{Title: "paid", IsPremiumPost: true})
	f.create(t, &CreateRequest{Title: "free"})
	ctx := context.Background()
	req := types.PageRequest{Page: 1, PageSize: 10}

	for _, who := range []*account.Principal{nil, f.reader} {
		page, err := f.svc.List(ctx, who, ListAll, Filter{}, req)
		require.NoError(t, err)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "free", page.Results[0].Title)

		_, err = f.svc.Get(ctx, who, v.ID)
		assert.True(t, errors.Is(err, errs.ErrForbidden))
		_, err = f.svc.GetBySlug(ctx, who, v.Slug)
		assert.True(t, errors.Is(err, errs.ErrForbidden))
	}

	f.premium[f.reader.UserID] = true
	page, err := f.svc.List(ctx, f.reader, ListAll, Filter{}, req)
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
	_, err = f.svc.Get(ctx, f.reader, v.ID)
	require.NoError(t, err)

	page, err = f.svc.List(ctx, f.editor, ListAll, Filter{}, req)
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
}

func TestRetrieveIncrementsViews(t *testing.T) {
	f := setup(t)
	v := f.create(t, &CreateRequest{Title: "counted"})
	ctx := context.Background()

	got, err := f.svc.Get(ctx, nil, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)
	got, err = f.svc.GetBySlug(ctx, f.reader, v.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)
	assert.InDelta(t, 6.0, got.EngScore, 1e-9)
}

func TestUpdateAppendsOneSnapshot(t *testing.T) {
	f := setup(t)
	v := f.create(t, &CreateRequest{Title: "before"})
	tag := &models.Tag{ID: tool.GenerateUUIDV7(), Title: "go"}
	require.NoError(t, f.db.Create(tag).Error)
	ctx := context.Background()

	title := "after"
	tags := []string{tag.ID}
	got, err := f.svc.Update(ctx, f.editor, v.ID, &UpdateRequest{Title: &title, TagIDs: &tags})
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, []string{"go"}, got.Tags)

	page, err := f.svc.PostHistory(ctx, f.reader, v.ID, types.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Count)
	h := page.Results[0]
	assert.Equal(t, "after", h.Title)
	assert.Equal(t, f.editor.UserID, h.EditorID)
	assert.Equal(t, []models.TagSnap{{ID: tag.ID, Title: "go"}}, h.Tags.Data())

	text := "again"
	_, err = f.svc.Update(ctx, f.editor, v.ID, &UpdateRequest{Text: &text})
	require.NoError(t, err)
	all, err := f.svc.History(ctx, f.editor, types.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Count)
	assert.Equal(t, "again", all.Results[0].Text)

	_, err = f.svc.History(ctx, f.reader, types.PageRequest{Page: 1, PageSize: 10})
	assert.True(t, errors.Is(err, errs.ErrForbidden))
	_, err = f.svc.Update(ctx, f.reader, v.ID, &UpdateRequest{Text: &text})
	assert.True(t, errors.Is(err, errs.ErrForbidden))
}

func TestListingsAndFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	other := testutil.CreateCategory(t, f.db, "Rust")
	old := time.Now().Add(-72 * time.Hour)
	a := f.create(t, &CreateRequest{Title: "a", IsFeatured: true, PostedAt: &old})
	b := f.create(t, &CreateRequest{Title: "b", IsTopPost: true, CategoryID: other.ID})
	reader := f.reader.UserID
	require.NoError(t, f.db.Create(&models.Like{ID: tool.GenerateUUIDV7(), UserID: reader, PostID: &a.ID}).Error)
	req := types.PageRequest{Page: 1, PageSize: 10}

	page, err := f.svc.List(ctx, nil, ListFeatured, Filter{}, req)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, a.ID, page.Results[0].ID)
	assert.Equal(t, int64(1), page.Results[0].TotalLikes)

	page, err = f.svc.List(ctx, nil, ListTop, Filter{}, req)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, b.ID, page.Results[0].ID)

	page, err = f.svc.List(ctx, nil, ListAll, Filter{}, req)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, []string{page.Results[0].ID, page.Results[1].ID})

	page, err = f.svc.List(ctx, nil, ListPopular, Filter{}, req)
	require.NoError(t, err)
	assert.Equal(t, a.ID, page.Results[0].ID)

	page, err = f.svc.List(ctx, nil, ListAll, Filter{CategoryID: other.ID}, req)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, b.ID, page.Results[0].ID)

	_, err = f.svc.List(ctx, nil, Listing("nope"), Filter{}, req)
	assert.True(t, errors.Is(err, errs.ErrInvalid))
}

func TestDeleteKeepsHistory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	v := f.create(t, &CreateRequest{Title: "doomed"})
	text := "edited"
	_, err := f.svc.Update(ctx, f.admin, v.ID, &UpdateRequest{Text: &text})
	require.NoError(t, err)

	assert.True(t, errors.Is(f.svc.Delete(ctx, f.reader, v.ID), errs.ErrForbidden))
	require.NoError(t, f.svc.Delete(ctx, f.editor, v.ID))
	assert.True(t, errors.Is(f.svc.Delete(ctx, f.editor, v.ID), errs.ErrNotFound))

	var n int64
	require.NoError(t, f.db.Model(&models.PostHistory{}).Where("post_id = ?", v.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
