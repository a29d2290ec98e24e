package taxonomy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/platform/cache"
	"github.com/inkwell/blog/internal/testutil"
	"github.com/inkwell/blog/pkg/errs"
)

var root = &account.Principal{UserID: "root", IsSuperuser: true}

func newTestService(t *testing.T) (*Service, *cache.Memory) {
	t.Helper()
	mem := cache.NewMemory()
	return NewService(testutil.NewDB(t), mem, testutil.Config(), zap.NewNop().Sugar()), mem
}

func cached(t *testing.T, c cache.Cache, key string) bool {
	t.Helper()
	_, err := c.Get(context.Background(), key)
	return err == nil
}

func TestCreate_SuperuserOnly(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &account.Principal{UserID: "u", IsStaff: true}, KindTag, "go")
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = s.Create(ctx, root, KindTag, "  ")
	require.ErrorIs(t, err, errs.ErrInvalid)

	tag, err := s.Create(ctx, root, KindTag, "go")
	require.NoError(t, err)
	_, err = s.Create(ctx, root, KindTag, "go")
	require.ErrorIs(t, err, errs.ErrConflict)

	got, err := s.Get(ctx, KindTag, tag.ID)
	require.NoError(t, err)
	require.Equal(t, "go", got.Title)
}

func TestCache_ListAndItemInvalidatedOnUpdate(t *testing.T) {
	for _, kind := range []Kind{KindTag, KindCategory} {
		t.Run(string(kind), func(t *testing.T) {
			s, mem := newTestService(t)
			ctx := context.Background()

			term, err := s.Create(ctx, root, kind, "golang")
			require.NoError(t, err)

			list, err := s.List(ctx, kind)
			require.NoError(t, err)
			require.Len(t, list, 1)
			_, err = s.Get(ctx, kind, term.ID)
			require.NoError(t, err)
			require.True(t, cached(t, mem, kind.ListKey()))
			require.True(t, cached(t, mem, kind.ItemKey(term.ID)))

			_, err = s.Update(ctx, root, kind, term.ID, "go")
			require.NoError(t, err)
			require.False(t, cached(t, mem, kind.ListKey()))
			require.False(t, cached(t, mem, kind.ItemKey(term.ID)))

			got, err := s.Get(ctx, kind, term.ID)
			require.NoError(t, err)
			require.Equal(t, "go", got.Title)
		})
	}
}

func TestCache_CreateInvalidatesListAndDeleteInvalidatesBoth(t *testing.T) {
	s, mem := newTestService(t)
	ctx := context.Background()

	a, err := s.Create(ctx, root, KindTag, "a")
	require.NoError(t, err)
	_, err = s.List(ctx, KindTag)
	require.NoError(t, err)

	_, err = s.Create(ctx, root, KindTag, "b")
	require.NoError(t, err)
	require.False(t, cached(t, mem, KindTag.ListKey()))

	list, err := s.List(ctx, KindTag)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = s.Get(ctx, KindTag, a.ID)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, root, KindTag, a.ID))
	require.False(t, cached(t, mem, KindTag.ListKey()))
	require.False(t, cached(t, mem, KindTag.ItemKey(a.ID)))

	_, err = s.Get(ctx, KindTag, a.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, root, KindTag, a.ID), errs.ErrNotFound)
}

func TestKeys(t *testing.T) {
	require.Equal(t, "post_tags_list", KindTag.ListKey())
	require.Equal(t, "post_categories_list", KindCategory.ListKey())
	require.Equal(t, "post_tag_1", KindTag.ItemKey("1"))
	require.Equal(t, "post_category_1", KindCategory.ItemKey("1"))
}
