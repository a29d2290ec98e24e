package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/testutil"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/types"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb := testutil.NewDB(t)
	tokens, err := NewTokens(testutil.Config(), zap.NewNop().Sugar())
	require.NoError(t, err)
	return NewService(gdb, zap.NewNop().Sugar(), tokens), gdb
}

func register(t *testing.T, s *Service, actor *Principal, username string, admin bool) string {
	t.Helper()
	u, err := s.Register(context.Background(), actor, &RegisterRequest{
		Email: username + "@example.com", Username: username, Password: "password123",
		IsStaff: admin, IsSuperuser: admin,
	})
	require.NoError(t, err)
	return u.ID
}

func TestRegister_HashesPasswordAndIgnoresRoleFlagsFromNonAdmins(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, nil, &RegisterRequest{
		Email: " Reader@Example.com ", Username: "reader", Password: "password123", IsSuperuser: true,
	})
	require.NoError(t, err)
	require.Equal(t, "reader@example.com", u.Email)
	require.NotEqual(t, "password123", u.PasswordHash)
	require.False(t, u.IsSuperuser)
	require.True(t, u.IsActive)

	_, err = s.Register(ctx, nil, &RegisterRequest{Email: "reader@example.com", Username: "other", Password: "password123"})
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = s.Register(ctx, nil, &RegisterRequest{Email: "x@example.com", Username: "x", Password: "short"})
	require.ErrorIs(t, err, errs.ErrInvalid)

	admin, err := s.CreateSuperuser(ctx, "root@example.com", "root", "password123")
	require.NoError(t, err)
	require.True(t, admin.IsSuperuser)
	require.True(t, admin.IsStaff)
}

func TestTokens_ObtainRefreshVerify(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	id := register(t, s, nil, "reader", false)

	_, err := s.ObtainToken(ctx, "reader@example.com", "wrong-password")
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	pair, err := s.ObtainToken(ctx, "reader@example.com", "password123")
	require.NoError(t, err)

	claims, err := s.tokens.Parse(pair.Access, TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, id, claims.Subject)

	// an access token is not accepted where a refresh token is expected
	_, err = s.RefreshToken(ctx, pair.Access)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	access, err := s.RefreshToken(ctx, pair.Refresh)
	require.NoError(t, err)
	require.NoError(t, s.VerifyToken(access))
	require.NoError(t, s.VerifyToken(pair.Refresh))
	require.ErrorIs(t, s.VerifyToken("garbage"), errs.ErrUnauthorized)
}

func TestTokens_Expire(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, nil, "reader", false)
	pair, err := s.ObtainToken(context.Background(), "reader@example.com", "password123")
	require.NoError(t, err)

	s.tokens.now = func() time.Time { return time.Now().Add(49 * time.Hour) }
	_, err = s.tokens.Parse(pair.Access, TokenTypeAccess)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	_, err = s.tokens.Parse(pair.Refresh, TokenTypeRefresh)
	require.NoError(t, err)
}

func TestUpdateAndDelete_Permissions(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	alice := register(t, s, nil, "alice", false)
	bob := register(t, s, nil, "bob", false)
	root := &Principal{UserID: "root", IsSuperuser: true}

	name := "Alice"
	u, err := s.Update(ctx, &Principal{UserID: alice}, alice, &UpdateUserRequest{FirstName: &name})
	require.NoError(t, err)
	require.Equal(t, "Alice", u.FirstName)

	_, err = s.Update(ctx, &Principal{UserID: bob}, alice, &UpdateUserRequest{FirstName: &name})
	require.ErrorIs(t, err, errs.ErrForbidden)

	yes := true
	_, err = s.Update(ctx, &Principal{UserID: alice}, alice, &UpdateUserRequest{IsStaff: &yes})
	require.ErrorIs(t, err, errs.ErrForbidden)

	u, err = s.Update(ctx, root, alice, &UpdateUserRequest{IsStaff: &yes})
	require.NoError(t, err)
	require.True(t, u.IsStaff)

	require.ErrorIs(t, s.Delete(ctx, &Principal{UserID: alice}, bob), errs.ErrForbidden)
	require.NoError(t, s.Delete(ctx, &Principal{UserID: bob}, bob))
	_, err = s.Get(ctx, bob)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestList_StaffOnly(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	for _, n := range []string{"a1", "a2", "a3"} {
		register(t, s, nil, n, false)
	}
	page := types.PageRequest{Page: 1, PageSize: 2}

	_, err := s.List(ctx, &Principal{UserID: "x"}, page)
	require.ErrorIs(t, err, errs.ErrForbidden)

	res, err := s.List(ctx, &Principal{UserID: "x", IsStaff: true}, page)
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Count)
	require.Len(t, res.Results, 2)
}

func TestSeesAccount(t *testing.T) {
	var anon *Principal
	require.False(t, anon.SeesAccount("u1"))
	require.True(t, (&Principal{UserID: "u1"}).SeesAccount("u1"))
	require.False(t, (&Principal{UserID: "u2"}).SeesAccount("u1"))
	require.True(t, (&Principal{UserID: "u2", IsStaff: true}).SeesAccount("u1"))
	require.True(t, (&Principal{UserID: "u2", IsSuperuser: true}).SeesAccount("u1"))
}
