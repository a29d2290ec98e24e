package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/testutil"
)

func newRouter(t *testing.T, guard gin.HandlerFunc) (*gin.Engine, *account.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := account.NewTokens(testutil.Config(), zap.NewNop().Sugar())
	require.NoError(t, err)

	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(zap.NewNop().Sugar()), Authenticate(tokens))
	handlers := []gin.HandlerFunc{}
	if guard != nil {
		handlers = append(handlers, guard)
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, Principal(c).ID())
	})
	r.GET("/whoami", handlers...)
	return r, tokens
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	r, _ := newRouter(t, nil)
	w := get(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Body.String())
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthenticate_ResolvesPrincipal(t *testing.T) {
	r, tokens := newRouter(t, RequireAuth())
	pair, err := tokens.Issue(&models.User{ID: "u-1"})
	require.NoError(t, err)

	w := get(r, "Bearer "+pair.Access)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "u-1", w.Body.String())
}

func TestAuthenticate_RejectsRefreshAndGarbage(t *testing.T) {
	r, tokens := newRouter(t, nil)
	pair, err := tokens.Issue(&models.User{ID: "u-1"})
	require.NoError(t, err)

	require.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+pair.Refresh).Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "Bearer nope").Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "Token "+pair.Access).Code)
}

func TestRequireRoles(t *testing.T) {
	r, tokens := newRouter(t, RequireStaff())
	reader, _ := tokens.Issue(&models.User{ID: "reader"})
	editor, _ := tokens.Issue(&models.User{ID: "editor", IsStaff: true})

	require.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	require.Equal(t, http.StatusForbidden, get(r, "Bearer "+reader.Access).Code)
	require.Equal(t, http.StatusOK, get(r, "Bearer "+editor.Access).Code)

	r, _ = newRouter(t, RequireSuperuser())
	admin, _ := tokens.Issue(&models.User{ID: "admin", IsSuperuser: true})
	require.Equal(t, http.StatusForbidden, get(r, "Bearer "+editor.Access).Code)
	require.Equal(t, http.StatusOK, get(r, "Bearer "+admin.Access).Code)
}
