package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/catalog"
	"github.com/inkwell/blog/internal/app/service/engagement"
	"github.com/inkwell/blog/internal/app/service/interaction"
	"github.com/inkwell/blog/internal/app/service/newsletter"
	"github.com/inkwell/blog/internal/app/service/notification"
	"github.com/inkwell/blog/internal/app/service/order"
	"github.com/inkwell/blog/internal/app/service/post"
	"github.com/inkwell/blog/internal/app/service/premium"
	"github.com/inkwell/blog/internal/app/service/taxonomy"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/billing"
	"github.com/inkwell/blog/internal/platform/billing/billingtest"
	"github.com/inkwell/blog/internal/platform/cache"
	"github.com/inkwell/blog/internal/platform/mailer"
	"github.com/inkwell/blog/internal/platform/realtime"
	"github.com/inkwell/blog/internal/testutil"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/response"
	"github.com/inkwell/blog/pkg/types"
)

type discardMail struct{}

func (discardMail) Send(context.Context, ...mailer.Message) error { return nil }

type env struct {
	t      *testing.T
	db     *gorm.DB
	tokens *account.Tokens
	eng    *engagement.Service
	r      *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	log := zap.NewNop().Sugar()
	tokens, err := account.NewTokens(cfg, log)
	require.NoError(t, err)
	hub := realtime.NewHub(cfg, log)
	t.Cleanup(hub.Close)

	notes := notification.NewService(db, hub, log)
	fake := billingtest.NewFake()
	prem := premium.NewService(db, fake, cfg, log)
	mem := cache.NewMemory()

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(mw.RequestLoggerMiddleware(log), mw.Authenticate(tokens))
	RegisterAuthRoutes(api.Group("/auth"), account.NewService(db, log, tokens))
	RegisterUserRoutes(api.Group("/users"), account.NewService(db, log, tokens), cfg)
	RegisterTaxonomyRoutes(api, taxonomy.NewService(db, mem, cfg, log))
	RegisterPostRoutes(api.Group("/posts"), post.NewService(db, notes, prem, log), cfg)
	RegisterCommentRoutes(api.Group("/comments"), interaction.NewService(db, notes, prem, log), cfg)
	RegisterLikeRoutes(api.Group("/likes"), interaction.NewService(db, notes, prem, log), cfg)
	RegisterNotificationRoutes(api.Group("/notifications"), notes, cfg)
	shop := catalog.NewService(db, mem, cfg, log)
	RegisterShopRoutes(api.Group("/shop"), shop, cfg)
	RegisterOrderRoutes(api.Group("/orders"), order.NewService(db, fake, shop, cfg, log), cfg)
	RegisterNewsletterRoutes(api.Group("/newsletter"), newsletter.NewService(db, discardMail{}, cfg, log), cfg)
	eng := engagement.NewService(db, log)
	RegisterAdminRoutes(api.Group("/admin"), nil, nil, eng, cfg)
	return &env{t: t, db: db, tokens: tokens, eng: eng, r: r}
}

func (e *env) token(u *models.User) string {
	pair, err := e.tokens.Issue(u)
	require.NoError(e.t, err)
	return pair.Access
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) response.APIResponse[T] {
	t.Helper()
	var out response.APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAccountFlow(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/v1/users", "", map[string]any{
		"email": "Reader@Example.com", "username": "reader", "password": "correct horse", "is_superuser": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.User](t, w).Data
	assert.Equal(t, "reader@example.com", created.Email)
	assert.False(t, created.IsSuperuser)
	assert.NotContains(t, w.Body.String(), "password")

	w = e.do(http.MethodPost, "/api/v1/auth/token", "", TokenRequest{Email: "reader@example.com", Password: "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/v1/auth/token", "", TokenRequest{Email: "reader@example.com", Password: "correct horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pair := decode[account.TokenPair](t, w).Data

	w = e.do(http.MethodPost, "/api/v1/auth/token/refresh", "", RefreshRequest{Refresh: pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[RefreshResponse](t, w).Data.Access)

	w = e.do(http.MethodPost, "/api/v1/auth/token/verify", "", VerifyRequest{Token: pair.Access})
	assert.Equal(t, http.StatusOK, w.Code)

	// plain users cannot list accounts
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/v1/users", pair.Access, nil).Code)

	w = e.do(http.MethodPut, "/api/v1/users/"+created.ID, pair.Access, map[string]any{"first_name": "Ada"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", decode[models.User](t, w).Data.FirstName)

	w = e.do(http.MethodPut, "/api/v1/users/"+created.ID, pair.Access, map[string]any{"is_staff": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMalformedEmailRejectedAtBinding(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/v1/users", "", map[string]any{"email": "not-an-email", "username": "x", "password": "correct horse"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")
	w = e.do(http.MethodPost, "/api/v1/users", "", map[string]any{"email": "x@example.com", "password": "correct horse"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "username is required")

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/v1/auth/token", "", TokenRequest{Email: "nobody", Password: "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/v1/newsletter/subscribe", "", SubscribeRequest{Email: "nobody"}).Code)
	assert.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/v1/newsletter/subscribe", "", SubscribeRequest{Email: "reader@example.com"}).Code)

	u := testutil.CreateUser(t, e.db, "owner", false, false)
	w = e.do(http.MethodPut, "/api/v1/users/"+u.ID, e.token(u), map[string]any{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserHidesPrivateFields(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner", false, false)
	require.NoError(t, e.db.Model(owner).Updates(map[string]any{"phone": "555-0100", "address": "1 Main St", "picture": "owner.png"}).Error)
	other := testutil.CreateUser(t, e.db, "other", false, false)
	staff := testutil.CreateUser(t, e.db, "staff", true, false)
	path := "/api/v1/users/" + owner.ID

	for name, token := range map[string]string{"anonymous": "", "other user": e.token(other)} {
		w := e.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, name)
		var body struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), name)
		assert.Equal(t, map[string]any{"id": owner.ID, "username": "owner", "picture": "owner.png"}, body.Data, name)
		assert.NotContains(t, w.Body.String(), "owner@example.com", name)
		assert.NotContains(t, w.Body.String(), "555-0100", name)
	}

	for name, token := range map[string]string{"self": e.token(owner), "staff": e.token(staff)} {
		w := e.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, name)
		full := decode[models.User](t, w).Data
		assert.Equal(t, "owner@example.com", full.Email, name)
		assert.Equal(t, "555-0100", full.Phone, name)
		assert.Equal(t, "1 Main St", full.Address, name)
	}

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/v1/users/"+other.ID+"x", "", nil).Code)
}

func TestPostEndpoints(t *testing.T) {
	e := newEnv(t)
	admin := testutil.CreateUser(t, e.db, "admin", true, true)
	editor := testutil.CreateUser(t, e.db, "editor", true, false)
	cat := testutil.CreateCategory(t, e.db, "Go")

	body := post.CreateRequest{Title: "Hello World", Text: "first", CategoryID: cat.ID}
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/v1/posts", "", body).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/v1/posts", e.token(editor), body).Code)

	w := e.do(http.MethodPost, "/api/v1/posts", e.token(admin), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[post.View](t, w).Data
	assert.Equal(t, "hello-world", created.Slug)

	w = e.do(http.MethodGet, "/api/v1/posts?page_size=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[post.View]](t, w).Data
	assert.EqualValues(t, 1, page.Count)
	assert.Equal(t, 2, page.PageSize)

	w = e.do(http.MethodGet, "/api/v1/posts/slug/hello-world", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[post.View](t, w).Data.Views)

	title := "Hello Again"
	w = e.do(http.MethodPut, "/api/v1/posts/id/"+created.ID, e.token(editor), post.UpdateRequest{Title: &title})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/v1/posts/history/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[types.Page[models.PostHistory]](t, w).Data.Count)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/v1/posts/history", "", nil).Code)

	for _, feed := range []string{"featured", "top", "popular", "trending"} {
		assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/v1/posts/"+feed, "", nil).Code, feed)
	}

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/v1/posts/id/"+created.ID, e.token(editor), nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/v1/posts/id/"+created.ID, "", nil).Code)
}

func TestLikeTwiceConflicts(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author", true, true)
	reader := testutil.CreateUser(t, e.db, "reader", false, false)
	p := testutil.CreatePost(t, e.db, author, testutil.CreateCategory(t, e.db, "Go"), "Liked", time.Now().Add(-time.Hour))

	like := interaction.CreateLikeRequest{PostID: &p.ID}
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/v1/likes", "", like).Code)
	assert.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/v1/likes", e.token(reader), like).Code)
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/api/v1/likes", e.token(reader), like).Code)

	// the author was notified
	w := e.do(http.MethodGet, "/api/v1/notifications?unread=true", e.token(author), nil)
	require.Equal(t, http.StatusOK, w.Code)
	notes := decode[types.Page[models.Notification]](t, w).Data
	require.EqualValues(t, 1, notes.Count)
	assert.Equal(t, models.NotificationTypePostLike, notes.Results[0].Type)

	w = e.do(http.MethodPost, "/api/v1/notifications/read_all", e.token(author), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[MarkAllReadResponse](t, w).Data.Updated)

	path := "/api/v1/likes/post/" + p.ID + "/" + reader.ID
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, path, e.token(reader), nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, path, e.token(reader), nil).Code)
}

func TestCommentReply(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author", true, true)
	reader := testutil.CreateUser(t, e.db, "reader", false, false)
	p := testutil.CreatePost(t, e.db, author, testutil.CreateCategory(t, e.db, "Go"), "Discussed", time.Now().Add(-time.Hour))

	w := e.do(http.MethodPost, "/api/v1/comments", e.token(reader), interaction.CreateCommentRequest{PostID: p.ID, Text: "nice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	parent := decode[interaction.CommentView](t, w).Data

	w = e.do(http.MethodPost, "/api/v1/comments", e.token(author), interaction.CreateCommentRequest{PostID: p.ID, ParentID: &parent.ID, Text: "thanks"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/v1/comments/post/"+p.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[types.Page[interaction.CommentView]](t, w).Data.Count)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, "/api/v1/comments/"+parent.ID, e.token(author), interaction.UpdateCommentRequest{Text: "edited"}).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/v1/comments/"+parent.ID, e.token(reader), interaction.UpdateCommentRequest{Text: "edited"}).Code)
}

func TestShopAndOrders(t *testing.T) {
	e := newEnv(t)
	staff := testutil.CreateUser(t, e.db, "staff", true, false)
	buyer := testutil.CreateUser(t, e.db, "buyer", false, false)

	w := e.do(http.MethodPost, "/api/v1/shop/product-categories", e.token(buyer), catalog.NameRequest{Name: "Shirts"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(http.MethodPost, "/api/v1/shop/product-categories", e.token(staff), catalog.NameRequest{Name: "Shirts"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cat := decode[models.ProductCategory](t, w).Data
	w = e.do(http.MethodPost, "/api/v1/shop/colors", e.token(staff), catalog.NameRequest{Name: "Black"})
	require.Equal(t, http.StatusCreated, w.Code)
	color := decode[models.Color](t, w).Data

	w = e.do(http.MethodPost, "/api/v1/shop/products", e.token(staff), catalog.ProductRequest{
		Name: "Tee", Price: decimal.RequireFromString("12.50"), CategoryID: cat.ID, ColorID: color.ID, Details: "cotton",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[models.Product](t, w).Data

	w = e.do(http.MethodPost, "/api/v1/shop/attributes", e.token(staff), catalog.AttributeRequest{
		ProductID: product.ID, Name: models.AttributeNameSize, Value: "M", StockQuantity: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	attr := decode[models.Attribute](t, w).Data

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/v1/shop/products?min_price=cheap", "", nil).Code)
	w = e.do(http.MethodGet, "/api/v1/shop/products?min_price=10&max_price=20", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[types.Page[models.Product]](t, w).Data.Count)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/v1/shop/products/slug/"+product.Slug, "", nil).Code)

	w = e.do(http.MethodPost, "/api/v1/orders", e.token(buyer), order.CreateRequest{Items: []order.ItemRequest{{AttributeID: attr.ID, Quantity: 3}}})
	assert.Equal(t, http.StatusBadRequest, w.Code, "more than in stock")

	w = e.do(http.MethodPost, "/api/v1/orders", e.token(buyer), order.CreateRequest{Items: []order.ItemRequest{{AttributeID: attr.ID, Quantity: 2}}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[models.Order](t, w).Data
	assert.True(t, decimal.RequireFromString("25").Equal(placed.TotalAmount))

	w = e.do(http.MethodPost, "/api/v1/orders/"+placed.ID+"/payment-intent", e.token(buyer), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2500, decode[billing.PaymentIntent](t, w).Data.Amount)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, "/api/v1/orders/"+placed.ID, e.token(buyer), order.StatusRequest{Status: models.OrderStatusPaid}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/v1/orders?status=lost", e.token(buyer), nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/v1/orders", "", nil).Code)
}

func TestAdminTrending(t *testing.T) {
	e := newEnv(t)
	staff := testutil.CreateUser(t, e.db, "staff", true, false)
	reader := testutil.CreateUser(t, e.db, "reader", false, false)
	cat := testutil.CreateCategory(t, e.db, "Go")
	hot := testutil.CreatePost(t, e.db, staff, cat, "Hot", time.Now().Add(-time.Hour))
	testutil.CreatePost(t, e.db, staff, cat, "Cold", time.Now().Add(-time.Hour))
	require.NoError(t, e.db.Model(hot).Update("views", 7).Error)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/v1/admin/trending", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/v1/admin/trending", e.token(reader), nil).Code)

	w := e.do(http.MethodPost, "/api/v1/admin/refresh_trending", e.token(staff), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[RefreshTrendingResponse](t, w).Data.Posts)

	w = e.do(http.MethodGet, "/api/v1/admin/trending?page_size=1", e.token(staff), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[types.Page[models.PostEngagement]](t, w).Data
	assert.EqualValues(t, 2, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, hot.ID, page.Results[0].PostID)
}

type stubWebhook struct {
	payload []byte
	sig     string
}

func (s *stubWebhook) Handle(_ context.Context, payload []byte, signature string) (*billing.Event, error) {
	s.payload, s.sig = payload, signature
	if signature != "ok" {
		return nil, errs.Invalid("webhook signature: bad")
	}
	return &billing.Event{ID: "evt_1", Type: billing.EventSubscriptionUpdated}, nil
}

func TestApiBillingWebhook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &stubWebhook{}
	r := gin.New()
	RegisterBillingRoutes(r.Group("/api/v1/billing"), h, zap.NewNop().Sugar())

	send := func(sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", bytes.NewBufferString(`{"id":"evt_1"}`))
		req.Header.Set("Stripe-Signature", sig)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send("ok")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"id":"evt_1"}`, string(h.payload))
	assert.Equal(t, "ok", h.sig)

	w = send("forged")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.APIResponseCodeBadRequest, decode[string](t, w).Code)
}

func TestPageOf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testutil.Config()
	for query, want := range map[string]types.PageRequest{
		"":                        {Page: 1, PageSize: 5},
		"page=3&page_size=7":      {Page: 3, PageSize: 7},
		"page=0&page_size=100000": {Page: 1, PageSize: 100},
		"page=x&page_size=y":      {Page: 1, PageSize: 5},
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		assert.Equal(t, want, pageOf(c, cfg), query)
	}
}

func TestTaxonomyWritesNeedSuperuser(t *testing.T) {
	e := newEnv(t)
	editor := testutil.CreateUser(t, e.db, "editor", true, false)
	admin := testutil.CreateUser(t, e.db, "admin", false, true)

	for _, path := range []string{"/api/v1/categories", "/api/v1/tags"} {
		assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, path, "", TermRequest{Title: "Go"}).Code, path)
		// rejected before the body is read
		assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, path, e.token(editor), nil).Code, path)
		assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, path+"/missing", e.token(editor), nil).Code, path)
		assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, path+"/missing", e.token(editor), nil).Code, path)

		w := e.do(http.MethodPost, path, e.token(admin), TermRequest{Title: "Go"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		term := decode[taxonomy.Term](t, w).Data
		assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, path+"/"+term.ID, e.token(admin), nil).Code, path)
	}

	// post creation is superuser-only too
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/v1/posts", e.token(editor), nil).Code)
}

func TestRegisterRoutes_TaxonomyEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterTaxonomyRoutes(r.Group("/api/v1"), nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}
	for _, want := range []string{
		"GET /api/v1/categories", "POST /api/v1/categories", "DELETE /api/v1/categories/:id",
		"GET /api/v1/tags", "PUT /api/v1/tags/:id",
	} {
		require.True(t, contains(want), want)
	}
}

