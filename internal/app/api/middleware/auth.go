package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/response"
)

const principalKey = "principal"

// TokenParser verifies bearer tokens. *account.Tokens implements it.
type TokenParser interface {
	Parse(raw string, want account.TokenType) (*account.Claims, error)
}

// Authenticate resolves an optional "Authorization: Bearer <access>" header
// into a principal. Requests without the header continue anonymously; a
// header carrying a bad token is rejected.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			response.Abort(c, response.APIResponseCodeUnauthorized, "malformed authorization header")
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(raw), account.TokenTypeAccess)
		if err != nil {
			response.Fail(c, err)
			return
		}
		p := claims.Principal()
		c.Set(principalKey, p)

		ctx := logctx.WithUserID(c.Request.Context(), p.UserID)
		if l, ok := c.Get(logctx.LoggerKey); ok {
			if base, ok := l.(*zap.SugaredLogger); ok && base != nil {
				withUser := base.With("user_id", p.UserID)
				c.Set(logctx.LoggerKey, withUser)
				ctx = logctx.WithLogger(ctx, withUser)
			}
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Principal returns the caller resolved by Authenticate, nil for anonymous.
func Principal(c *gin.Context) *account.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*account.Principal)
	return p
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Principal(c).Authenticated() {
			response.Fail(c, errs.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireStaff admits editors and admins.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal(c)
		if !p.Authenticated() {
			response.Fail(c, errs.ErrUnauthorized)
			return
		}
		if !p.Editor() {
			response.Fail(c, errs.Forbidden("staff only"))
			return
		}
		c.Next()
	}
}

func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal(c)
		if !p.Authenticated() {
			response.Fail(c, errs.ErrUnauthorized)
			return
		}
		if !p.Admin() {
			response.Fail(c, errs.Forbidden("superuser only"))
			return
		}
		c.Next()
	}
}
