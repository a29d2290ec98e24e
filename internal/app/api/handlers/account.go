package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/response"
)

type TokenRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// @Summary      Obtain token pair
// @Description  Exchanges email and password for an access/refresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body TokenRequest true "Credentials"
// @Success      200  {object}  handlers.RespTokenPair
// @Failure      401  {object}  handlers.RespError
// @Router       /api/v1/auth/token [post]
func ApiObtainToken(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest
		if !bindJSON(c, &req) {
			return
		}
		pair, err := svc.ObtainToken(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, pair)
	}
}

// @Summary      Refresh access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh token"
// @Success      200  {object}  handlers.RespRefresh
// @Failure      401  {object}  handlers.RespError
// @Router       /api/v1/auth/token/refresh [post]
func ApiRefreshToken(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if !bindJSON(c, &req) {
			return
		}
		access, err := svc.RefreshToken(c.Request.Context(), req.Refresh)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, RefreshResponse{Access: access})
	}
}

// @Summary      Verify token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyRequest true "Token to verify"
// @Success      200  {object}  handlers.RespOK
// @Failure      401  {object}  handlers.RespError
// @Router       /api/v1/auth/token/verify [post]
func ApiVerifyToken(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := svc.VerifyToken(req.Token); err != nil {
			response.Fail(c, err)
			return
		}
		response.OK[any](c, nil)
	}
}

// @Summary      List users
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "Page (1-based)"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  handlers.RespUserPage
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/users [get]
func ApiListUsers(svc *account.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.List(c.Request.Context(), mw.Principal(c), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Register user
// @Description  Open registration. Only superusers may set is_staff or is_superuser.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body account.RegisterRequest true "New user"
// @Success      201  {object}  handlers.RespUser
// @Failure      400  {object}  handlers.RespError
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/users [post]
func ApiRegisterUser(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req account.RegisterRequest
		if !bindJSON(c, &req) {
			return
		}
		u, err := svc.Register(c.Request.Context(), mw.Principal(c), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, u)
	}
}

// @Summary      Get user
// @Description  The user themselves and staff get the full record; everyone else gets the public profile.
// @Tags         Users
// @Produce      json
// @Param        id   path  string  true  "User ID"
// @Success      200  {object}  handlers.RespUser
// @Success      200  {object}  handlers.RespPublicProfile
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/users/{id} [get]
func ApiGetUser(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		if mw.Principal(c).SeesAccount(u.ID) {
			response.OK(c, u)
			return
		}
		response.OK(c, account.PublicProfileOf(u))
	}
}

// @Summary      Update user
// @Description  Users may update themselves; superusers may update anyone.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                     true  "User ID"
// @Param        request  body  account.UpdateUserRequest  true  "Fields to change"
// @Success      200  {object}  handlers.RespUser
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/users/{id} [put]
func ApiUpdateUser(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req account.UpdateUserRequest
		if !bindJSON(c, &req) {
			return
		}
		u, err := svc.Update(c.Request.Context(), mw.Principal(c), c.Param("id"), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, u)
	}
}

// @Summary      Delete user
// @Tags         Users
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/users/{id} [delete]
func ApiDeleteUser(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), mw.Principal(c), c.Param("id")); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func RegisterAuthRoutes(r gin.IRouter, svc *account.Service) {
	r.POST("/token", ApiObtainToken(svc))
	r.POST("/token/refresh", ApiRefreshToken(svc))
	r.POST("/token/verify", ApiVerifyToken(svc))
}

func RegisterUserRoutes(r gin.IRouter, svc *account.Service, cfg *config.Config) {
	r.GET("", mw.RequireStaff(), ApiListUsers(svc, cfg))
	r.POST("", ApiRegisterUser(svc))
	r.GET("/:id", ApiGetUser(svc))
	r.PUT("/:id", mw.RequireAuth(), ApiUpdateUser(svc))
	r.DELETE("/:id", mw.RequireAuth(), ApiDeleteUser(svc))
}
