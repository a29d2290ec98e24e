package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/interaction"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/response"
)

// @Summary      List comments
// @Tags         Comments
// @Produce      json
// @Param        page       query  int  false  "Page (1-based)"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  handlers.RespCommentPage
// @Router       /api/v1/comments [get]
func ApiListComments(svc *interaction.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.ListComments(c.Request.Context(), mw.Principal(c), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      List a post's comments
// @Tags         Comments
// @Produce      json
// @Param        post_id    path   string  true   "Post ID"
// @Param        page       query  int     false  "Page (1-based)"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  handlers.RespCommentPage
// @Failure      403  {object}  handlers.RespError
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/comments/post/{post_id} [get]
func ApiListPostComments(svc *interaction.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.ListPostComments(c.Request.Context(), mw.Principal(c), c.Param("post_id"), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Get comment
// @Tags         Comments
// @Produce      json
// @Param        id   path  string  true  "Comment ID"
// @Success      200  {object}  handlers.RespComment
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/comments/{id} [get]
func ApiGetComment(svc *interaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.GetComment(c.Request.Context(), mw.Principal(c), c.Param("id"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, v)
	}
}

// @Summary      Comment on a post
// @Description  Set parent_id to reply to a comment on the same post.
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body interaction.CreateCommentRequest true "Comment"
// @Success      201  {object}  handlers.RespComment
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/comments [post]
func ApiCreateComment(svc *interaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req interaction.CreateCommentRequest
		if !bindJSON(c, &req) {
			return
		}
		v, err := svc.CreateComment(c.Request.Context(), mw.Principal(c), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, v)
	}
}

// @Summary      Edit comment
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                            true  "Comment ID"
// @Param        request  body  interaction.UpdateCommentRequest  true  "New text"
// @Success      200  {object}  handlers.RespComment
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/comments/{id} [put]
func ApiUpdateComment(svc *interaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req interaction.UpdateCommentRequest
		if !bindJSON(c, &req) {
			return
		}
		v, err := svc.UpdateComment(c.Request.Context(), mw.Principal(c), c.Param("id"), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, v)
	}
}

// @Summary      Delete comment
// @Tags         Comments
// @Security     BearerAuth
// @Param        id   path  string  true  "Comment ID"
// @Success      204
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/comments/{id} [delete]
func ApiDeleteComment(svc *interaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteComment(c.Request.Context(), mw.Principal(c), c.Param("id")); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary      List likes
// @Tags         Likes
// @Produce      json
// @Param        page       query  int  false  "Page (1-based)"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  handlers.RespLikePage
// @Router       /api/v1/likes [get]
func ApiListLikes(svc *interaction.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.ListLikes(c.Request.Context(), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Like a post or comment
// @Tags         Likes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body interaction.CreateLikeRequest true "Exactly one of post_id or comment_id"
// @Success      201  {object}  handlers.RespLike
// @Failure      400  {object}  handlers.RespError
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/likes [post]
func ApiCreateLike(svc *interaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req interaction.CreateLikeRequest
		if !bindJSON(c, &req) {
			return
		}
		like, err := svc.CreateLike(c.Request.Context(), mw.Principal(c), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, like)
	}
}

// @Summary      Remove a post like
// @Tags         Likes
// @Security     BearerAuth
// @Param        post_id  path  string  true  "Post ID"
// @Param        user_id  path  string  true  "User ID"
// @Success      204
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/likes/post/{post_id}/{user_id} [delete]
func ApiDeletePostLike(svc *interaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeletePostLike(c.Request.Context(), mw.Principal(c), c.Param("post_id"), c.Param("user_id")); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary      Remove a comment like
// @Tags         Likes
// @Security     BearerAuth
// @Param        comment_id  path  string  true  "Comment ID"
// @Param        user_id     path  string  true  "User ID"
// @Success      204
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/likes/comment/{comment_id}/{user_id} [delete]
func ApiDeleteCommentLike(svc *interaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteCommentLike(c.Request.Context(), mw.Principal(c), c.Param("comment_id"), c.Param("user_id")); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func RegisterCommentRoutes(r gin.IRouter, svc *interaction.Service, cfg *config.Config) {
	r.GET("", ApiListComments(svc, cfg))
	r.POST("", mw.RequireAuth(), ApiCreateComment(svc))
	r.GET("/post/:post_id", ApiListPostComments(svc, cfg))
	r.GET("/:id", ApiGetComment(svc))
	r.PUT("/:id", mw.RequireAuth(), ApiUpdateComment(svc))
	r.DELETE("/:id", mw.RequireAuth(), ApiDeleteComment(svc))
}

func RegisterLikeRoutes(r gin.IRouter, svc *interaction.Service, cfg *config.Config) {
	r.GET("", ApiListLikes(svc, cfg))
	r.POST("", mw.RequireAuth(), ApiCreateLike(svc))
	r.DELETE("/post/:post_id/:user_id", mw.RequireAuth(), ApiDeletePostLike(svc))
	r.DELETE("/comment/:comment_id/:user_id", mw.RequireAuth(), ApiDeleteCommentLike(svc))
}
