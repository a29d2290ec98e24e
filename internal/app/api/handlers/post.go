package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/post"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/response"
)

// @Summary      List posts
// @Description  Published posts, newest first. Premium posts are hidden from non-premium readers.
// @Tags         Posts
// @Produce      json
// @Param        page         query  int     false  "Page (1-based)"
// @Param        page_size    query  int     false  "Page size"
// @Param        category_id  query  string  false  "Category filter"
// @Param        author_id    query  string  false  "Author filter"
// @Param        tag_id       query  string  false  "Tag filter"
// @Success      200  {object}  handlers.RespPostPage
// @Router       /api/v1/posts [get]
// @Router       /api/v1/posts/featured [get]
// @Router       /api/v1/posts/top [get]
// @Router       /api/v1/posts/popular [get]
// @Router       /api/v1/posts/trending [get]
func ApiListPosts(svc *post.Service, cfg *config.Config, listing post.Listing) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f post.Filter
		if err := c.ShouldBindQuery(&f); err != nil {
			response.Abort(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		page, err := svc.List(c.Request.Context(), mw.Principal(c), listing, f, pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Create post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body post.CreateRequest true "New post"
// @Success      201  {object}  handlers.RespPost
// @Failure      400  {object}  handlers.RespError
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/posts [post]
func ApiCreatePost(svc *post.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req post.CreateRequest
		if !bindJSON(c, &req) {
			return
		}
		v, err := svc.Create(c.Request.Context(), mw.Principal(c), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, v)
	}
}

// @Summary      Get post by ID
// @Description  Counts a view.
// @Tags         Posts
// @Produce      json
// @Param        id   path  string  true  "Post ID"
// @Success      200  {object}  handlers.RespPost
// @Failure      403  {object}  handlers.RespError
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/posts/id/{id} [get]
func ApiGetPost(svc *post.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.Get(c.Request.Context(), mw.Principal(c), c.Param("id"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, v)
	}
}

// @Summary      Get post by slug
// @Description  Counts a view.
// @Tags         Posts
// @Produce      json
// @Param        slug path  string  true  "Post slug"
// @Success      200  {object}  handlers.RespPost
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/posts/slug/{slug} [get]
func ApiGetPostBySlug(svc *post.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.GetBySlug(c.Request.Context(), mw.Principal(c), c.Param("slug"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, v)
	}
}

// @Summary      Update post
// @Description  Saves a history snapshot of the previous version.
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string              true  "Post ID"
// @Param        request  body  post.UpdateRequest  true  "Fields to change"
// @Success      200  {object}  handlers.RespPost
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/posts/id/{id} [put]
func ApiUpdatePost(svc *post.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req post.UpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		v, err := svc.Update(c.Request.Context(), mw.Principal(c), c.Param("id"), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, v)
	}
}

// @Summary      Delete post
// @Tags         Posts
// @Security     BearerAuth
// @Param        id   path  string  true  "Post ID"
// @Success      204
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/posts/id/{id} [delete]
func ApiDeletePost(svc *post.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), mw.Principal(c), c.Param("id")); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary      List all post history
// @Tags         Posts
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "Page (1-based)"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  handlers.RespHistoryPage
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/posts/history [get]
func ApiListHistory(svc *post.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.History(c.Request.Context(), mw.Principal(c), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      List a post's history
// @Tags         Posts
// @Produce      json
// @Param        post_id    path   string  true   "Post ID"
// @Param        page       query  int     false  "Page (1-based)"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  handlers.RespHistoryPage
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/posts/history/{post_id} [get]
func ApiPostHistory(svc *post.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.PostHistory(c.Request.Context(), mw.Principal(c), c.Param("post_id"), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

func RegisterPostRoutes(r gin.IRouter, svc *post.Service, cfg *config.Config) {
	r.GET("", ApiListPosts(svc, cfg, post.ListAll))
	r.POST("", mw.RequireSuperuser(), ApiCreatePost(svc))
	r.GET("/featured", ApiListPosts(svc, cfg, post.ListFeatured))
	r.GET("/top", ApiListPosts(svc, cfg, post.ListTop))
	r.GET("/popular", ApiListPosts(svc, cfg, post.ListPopular))
	r.GET("/trending", ApiListPosts(svc, cfg, post.ListTrending))
	r.GET("/id/:id", ApiGetPost(svc))
	r.PUT("/id/:id", mw.RequireAuth(), ApiUpdatePost(svc))
	r.DELETE("/id/:id", mw.RequireAuth(), ApiDeletePost(svc))
	r.GET("/slug/:slug", ApiGetPostBySlug(svc))
	r.GET("/history", mw.RequireStaff(), ApiListHistory(svc, cfg))
	r.GET("/history/:post_id", ApiPostHistory(svc, cfg))
}
