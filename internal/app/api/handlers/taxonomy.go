package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/taxonomy"
	"github.com/inkwell/blog/pkg/response"
)

type TermRequest struct {
	Title string `json:"title" binding:"required"`
}

// @Summary      List categories or tags
// @Tags         Taxonomy
// @Produce      json
// @Success      200  {object}  handlers.RespTerms
// @Router       /api/v1/categories [get]
// @Router       /api/v1/tags [get]
func ApiListTerms(svc *taxonomy.Service, kind taxonomy.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		terms, err := svc.List(c.Request.Context(), kind)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, terms)
	}
}

// @Summary      Get category or tag
// @Tags         Taxonomy
// @Produce      json
// @Param        id   path  string  true  "Term ID"
// @Success      200  {object}  handlers.RespTerm
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/categories/{id} [get]
// @Router       /api/v1/tags/{id} [get]
func ApiGetTerm(svc *taxonomy.Service, kind taxonomy.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		term, err := svc.Get(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, term)
	}
}

// @Summary      Create category or tag
// @Tags         Taxonomy
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TermRequest true "Title"
// @Success      201  {object}  handlers.RespTerm
// @Failure      403  {object}  handlers.RespError
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/categories [post]
// @Router       /api/v1/tags [post]
func ApiCreateTerm(svc *taxonomy.Service, kind taxonomy.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TermRequest
		if !bindJSON(c, &req) {
			return
		}
		term, err := svc.Create(c.Request.Context(), mw.Principal(c), kind, req.Title)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, term)
	}
}

// @Summary      Rename category or tag
// @Tags         Taxonomy
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string       true  "Term ID"
// @Param        request  body  TermRequest  true  "Title"
// @Success      200  {object}  handlers.RespTerm
// @Router       /api/v1/categories/{id} [put]
// @Router       /api/v1/tags/{id} [put]
func ApiUpdateTerm(svc *taxonomy.Service, kind taxonomy.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TermRequest
		if !bindJSON(c, &req) {
			return
		}
		term, err := svc.Update(c.Request.Context(), mw.Principal(c), kind, c.Param("id"), req.Title)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, term)
	}
}

// @Summary      Delete category or tag
// @Tags         Taxonomy
// @Security     BearerAuth
// @Param        id   path  string  true  "Term ID"
// @Success      204
// @Router       /api/v1/categories/{id} [delete]
// @Router       /api/v1/tags/{id} [delete]
func ApiDeleteTerm(svc *taxonomy.Service, kind taxonomy.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), mw.Principal(c), kind, c.Param("id")); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RegisterTaxonomyRoutes mounts /categories and /tags under r.
func RegisterTaxonomyRoutes(r gin.IRouter, svc *taxonomy.Service) {
	for path, kind := range map[string]taxonomy.Kind{"/categories": taxonomy.KindCategory, "/tags": taxonomy.KindTag} {
		g := r.Group(path)
		g.GET("", ApiListTerms(svc, kind))
		g.GET("/:id", ApiGetTerm(svc, kind))
		g.POST("", mw.RequireSuperuser(), ApiCreateTerm(svc, kind))
		g.PUT("/:id", mw.RequireSuperuser(), ApiUpdateTerm(svc, kind))
		g.DELETE("/:id", mw.RequireSuperuser(), ApiDeleteTerm(svc, kind))
	}
}
