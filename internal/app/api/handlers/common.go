package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/response"
	"github.com/inkwell/blog/pkg/types"
)

const (
	defaultPageSize = 5
	maxPageSize     = 100
)

// pageOf reads page/page_size from the query string.
func pageOf(c *gin.Context, cfg *config.Config) types.PageRequest {
	def, limit := defaultPageSize, maxPageSize
	if cfg != nil && cfg.Pagination.PageSize > 0 {
		def = cfg.Pagination.PageSize
	}
	if cfg != nil && cfg.Pagination.MaxPageSize > 0 {
		limit = cfg.Pagination.MaxPageSize
	}
	return types.ParsePage(c.Query("page"), c.Query("page_size")).Normalize(def, limit)
}

// bindJSON decodes the body into req, writing a 400 envelope on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Abort(c, response.APIResponseCodeBadRequest, err.Error())
		return false
	}
	return true
}
