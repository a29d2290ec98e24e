package handlers

import (
	"github.com/gin-gonic/gin"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/billingevent"
	"github.com/inkwell/blog/internal/app/service/engagement"
	"github.com/inkwell/blog/internal/app/service/statistics"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/response"
)

type RefreshTrendingResponse struct {
	Posts int `json:"posts"`
}

// @Summary      Get Site Statistics (Admin)
// @Description  Retrieves daily activity and shop statistics.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body statistics.Request true "Statistic request parameters"
// @Success      200  {object}  handlers.RespStatistic
// @Router       /api/v1/admin/get_statistic [post]
func ApiGetStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.Request
		if !bindJSON(c, &req) {
			return
		}
		res, err := svc.Get(c.Request.Context(), mw.Principal(c), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, res)
	}
}

// @Summary      List Billing Events (Admin)
// @Description  Retrieves a paginated and filterable list of billing webhook deliveries.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body billingevent.ScanRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespBillingEvents
// @Router       /api/v1/admin/list_billing_event [post]
func ApiListBillingEvents(svc *billingevent.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billingevent.ScanRequest
		if !bindJSON(c, &req) {
			return
		}
		res, err := svc.Scan(c.Request.Context(), mw.Principal(c), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, res)
	}
}

// @Summary      Refresh Trending (Admin)
// @Description  Recomputes engagement scores now instead of waiting for the next tick.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespRefreshTrending
// @Router       /api/v1/admin/refresh_trending [post]
func ApiRefreshTrending(svc *engagement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.Refresh(c.Request.Context())
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, RefreshTrendingResponse{Posts: n})
	}
}

// @Summary      List Trending Scores (Admin)
// @Description  Pages the materialized engagement rows, highest score first.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "Page (1-based)"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  handlers.RespEngagementPage
// @Router       /api/v1/admin/trending [get]
func ApiListTrending(svc *engagement.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.Trending(c.Request.Context(), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

func RegisterAdminRoutes(r gin.IRouter, stats *statistics.Service, events *billingevent.Service, eng *engagement.Service, cfg *config.Config) {
	r.Use(mw.RequireStaff())
	r.POST("/get_statistic", ApiGetStatistic(stats))
	r.POST("/list_billing_event", ApiListBillingEvents(events))
	r.POST("/refresh_trending", ApiRefreshTrending(eng))
	r.GET("/trending", ApiListTrending(eng, cfg))
}
